package classroom

// TimetableEntry is a subject offered by the weekly timetable
type TimetableEntry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// TimetableSubjects is the subject catalog classrooms can import from
var TimetableSubjects = []TimetableEntry{
	{Name: "DM", Code: "CS301"},
	{Name: "Comm-Skills", Code: "CS302"},
	{Name: "BEFA", Code: "CS303"},
	{Name: "DBMS", Code: "CS304"},
	{Name: "OS", Code: "CS305"},
	{Name: "SE", Code: "CS306"},
	{Name: "Node.js", Code: "CS307"},
	{Name: "APTITUDE", Code: "CS308"},
	{Name: "COI", Code: "CS309"},
	{Name: "CRT/Coding", Code: "CS310"},
}
