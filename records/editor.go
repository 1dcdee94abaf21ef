package records

import (
	"context"
	"fmt"
	"sort"
	"time"

	"campus-records-go/db"
	"campus-records-go/models"
	"go.uber.org/zap"
)

// RosterProvider lists the students of a classroom
type RosterProvider interface {
	Roster(ctx context.Context, classroomID string) ([]models.RosterEntry, error)
}

// State of an editing session
type State int

const (
	Clean State = iota
	Dirty
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Options configure an Editor
type Options struct {
	Log       *zap.Logger
	BannerTTL time.Duration // Auto-dismiss delay of returned banners
}

// kind describes how one record type is keyed, built and stored
type kind[R any, F any] struct {
	name      string // Used in ids, logs and banners
	label     string // Subject of the save banner, e.g. "Attendance"
	noun      string // Used by the clear banner, e.g. "attendance records"
	storeKey  string
	dated     bool
	keyOf     func(R) NaturalKey
	build     func(id string, k NaturalKey, f F) R
	normalize func(F) F
}

// Staged is a pending edit as accepted into the buffer
type Staged[F any] struct {
	Key    NaturalKey `json:"key"`
	Fields F          `json:"fields"`
}

// Replaced is the outcome of a commit
type Replaced[R any] struct {
	Scope   Scope  `json:"scope"`
	Removed int    `json:"removed"` // Records of the scope that were dropped
	Records []R    `json:"records"` // Records generated for the scope
	Banner  Banner `json:"banner"`
}

// Editor is one editing session over a record type: a selected scope plus
// a buffer of pending edits. It is not safe for concurrent use.
type Editor[R any, F any] struct {
	store     db.RecordStore
	roster    RosterProvider
	log       *zap.Logger
	bannerTTL time.Duration
	kind      kind[R, F]

	scope  Scope
	buffer EditBuffer[F]
}

func newEditor[R any, F any](store db.RecordStore, roster RosterProvider, k kind[R, F], opts Options) *Editor[R, F] {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor[R, F]{
		store:     store,
		roster:    roster,
		log:       log.With(zap.String("records", k.name)),
		bannerTTL: opts.BannerTTL,
		kind:      k,
	}
}

// Scope returns the selected scope
func (e *Editor[R, F]) Scope() Scope {
	return e.scope
}

// State returns Dirty when there are uncommitted changes
func (e *Editor[R, F]) State() State {
	if e.buffer.Dirty() {
		return Dirty
	}
	return Clean
}

// Pending returns the staged edits in staging order
func (e *Editor[R, F]) Pending() []Staged[F] {
	keys := e.buffer.Keys()
	out := make([]Staged[F], 0, len(keys))
	for _, k := range keys {
		f, _ := e.buffer.Lookup(k)
		out = append(out, Staged[F]{Key: k, Fields: f})
	}
	return out
}

// Navigate selects a new scope. Leaving a dirty session needs confirm to
// return true; the pending edits are then discarded. It reports whether the
// scope was switched.
func (e *Editor[R, F]) Navigate(session models.Session, scope Scope, confirm func() bool) (bool, error) {
	if !session.IsLecturer() {
		return false, ErrReadOnly
	}
	if !e.kind.dated {
		scope.Date = ""
	}
	if err := checkRequired(scope); err != nil {
		return false, err
	}
	if e.kind.dated && scope.Date == "" {
		return false, fmt.Errorf("%w: date is required", ErrInvalidEdit)
	}
	if scope == e.scope {
		return true, nil
	}
	if e.buffer.Dirty() && (confirm == nil || !confirm()) {
		return false, nil
	}
	if e.buffer.Dirty() {
		e.log.Info("discarding unsaved edits on navigation",
			zap.Int("pending", e.buffer.Len()),
			zap.String("classroom_id", e.scope.ClassroomID),
			zap.String("subject_id", e.scope.SubjectID))
	}
	e.buffer.Reset()
	e.scope = scope
	return true, nil
}

// Discard drops every pending edit and returns the session to Clean
func (e *Editor[R, F]) Discard(session models.Session) error {
	if !session.IsLecturer() {
		return ErrReadOnly
	}
	e.buffer.Reset()
	return nil
}

// StageEdit upserts the pending fields for key. Fields are clamped to their
// allowed range; the key must be complete and inside the selected scope.
func (e *Editor[R, F]) StageEdit(session models.Session, key NaturalKey, fields F) (Staged[F], error) {
	if !session.IsLecturer() {
		return Staged[F]{}, ErrReadOnly
	}
	if e.scope.IsZero() {
		return Staged[F]{}, ErrNoScope
	}
	if !e.kind.dated {
		key.Date = ""
	}
	if err := checkRequired(key); err != nil {
		return Staged[F]{}, err
	}
	if e.kind.dated && key.Date == "" {
		return Staged[F]{}, fmt.Errorf("%w: date is required", ErrInvalidEdit)
	}
	if !e.scope.Contains(key) {
		return Staged[F]{}, fmt.Errorf("%w: record is outside the selected classroom and subject", ErrInvalidEdit)
	}

	if e.kind.normalize != nil {
		fields = e.kind.normalize(fields)
	}
	e.buffer.Stage(key, fields)
	return Staged[F]{Key: key, Fields: fields}, nil
}

// ResetEdit removes the pending edit for key. The session stays Dirty.
func (e *Editor[R, F]) ResetEdit(session models.Session, key NaturalKey) error {
	if !session.IsLecturer() {
		return ErrReadOnly
	}
	if !e.kind.dated {
		key.Date = ""
	}
	e.buffer.Remove(key)
	return nil
}

// Commit replaces every persisted record of the selected scope with one
// record per roster entry, taking staged fields where present and defaults
// otherwise. Records of the scope whose student left the roster are dropped.
// On success the buffer is cleared.
func (e *Editor[R, F]) Commit(ctx context.Context, session models.Session) (Replaced[R], error) {
	if !session.IsLecturer() {
		return Replaced[R]{}, ErrReadOnly
	}
	if e.scope.IsZero() {
		return Replaced[R]{}, ErrNoScope
	}
	scope := e.scope

	// A malformed blob aborts the save instead of being overwritten
	all, err := db.ReadCollection[R](ctx, e.store, e.kind.storeKey)
	if err != nil {
		e.log.Error("failed to read records before commit", zap.Error(err))
		return Replaced[R]{Scope: scope, Banner: e.failure()}, err
	}

	roster, err := e.roster.Roster(ctx, scope.ClassroomID)
	if err != nil {
		e.log.Error("failed to load roster", zap.String("classroom_id", scope.ClassroomID), zap.Error(err))
		return Replaced[R]{Scope: scope, Banner: e.failure()}, fmt.Errorf("load roster for %s: %w", scope.ClassroomID, err)
	}

	kept := make([]R, 0, len(all))
	removed := 0
	for _, rec := range all {
		if scope.Contains(e.kind.keyOf(rec)) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}

	generated := make([]R, 0, len(roster))
	seen := make(map[string]bool, len(roster))
	for _, entry := range roster {
		if entry.StudentID == "" || seen[entry.StudentID] {
			continue
		}
		seen[entry.StudentID] = true

		k := scope.Key(entry.StudentID)
		var fields F
		if staged, ok := e.buffer.Lookup(k); ok {
			fields = staged
		}
		if e.kind.normalize != nil {
			fields = e.kind.normalize(fields)
		}
		generated = append(generated, e.kind.build(RecordID(e.kind.name, k), k, fields))
	}

	if err := db.WriteCollection(ctx, e.store, e.kind.storeKey, append(kept, generated...)); err != nil {
		e.log.Error("failed to persist records", zap.Error(err))
		return Replaced[R]{Scope: scope, Banner: e.failure()}, err
	}

	e.log.Info("records committed",
		zap.String("classroom_id", scope.ClassroomID),
		zap.String("subject_id", scope.SubjectID),
		zap.String("date", scope.Date),
		zap.Int("removed", removed),
		zap.Int("written", len(generated)))

	e.buffer.Reset()
	return Replaced[R]{
		Scope:   scope,
		Removed: removed,
		Records: generated,
		Banner:  e.banner(fmt.Sprintf("%s saved successfully!", e.kind.label), false),
	}, nil
}

// Query returns the persisted records matching filter. A student session only
// ever sees its own records, most recent date first; other sessions get
// storage order. Read failures yield an empty result.
func (e *Editor[R, F]) Query(ctx context.Context, session models.Session, filter Filter) []R {
	if !e.kind.dated {
		filter.Date = ""
	}
	student := session.Role == models.RoleStudent
	if student {
		if session.StudentID == "" {
			return []R{}
		}
		filter.StudentID = session.StudentID
	}

	all, err := db.ReadCollection[R](ctx, e.store, e.kind.storeKey)
	if err != nil {
		e.log.Warn("failed to read records, returning none", zap.Error(err))
	}

	out := make([]R, 0)
	for _, rec := range all {
		if filter.Matches(e.kind.keyOf(rec)) {
			out = append(out, rec)
		}
	}
	if student {
		sort.SliceStable(out, func(i, j int) bool {
			return laterDate(e.kind.keyOf(out[i]).Date, e.kind.keyOf(out[j]).Date)
		})
	}
	return out
}

// Preview returns what the editing screen shows for the selected scope: per
// roster entry the staged fields, else the persisted record, else defaults.
func (e *Editor[R, F]) Preview(ctx context.Context, session models.Session) ([]R, error) {
	if !session.IsLecturer() {
		return nil, ErrReadOnly
	}
	if e.scope.IsZero() {
		return nil, ErrNoScope
	}
	scope := e.scope

	roster, err := e.roster.Roster(ctx, scope.ClassroomID)
	if err != nil {
		return nil, fmt.Errorf("load roster for %s: %w", scope.ClassroomID, err)
	}

	persisted := make(map[NaturalKey]R)
	all, err := db.ReadCollection[R](ctx, e.store, e.kind.storeKey)
	if err != nil {
		e.log.Warn("failed to read records for preview", zap.Error(err))
	}
	for _, rec := range all {
		k := e.kind.keyOf(rec)
		if scope.Contains(k) {
			persisted[k] = rec
		}
	}

	out := make([]R, 0, len(roster))
	for _, entry := range roster {
		k := scope.Key(entry.StudentID)
		if staged, ok := e.buffer.Lookup(k); ok {
			out = append(out, e.kind.build(RecordID(e.kind.name, k), k, staged))
			continue
		}
		if rec, ok := persisted[k]; ok {
			out = append(out, rec)
			continue
		}
		var zero F
		out = append(out, e.kind.build(RecordID(e.kind.name, k), k, zero))
	}
	return out, nil
}

// ClearAll empties the whole collection and discards pending edits
func (e *Editor[R, F]) ClearAll(ctx context.Context, session models.Session) (Banner, error) {
	if !session.IsLecturer() {
		return Banner{}, ErrReadOnly
	}
	if err := db.WriteCollection(ctx, e.store, e.kind.storeKey, []R{}); err != nil {
		e.log.Error("failed to clear records", zap.Error(err))
		return e.banner(fmt.Sprintf("Error clearing %s. Please try again.", e.kind.noun), true), err
	}
	e.buffer.Reset()
	e.log.Info("all records cleared")
	return e.banner(fmt.Sprintf("All %s cleared successfully!", e.kind.noun), false), nil
}

func (e *Editor[R, F]) failure() Banner {
	return e.banner(fmt.Sprintf("Error saving %s. Please try again.", e.kind.name), true)
}

func (e *Editor[R, F]) banner(msg string, isError bool) Banner {
	return Banner{Message: msg, IsError: isError, DismissAfter: e.bannerTTL}
}

const dateLayout = "2006-01-02"

// laterDate orders a before b when a is the more recent date.
// Unparseable dates fall back to string order.
func laterDate(a, b string) bool {
	ta, errA := time.Parse(dateLayout, a)
	tb, errB := time.Parse(dateLayout, b)
	if errA == nil && errB == nil {
		return ta.After(tb)
	}
	return a > b
}
