package records

// EditBuffer holds pending edits keyed by natural key, in staging order.
// Nothing in it is persisted until a commit.
type EditBuffer[F any] struct {
	order []NaturalKey
	edits map[NaturalKey]F
	dirty bool
}

// Stage upserts the pending fields for k and marks the buffer dirty
func (b *EditBuffer[F]) Stage(k NaturalKey, fields F) {
	if b.edits == nil {
		b.edits = make(map[NaturalKey]F)
	}
	if _, ok := b.edits[k]; !ok {
		b.order = append(b.order, k)
	}
	b.edits[k] = fields
	b.dirty = true
}

// Lookup returns the pending fields for k
func (b *EditBuffer[F]) Lookup(k NaturalKey) (F, bool) {
	f, ok := b.edits[k]
	return f, ok
}

// Remove drops the pending fields for k. The buffer stays dirty: the removal
// itself is a change that only a commit or a discard settles.
func (b *EditBuffer[F]) Remove(k NaturalKey) {
	if _, ok := b.edits[k]; ok {
		delete(b.edits, k)
		for i, key := range b.order {
			if key == k {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
	b.dirty = true
}

// Reset empties the buffer and marks it clean
func (b *EditBuffer[F]) Reset() {
	b.order = nil
	b.edits = nil
	b.dirty = false
}

// Len returns the number of staged keys
func (b *EditBuffer[F]) Len() int {
	return len(b.order)
}

// Dirty reports whether anything changed since the last reset
func (b *EditBuffer[F]) Dirty() bool {
	return b.dirty
}

// Keys returns the staged keys in staging order
func (b *EditBuffer[F]) Keys() []NaturalKey {
	out := make([]NaturalKey, len(b.order))
	copy(out, b.order)
	return out
}
