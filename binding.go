package icoforge

import (
	"errors"
	"image"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUnknownBinding is returned for identifiers not present in a Table.
	ErrUnknownBinding = errors.New("icoforge: unknown source binding")
	// ErrNoSubject is returned when background removal leaves nothing behind.
	ErrNoSubject = errors.New("icoforge: no subject found")
)

// SourceBinding ties a source image, and an optional crop region, to a
// stable identifier so it can be rendered again whenever the effects change.
type SourceBinding struct {
	ID    string
	Image *image.NRGBA
	Crop  *CropBox
}

// Table owns the source bindings of a session. A bound image is never
// modified in place: operations that change it swap in a new image, so
// snapshots handed out earlier stay valid.
type Table struct {
	mu    sync.Mutex
	items map[string]*SourceBinding
	order []string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{items: make(map[string]*SourceBinding)}
}

// Add binds a copy of img and returns the new binding.
func (t *Table) Add(img image.Image, crop *CropBox) SourceBinding {
	b := &SourceBinding{
		ID:    uuid.NewString(),
		Image: Clone(img),
	}
	if crop != nil {
		c := *crop
		b.Crop = &c
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[b.ID] = b
	t.order = append(t.order, b.ID)
	return *b
}

// Get returns a snapshot of the binding with the given id.
func (t *Table) Get(id string) (SourceBinding, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.items[id]
	if !ok {
		return SourceBinding{}, false
	}
	return *b, true
}

// Remove discards a binding. It reports whether the binding existed.
func (t *Table) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the binding identifiers in insertion order.
func (t *Table) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Snapshot returns copies of every binding in insertion order.
func (t *Table) Snapshot() []SourceBinding {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SourceBinding, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.items[id])
	}
	return out
}

// Isolate replaces the bound image with its background-free, recentred
// version. The binding is left untouched when no subject is found.
func (t *Table) Isolate(id string, opts ExtractOptions) error {
	b, ok := t.Get(id)
	if !ok {
		return ErrUnknownBinding
	}
	out, ok := isolateAndRecenter(b.Image, opts)
	if !ok {
		return ErrNoSubject
	}
	return t.replace(id, b.Image, out)
}

// replace swaps the bound image, provided it is still the one the caller
// worked from.
func (t *Table) replace(id string, from, to *image.NRGBA) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.items[id]
	if !ok {
		return ErrUnknownBinding
	}
	if b.Image == from {
		b.Image = to
	}
	return nil
}

// Render renders the binding with the given effects.
func (t *Table) Render(id string, size int, fx Effects) (*image.NRGBA, error) {
	b, ok := t.Get(id)
	if !ok {
		return nil, ErrUnknownBinding
	}
	return Render(b.Image, size, fx, b.Crop)
}
