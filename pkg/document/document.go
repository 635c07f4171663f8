package document

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel"
	"github.com/chazu/planarize/pkg/kernel/brep"
)

var (
	ErrNotFound  = errors.New("document: element not found")
	ErrDuplicate = errors.New("document: duplicate element")
)

// state is the part of a document a transaction snapshots.
type state struct {
	elements map[ElementID]*Element
	order    []ElementID
	names    map[string]ElementID
}

func newState() state {
	return state{
		elements: make(map[ElementID]*Element),
		names:    make(map[string]ElementID),
	}
}

// clone copies the indexes. Elements are shared; they are never mutated
// once added.
func (s state) clone() state {
	c := state{
		elements: make(map[ElementID]*Element, len(s.elements)),
		order:    append([]ElementID(nil), s.order...),
		names:    make(map[string]ElementID, len(s.names)),
	}
	for k, v := range s.elements {
		c.elements[k] = v
	}
	for k, v := range s.names {
		c.names[k] = v
	}
	return c
}

// Document holds elements in insertion order.
type Document struct {
	// Kernel builds element solids. New sets a brep kernel.
	Kernel kernel.Kernel
	// Tolerance is the linear tolerance used when building geometry.
	Tolerance float64

	state
	open []*Transaction
}

// New creates an empty document using a brep kernel at the default
// tolerance.
func New() *Document {
	return &Document{
		Kernel:    brep.New(geom.DefaultTolerance),
		Tolerance: geom.DefaultTolerance,
		state:     newState(),
	}
}

// Add inserts e. Ids must be unique and non-zero; names, when set, must be
// unique too.
func (d *Document) Add(e *Element) error {
	if e == nil || e.ID.IsZero() {
		return fmt.Errorf("%w: element without id", ErrDuplicate)
	}
	if _, ok := d.elements[e.ID]; ok {
		return fmt.Errorf("%w: id %s", ErrDuplicate, e.ID.Short())
	}
	if e.Name != "" {
		if _, ok := d.names[e.Name]; ok {
			return fmt.Errorf("%w: name %q", ErrDuplicate, e.Name)
		}
		d.names[e.Name] = e.ID
	}
	d.elements[e.ID] = e
	d.order = append(d.order, e.ID)
	return nil
}

// Element returns the element with id, or nil.
func (d *Document) Element(id ElementID) *Element {
	return d.elements[id]
}

// Lookup returns the element with the given name, or nil.
func (d *Document) Lookup(name string) *Element {
	id, ok := d.names[name]
	if !ok {
		return nil
	}
	return d.elements[id]
}

// Len returns the number of elements.
func (d *Document) Len() int { return len(d.order) }

// ElementIDs returns all ids in insertion order.
func (d *Document) ElementIDs() []ElementID {
	return append([]ElementID(nil), d.order...)
}

// Elements returns all elements in insertion order.
func (d *Document) Elements() []*Element {
	out := make([]*Element, len(d.order))
	for i, id := range d.order {
		out[i] = d.elements[id]
	}
	return out
}

// Hosts returns the walls, floors, roofs and ceilings in insertion order.
func (d *Document) Hosts() []*Element {
	var out []*Element
	for _, id := range d.order {
		if e := d.elements[id]; e.Category.IsHost() {
			out = append(out, e)
		}
	}
	return out
}

// Inserts returns the ids of elements hosted by host, in insertion order.
func (d *Document) Inserts(host ElementID) []ElementID {
	if host.IsZero() {
		return nil
	}
	var out []ElementID
	for _, id := range d.order {
		if d.elements[id].Host == host {
			out = append(out, id)
		}
	}
	return out
}

// Fingerprint returns a digest of the document's contents. Two documents
// with the same elements in the same order have equal fingerprints.
func (d *Document) Fingerprint() string {
	h := sha256.New()
	for _, id := range d.order {
		e := d.elements[id]
		fmt.Fprintf(h, "%s|%s|%q|%s|%t|%#v\n", e.ID, e.Category, e.Name, e.Host, e.Hidden, e.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (d *Document) remove(id ElementID) {
	e, ok := d.elements[id]
	if !ok {
		return
	}
	delete(d.elements, id)
	if e.Name != "" && d.names[e.Name] == id {
		delete(d.names, e.Name)
	}
	for i, o := range d.order {
		if o == id {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
}
