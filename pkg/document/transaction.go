package document

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/planarize/pkg/geom"
)

var (
	ErrNoTransaction     = errors.New("document: no open transaction")
	ErrTransactionClosed = errors.New("document: transaction already rolled back")
)

// Transaction is a scope of edits that can be undone. Transactions nest;
// rolling back an outer transaction also rolls back every transaction
// opened inside it.
type Transaction struct {
	doc       *Document
	name      string
	snapshot  state
	depth     int
	done      bool
	committed bool
}

// Begin opens a transaction nested in any transaction already open.
func (d *Document) Begin(name string) *Transaction {
	t := &Transaction{
		doc:      d,
		name:     name,
		snapshot: d.state.clone(),
		depth:    len(d.open),
	}
	d.open = append(d.open, t)
	return t
}

// InTransaction reports whether a transaction is open.
func (d *Document) InTransaction() bool { return len(d.open) > 0 }

// Name returns the name passed to Begin.
func (t *Transaction) Name() string { return t.name }

// Done reports whether the transaction was committed or rolled back.
func (t *Transaction) Done() bool { return t.done }

// Commit keeps the transaction's edits and closes it along with any
// transactions still open inside it. Committing twice is a no-op;
// committing after Rollback returns ErrTransactionClosed.
func (t *Transaction) Commit() error {
	if t.done {
		if t.committed {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrTransactionClosed, t.name)
	}
	d := t.doc
	for _, inner := range d.open[t.depth:] {
		inner.done, inner.committed = true, true
	}
	d.open = d.open[:t.depth]
	return nil
}

// Rollback restores the document to its state at Begin. It is a no-op on
// a finished transaction, so it is safe to defer right after Begin.
func (t *Transaction) Rollback() {
	if t.done {
		return
	}
	d := t.doc
	d.state = t.snapshot
	for _, inner := range d.open[t.depth:] {
		inner.done = true
	}
	d.open = d.open[:t.depth]
}

// Delete removes id and every element it hosts. Deleting a host whose
// sketch is hidden materializes that sketch as a new element owned by the
// host. Delete needs an open transaction.
func (d *Document) Delete(id ElementID) error {
	if !d.InTransaction() {
		return ErrNoTransaction
	}
	e, ok := d.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}
	for _, ins := range d.Inserts(id) {
		d.remove(ins)
	}
	d.remove(id)

	loops, mode := sketchOf(e.Data)
	if mode != SketchHidden {
		return nil
	}
	sketch := &Element{
		ID:       ElementID(uuid.NewSHA1(uuid.UUID(id), []byte("sketch"))),
		Category: CategorySketch,
		Hidden:   true,
		Data:     SketchData{Owner: id, Loops: loops},
	}
	if e.Name != "" && d.Lookup(e.Name+"/sketch") == nil {
		sketch.Name = e.Name + "/sketch"
	}
	return d.Add(sketch)
}

func sketchOf(data ElementData) ([]geom.Loop, SketchMode) {
	if w, ok := data.(WallData); ok {
		return w.SketchLoops(), w.Sketch
	}
	if s, ok := slabOf(data); ok {
		return s.SketchLoops(), s.Sketch
	}
	return nil, SketchNone
}
