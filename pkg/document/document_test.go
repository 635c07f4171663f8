package document

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func square(x0, y0, x1, y1, z float64) geom.Loop {
	return geom.PolygonLoop(
		v3.Vec{X: x0, Y: y0, Z: z}, v3.Vec{X: x1, Y: y0, Z: z},
		v3.Vec{X: x1, Y: y1, Z: z}, v3.Vec{X: x0, Y: y1, Z: z},
	)
}

// buildWallWithWindow creates a 10 x 3 m wall along +X carrying a centred
// 1 x 2 m window.
func buildWallWithWindow(t *testing.T, sketch SketchMode) (*Document, *Element, *Element) {
	t.Helper()
	d := New()
	wall := NewWall("south", WallData{
		Location:  geom.NewLine(v3.Vec{}, v3.Vec{X: 10}),
		Height:    3,
		Thickness: 0.2,
		Sketch:    sketch,
	})
	win := NewInsert(CategoryWindow, "w1", wall, OpeningData{U: 5, V: 1.5, Width: 1, Height: 2})
	for _, e := range []*Element{wall, win} {
		if err := d.Add(e); err != nil {
			t.Fatalf("Add(%s): %v", e.Name, err)
		}
	}
	return d, wall, win
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ---------------------------------------------------------------------------
// Identity and indexing
// ---------------------------------------------------------------------------

func TestNewElementID(t *testing.T) {
	a := NewElementID("wall/south")
	b := NewElementID("wall/south")
	c := NewElementID("wall/north")
	if a != b {
		t.Errorf("same path gave different ids: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("different paths gave the same id %s", a)
	}
	if a.IsZero() || !ZeroID.IsZero() {
		t.Error("IsZero mismatch")
	}
	if len(a.Short()) != 8 {
		t.Errorf("Short() = %q, want 8 characters", a.Short())
	}

	text, err := a.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back ElementID
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if back != a {
		t.Errorf("text round trip = %s, want %s", back, a)
	}
}

func TestAddAndLookup(t *testing.T) {
	d, wall, win := buildWallWithWindow(t, SketchAuthored)

	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}
	if got := d.Lookup("south"); got == nil || got.ID != wall.ID {
		t.Errorf("Lookup(south) = %v", got)
	}
	if d.Lookup("missing") != nil {
		t.Error("Lookup should return nil for a missing name")
	}
	if got := d.Element(win.ID); got != win {
		t.Errorf("Element(win) = %v", got)
	}

	ids := d.ElementIDs()
	if len(ids) != 2 || ids[0] != wall.ID || ids[1] != win.ID {
		t.Errorf("ElementIDs() = %v, want insertion order", ids)
	}
	if hosts := d.Hosts(); len(hosts) != 1 || hosts[0] != wall {
		t.Errorf("Hosts() = %v", hosts)
	}
	if ins := d.Inserts(wall.ID); len(ins) != 1 || ins[0] != win.ID {
		t.Errorf("Inserts(wall) = %v", ins)
	}
	if ins := d.Inserts(ZeroID); ins != nil {
		t.Errorf("Inserts(ZeroID) = %v, want nil", ins)
	}

	tests := []struct {
		name string
		e    *Element
	}{
		{"duplicate id", NewWall("south", WallData{})},
		{"duplicate name", &Element{ID: NewElementID("other"), Name: "south"}},
		{"zero id", &Element{Name: "x"}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.Add(tt.e); !errors.Is(err, ErrDuplicate) {
				t.Errorf("Add err = %v, want ErrDuplicate", err)
			}
		})
	}
	if d.Len() != 2 {
		t.Errorf("failed adds changed Len() to %d", d.Len())
	}
}

func TestFingerprint(t *testing.T) {
	d1, _, _ := buildWallWithWindow(t, SketchAuthored)
	d2, _, _ := buildWallWithWindow(t, SketchAuthored)
	if d1.Fingerprint() != d2.Fingerprint() {
		t.Error("identical documents have different fingerprints")
	}
	before := d1.Fingerprint()
	if err := d1.Add(NewSlab(CategoryFloor, "f", SlabData{Thickness: 0.3})); err != nil {
		t.Fatal(err)
	}
	if d1.Fingerprint() == before {
		t.Error("fingerprint did not change after Add")
	}
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

func TestDeleteRequiresTransaction(t *testing.T) {
	d, wall, _ := buildWallWithWindow(t, SketchAuthored)
	if err := d.Delete(wall.ID); !errors.Is(err, ErrNoTransaction) {
		t.Fatalf("Delete outside transaction: err = %v, want ErrNoTransaction", err)
	}

	tx := d.Begin("delete")
	defer tx.Rollback()
	if err := d.Delete(NewElementID("nothing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing): err = %v, want ErrNotFound", err)
	}
}

func TestRollbackRestoresDocument(t *testing.T) {
	d, wall, win := buildWallWithWindow(t, SketchAuthored)
	before := d.Fingerprint()

	tx := d.Begin("delete wall")
	if err := d.Delete(wall.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if d.Element(win.ID) != nil {
		t.Error("deleting the host should delete its inserts")
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d after delete, want 0", d.Len())
	}
	tx.Rollback()

	if d.Fingerprint() != before {
		t.Error("rollback did not restore the document")
	}
	if d.Lookup("w1") == nil {
		t.Error("name index not restored")
	}
	if d.InTransaction() {
		t.Error("transaction still open after rollback")
	}
}

func TestNestedTransactions(t *testing.T) {
	d, wall, win := buildWallWithWindow(t, SketchAuthored)
	before := d.Fingerprint()

	outer := d.Begin("outer")
	if err := d.Delete(win.ID); err != nil {
		t.Fatal(err)
	}
	inner := d.Begin("inner")
	if err := d.Delete(wall.ID); err != nil {
		t.Fatal(err)
	}

	outer.Rollback()
	if !inner.Done() {
		t.Error("rolling back outer should close inner")
	}
	if d.Fingerprint() != before {
		t.Error("outer rollback did not restore the document")
	}

	// Idempotence.
	inner.Rollback()
	outer.Rollback()
	if d.Fingerprint() != before {
		t.Error("repeated rollback changed the document")
	}
	if err := outer.Commit(); !errors.Is(err, ErrTransactionClosed) {
		t.Errorf("Commit after Rollback: err = %v, want ErrTransactionClosed", err)
	}
}

func TestCommitKeepsEdits(t *testing.T) {
	d, _, win := buildWallWithWindow(t, SketchAuthored)

	tx := d.Begin("remove window")
	if err := d.Delete(win.ID); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Errorf("second Commit: %v", err)
	}
	tx.Rollback()
	if d.Element(win.ID) != nil {
		t.Error("Rollback after Commit must not restore the window")
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

func TestDeleteMaterializesHiddenSketch(t *testing.T) {
	d, wall, _ := buildWallWithWindow(t, SketchHidden)
	ids := map[ElementID]bool{}
	for _, id := range d.ElementIDs() {
		ids[id] = true
	}

	tx := d.Begin("delete wall")
	defer tx.Rollback()
	if err := d.Delete(wall.ID); err != nil {
		t.Fatal(err)
	}

	var found []*Element
	for _, e := range d.Elements() {
		if !ids[e.ID] {
			found = append(found, e)
		}
	}
	if len(found) != 1 {
		t.Fatalf("got %d new elements, want 1", len(found))
	}
	s, ok := found[0].Data.(SketchData)
	if !ok || found[0].Category != CategorySketch {
		t.Fatalf("new element is %s with %T", found[0].Category, found[0].Data)
	}
	if s.Owner != wall.ID {
		t.Errorf("sketch owner = %s, want %s", s.Owner.Short(), wall.ID.Short())
	}
	if len(s.Loops) != 1 || len(s.Loops[0].ControlPoints()) != 4 {
		t.Errorf("sketch loops = %v, want the wall outline", s.Loops)
	}
	if found[0].Name != "south/sketch" {
		t.Errorf("sketch name = %q", found[0].Name)
	}
}

func TestDeleteAuthoredSketchMaterializesNothing(t *testing.T) {
	d, wall, _ := buildWallWithWindow(t, SketchAuthored)
	tx := d.Begin("delete wall")
	defer tx.Rollback()
	if err := d.Delete(wall.ID); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}
