package kernel

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []float32{1, 5, -2, -3, 2, 4, 0, 0, 0}}
	min, max := m.Bounds()
	if min != [3]float32{-3, 0, -2} {
		t.Errorf("Bounds() min = %v, want [-3 0 -2]", min)
	}
	if max != [3]float32{1, 5, 4} {
		t.Errorf("Bounds() max = %v, want [1 5 4]", max)
	}

	min, max = (&Mesh{}).Bounds()
	if min != ([3]float32{}) || max != ([3]float32{}) {
		t.Errorf("empty Bounds() = %v, %v", min, max)
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	box geom.BoundingBox
}

func (s *stubSolid) BoundingBox() geom.BoundingBox { return s.box }
func (s *stubSolid) Faces() []Face                 { return nil }
func (s *stubSolid) Edges() []geom.Curve           { return nil }
func (s *stubSolid) IsEmpty() bool                 { return s.box.IsEmpty() }

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(min, max v3.Vec) Solid {
	return &stubSolid{box: geom.BoxOf(min, max)}
}

func (k *stubKernel) Extrude(profile []geom.Loop, dir v3.Vec) (Solid, error) {
	var box geom.BoundingBox
	for _, l := range profile {
		box = box.Union(l.BoundingBox()).Union(l.Translate(dir).BoundingBox())
	}
	return &stubSolid{box: box}, nil
}

func (k *stubKernel) Union(a, _ Solid) Solid { return a }

func (k *stubKernel) CutWithHalfSpace(s Solid, _ geom.Plane) (Solid, error) { return s, nil }

func (k *stubKernel) Section(_ Solid, _ geom.Plane) ([]geom.Loop, error) { return nil, nil }

// stubMesher returns an empty mesh for every panel.
type stubMesher struct{}

func (stubMesher) Panel(geom.Plane, geom.Loop, []geom.Loop, float64) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)
var _ Mesher = stubMesher{}

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(v3.Vec{}, v3.Vec{X: 10, Y: 20, Z: 30})
	bb := s.BoundingBox()
	if bb.Min != (v3.Vec{}) {
		t.Errorf("Box min = %v, want [0 0 0]", bb.Min)
	}
	if bb.Max != (v3.Vec{X: 10, Y: 20, Z: 30}) {
		t.Errorf("Box max = %v, want [10 20 30]", bb.Max)
	}
}

func TestStubKernelExtrude(t *testing.T) {
	var k Kernel = &stubKernel{}
	sq := geom.PolygonLoop(v3.Vec{}, v3.Vec{X: 1}, v3.Vec{X: 1, Y: 1}, v3.Vec{Y: 1})
	s, err := k.Extrude([]geom.Loop{sq}, v3.Vec{Z: 2})
	if err != nil {
		t.Fatalf("Extrude() error = %v", err)
	}
	if got := s.BoundingBox().Max.Z; got != 2 {
		t.Errorf("extruded max Z = %v, want 2", got)
	}
}
