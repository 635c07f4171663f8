// Package profile extracts the closed planar loops that outline a host
// element, ignoring whatever the host carries.
//
// Three strategies are tried in order: the host's authored sketch, a
// derived sketch observed by deleting the host inside rolled-back
// transactions, and sections through the host's solid.
package profile

import (
	"errors"
	"fmt"

	"github.com/chazu/planarize/pkg/document"
	"github.com/chazu/planarize/pkg/geom"
)

var (
	ErrUnsupported      = errors.New("profile: unsupported geometry")
	ErrOutlineNotClosed = errors.New("profile: outline not closed")
	ErrNoProfile        = errors.New("profile: no profile found")
	ErrNotFound         = errors.New("profile: element not found")
)

// Source records which strategy produced a profile.
type Source int

const (
	SourceSketch  Source = iota // authored sketch
	SourceDerived               // sketch materialized by deleting the host
	SourceSolid                 // sections through the host solid
)

func (s Source) String() string {
	switch s {
	case SourceSketch:
		return "sketch"
	case SourceDerived:
		return "derived"
	case SourceSolid:
		return "solid"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// MarshalText renders the source by name.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Profile is a host's un-opened outline.
type Profile struct {
	Loops     []geom.Loop
	Plane     geom.Plane // plane the loops lie in
	Thickness float64    // host thickness measured along Plane.Normal
	Source    Source
}

// Extractor derives profiles. The zero value uses geom.DefaultTolerance.
type Extractor struct {
	Tolerance float64
}

func (x Extractor) tol() float64 {
	if x.Tolerance <= 0 {
		return geom.DefaultTolerance
	}
	return x.Tolerance
}

// Extract returns the outline of host id. The document is left as it was
// found on every return path.
func (x Extractor) Extract(doc *document.Document, id document.ElementID) (*Profile, error) {
	e := doc.Element(id)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}

	var h host
	var err error
	switch data := e.Data.(type) {
	case document.WallData:
		h, err = wallHost(data, stackOwner(doc, e.Name))
	case document.FloorData:
		h, err = slabHost(data.SlabData)
	case document.RoofData:
		h, err = slabHost(data.SlabData)
	case document.CeilingData:
		h, err = slabHost(data.SlabData)
	default:
		return nil, fmt.Errorf("%w: %s is not a host", ErrUnsupported, e.Category)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", e.Category, e.Name, err)
	}

	p := &Profile{Plane: h.plane, Thickness: h.thickness}
	tol := x.tol()

	if h.sketch == document.SketchAuthored {
		if err := checkClosed(h.loops, tol); err == nil && len(h.loops) > 0 {
			p.Loops, p.Source = h.loops, SourceSketch
			return p, nil
		}
	}

	loops, err := x.derived(doc, id)
	switch {
	case err == nil:
		p.Loops, p.Source = loops, SourceDerived
		return p, nil
	case !errors.Is(err, ErrNoProfile):
		return nil, fmt.Errorf("%s %q: %w", e.Category, e.Name, err)
	}

	solid, err := doc.Geometry(id, document.GeometryOptions{IncludeInvisible: true})
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w: %v", e.Category, e.Name, ErrNoProfile, err)
	}
	loops, err = h.section(doc.Kernel, solid, tol)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", e.Category, e.Name, err)
	}
	p.Loops, p.Source = loops, SourceSolid
	return p, nil
}

// stackOwner reports whether some wall names the wall called name as its
// stacked owner.
func stackOwner(doc *document.Document, name string) bool {
	if name == "" {
		return false
	}
	for _, e := range doc.Hosts() {
		if w, ok := e.Data.(document.WallData); ok && w.StackedOwner == name {
			return true
		}
	}
	return false
}

func checkClosed(loops []geom.Loop, tol float64) error {
	for i, l := range loops {
		if !l.IsClosed(tol) {
			return fmt.Errorf("%w: loop %d has a gap of %g", ErrOutlineNotClosed, i, l.Gap())
		}
	}
	return nil
}

// derived deletes the host's inserts in one transaction and the host in a
// nested one, then reads the sketch elements the deletion materialized.
// Both transactions are rolled back before it returns or panics.
func (x Extractor) derived(doc *document.Document, id document.ElementID) (loops []geom.Loop, err error) {
	defer func() {
		if r := recover(); r != nil {
			loops, err = nil, fmt.Errorf("derived profile: %v", r)
		}
	}()

	inserts := doc.Begin("remove inserts")
	defer inserts.Rollback()
	for _, ins := range doc.Inserts(id) {
		if err := doc.Delete(ins); err != nil {
			return nil, err
		}
	}

	host := doc.Begin("remove host")
	defer host.Rollback()
	before := make(map[document.ElementID]bool, doc.Len())
	for _, eid := range doc.ElementIDs() {
		before[eid] = true
	}
	if err := doc.Delete(id); err != nil {
		return nil, err
	}
	for _, e := range doc.Elements() {
		if before[e.ID] {
			continue
		}
		s, ok := e.Data.(document.SketchData)
		if !ok || s.Owner != id {
			continue
		}
		if err := checkClosed(s.Loops, x.tol()); err != nil {
			return nil, err
		}
		loops = append(loops, s.Loops...)
	}
	if len(loops) == 0 {
		return nil, ErrNoProfile
	}
	return loops, nil
}
