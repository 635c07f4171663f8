// Package convert turns host elements into planar surfaces with their
// openings attached. It runs, per element, the profile extractor, the
// curve-loop joiner, the loop classifier, the opening resolver and the
// assignment engine, in that order.
package convert

import (
	"errors"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chazu/planarize/pkg/classify"
	"github.com/chazu/planarize/pkg/diag"
	"github.com/chazu/planarize/pkg/document"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel"
	"github.com/chazu/planarize/pkg/kernel/sdfx"
	"github.com/chazu/planarize/pkg/opening"
	"github.com/chazu/planarize/pkg/planar"
	"github.com/chazu/planarize/pkg/profile"
	"github.com/chazu/planarize/pkg/stitch"
)

// DefaultCacheSize is the number of converted elements kept by default.
const DefaultCacheSize = 256

// ErrNotHost is returned when asked to convert an element that is not a
// wall, floor, roof or ceiling.
var ErrNotHost = errors.New("convert: element is not a host")

// Result is the planar model of one host element. Skipped results carry
// no surfaces and at least one error diagnostic.
type Result struct {
	ElementID   document.ElementID                             `json:"element_id"`
	Name        string                                         `json:"name"`
	Category    document.Category                              `json:"category"`
	Source      profile.Source                                 `json:"source"`
	Thickness   float64                                        `json:"thickness"`
	Skipped     bool                                           `json:"skipped,omitempty"`
	Surfaces    []*planar.PlanarSurface                        `json:"surfaces"`
	Openings    map[*planar.PlanarSurface][]*opening.Footprint `json:"-"`
	Diagnostics diag.List                                      `json:"diagnostics,omitempty"`
}

// Options configures a Converter.
type Options struct {
	Tolerance        float64
	AngularTolerance float64
	Strategy         classify.Strategy // nil means bounding-box containment
	CacheSize        int
	MeshCells        int // marching cubes resolution for previews
}

type cacheKey struct {
	doc string
	id  document.ElementID
}

// Converter runs the per-element pipeline and remembers finished results.
// A Converter is not safe for concurrent use.
type Converter struct {
	Extractor  profile.Extractor
	Classifier classify.Classifier
	Resolver   opening.Resolver
	Assigner   planar.Assigner
	Mesher     kernel.Mesher
	Tolerance  float64

	cache *lru.Cache[cacheKey, *Result]
}

// New returns a converter. A zero tolerance uses geom.DefaultTolerance.
func New(opts Options) (*Converter, error) {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = geom.DefaultTolerance
	}
	ang := opts.AngularTolerance
	if ang <= 0 {
		ang = geom.AngularTolerance
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, *Result](size)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	strategy := opts.Strategy
	if strategy == nil {
		strategy = classify.BoundingBoxStrategy{Tolerance: tol}
	}
	return &Converter{
		Extractor:  profile.Extractor{Tolerance: tol},
		Classifier: classify.Classifier{Strategy: strategy, Tolerance: tol},
		Resolver:   opening.Resolver{Tolerance: tol, AngularTolerance: ang},
		Assigner:   planar.Assigner{Strategy: strategy, Tolerance: tol},
		Mesher:     sdfx.New(opts.MeshCells),
		Tolerance:  tol,
		cache:      cache,
	}, nil
}

// Convert returns the planar model of host id. Extraction problems are
// reported in the result's diagnostics; the error is reserved for ids
// that do not name a host.
func (c *Converter) Convert(doc *document.Document, id document.ElementID) (*Result, error) {
	return c.convert(doc, id, doc.Fingerprint())
}

func (c *Converter) convert(doc *document.Document, id document.ElementID, fingerprint string) (*Result, error) {
	e := doc.Element(id)
	if e == nil {
		return nil, fmt.Errorf("convert: %w: %s", document.ErrNotFound, id.Short())
	}
	if !e.Category.IsHost() {
		return nil, fmt.Errorf("%w: %s %q", ErrNotHost, e.Category, e.Name)
	}
	key := cacheKey{doc: fingerprint, id: id}
	if r, ok := c.cache.Get(key); ok {
		return r, nil
	}

	r := &Result{ElementID: id, Name: e.Name, Category: e.Category}
	c.run(doc, e, r)
	r.Diagnostics = r.Diagnostics.ForElement(id.String())
	c.cache.Add(key, r)
	return r, nil
}

// run fills r. Every failure becomes a diagnostic on r.
func (c *Converter) run(doc *document.Document, e *document.Element, r *Result) {
	resolver := c.Resolver
	if resolver.Kernel == nil {
		resolver.Kernel = doc.Kernel
	}

	p, err := c.Extractor.Extract(doc, e.ID)
	if err != nil {
		r.skip(extractionDiagnostic(err))
		return
	}
	r.Source, r.Thickness = p.Source, p.Thickness

	var curves []geom.Curve
	for _, l := range p.Loops {
		curves = append(curves, l.Curves...)
	}
	joined := stitch.Join(curves, c.tol())
	if len(joined.Open) > 0 {
		r.skip(diag.Warning(diag.CodeOutlineNotClosed, "",
			"%d of %d profile chains do not close within %g", len(joined.Open), len(joined.Loops()), c.tol()))
		return
	}
	if len(joined.Closed) == 0 {
		r.skip(diag.Errorf(diag.CodeExtractionFailed, "", "profile has no loops"))
		return
	}

	groups, cdiags := c.Classifier.Classify(joined.Closed)
	r.Diagnostics = append(r.Diagnostics, cdiags...)
	surfaces := planar.FromGroups(p.Plane, groups)

	footprints, odiags := resolver.ResolveAll(c.requests(doc, e.ID, p.Plane))
	r.Diagnostics = append(r.Diagnostics, odiags...)

	assignment, adiags := c.Assigner.Assign(surfaces, footprints)
	r.Diagnostics = append(r.Diagnostics, adiags...)
	r.Surfaces = assignment.Surfaces
	r.Openings = assignment.Openings
}

func (r *Result) skip(d diag.Diagnostic) {
	r.Skipped = true
	r.Diagnostics = append(r.Diagnostics, d)
}

func (c *Converter) tol() float64 {
	if c.Tolerance <= 0 {
		return geom.DefaultTolerance
	}
	return c.Tolerance
}

func extractionDiagnostic(err error) diag.Diagnostic {
	switch {
	case errors.Is(err, profile.ErrUnsupported):
		return diag.Warning(diag.CodeUnsupportedGeometry, "", "%v", err)
	case errors.Is(err, profile.ErrOutlineNotClosed):
		return diag.Warning(diag.CodeOutlineNotClosed, "", "%v", err)
	default:
		return diag.Errorf(diag.CodeExtractionFailed, "", "%v", err)
	}
}

// requests builds one resolver request per insert of host. Inserts whose
// box or host geometry cannot be built still get a request; the resolver
// reports them.
func (c *Converter) requests(doc *document.Document, host document.ElementID, plane geom.Plane) []opening.Request {
	inserts := doc.Inserts(host)
	if len(inserts) == 0 {
		return nil
	}
	solid, err := doc.Geometry(host, document.GeometryOptions{Detail: document.DetailFine, IncludeInvisible: true})
	if err != nil {
		solid = nil
	}
	var face kernel.Face
	if solid != nil {
		for _, f := range solid.Faces() {
			if f.IsPlanar() && geom.SameDirection(f.Normal(), plane.Normal, c.Resolver.AngularTolerance) {
				face = f
				break
			}
		}
	}
	reqs := make([]opening.Request, 0, len(inserts))
	for _, id := range inserts {
		e := doc.Element(id)
		box, _ := doc.BoundingBox(id)
		reqs = append(reqs, opening.Request{
			Opening:   id,
			Name:      e.Name,
			Category:  e.Category,
			Box:       box,
			HostPlane: plane,
			HostSolid: solid,
			Face:      face,
		})
	}
	return reqs
}

// ConvertAll converts every host in document order. A failure or panic
// in one element is reported and the batch carries on.
func (c *Converter) ConvertAll(doc *document.Document) ([]*Result, diag.List) {
	fingerprint := doc.Fingerprint()
	var (
		out   []*Result
		diags diag.List
	)
	for _, e := range doc.Hosts() {
		r, err := c.convertSafe(doc, e, fingerprint)
		if err != nil {
			log.Printf("convert: %s %q: %v", e.Category, e.Name, err)
			diags = append(diags, diag.Errorf(diag.CodeExtractionFailed, e.ID.String(), "%v", err))
			continue
		}
		out = append(out, r)
		diags = append(diags, r.Diagnostics...)
	}
	return out, diags
}

func (c *Converter) convertSafe(doc *document.Document, e *document.Element, fingerprint string) (r *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	return c.convert(doc, e.ID, fingerprint)
}

// Purge drops every cached result.
func (c *Converter) Purge() { c.cache.Purge() }

// Cached reports how many results are cached.
func (c *Converter) Cached() int { return c.cache.Len() }

// Mesh renders each surface of r as a panel of the host's thickness. Wall
// panels are centred on the profile plane; slab panels hang below it.
func (c *Converter) Mesh(r *Result) ([]*kernel.Mesh, error) {
	if r.Skipped {
		return nil, nil
	}
	var out []*kernel.Mesh
	for i, s := range r.Surfaces {
		plane := s.Plane
		if r.Category == document.CategoryWall {
			plane = plane.Offset(-r.Thickness / 2)
		} else {
			plane = plane.Flip()
		}
		m, err := c.Mesher.Panel(plane, s.Outer.ProjectOnto(plane), projectAll(s.Holes, plane), r.Thickness)
		if err != nil {
			return nil, fmt.Errorf("mesh %s surface %d: %w", r.Name, i, err)
		}
		m.Element = fmt.Sprintf("%s#%d", partName(r), i)
		out = append(out, m)
	}
	return out, nil
}

func projectAll(loops []geom.Loop, plane geom.Plane) []geom.Loop {
	out := make([]geom.Loop, len(loops))
	for i, l := range loops {
		out[i] = l.ProjectOnto(plane)
	}
	return out
}

// partName returns the element name, falling back to the short id.
func partName(r *Result) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ElementID.Short()
}
