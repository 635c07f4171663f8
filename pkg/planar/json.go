package planar

import (
	"encoding/json"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
)

type surfaceJSON struct {
	Origin   [3]float64     `json:"origin"`
	Normal   [3]float64     `json:"normal"`
	Area     float64        `json:"area"`
	Outer    [][3]float64   `json:"outer"`
	Holes    [][][3]float64 `json:"holes,omitempty"`
	Openings []string       `json:"openings,omitempty"`
}

func point(p v3.Vec) [3]float64 { return [3]float64{p.X, p.Y, p.Z} }

func points(l geom.Loop) [][3]float64 {
	pts := l.ControlPoints()
	out := make([][3]float64, len(pts))
	for i, p := range pts {
		out[i] = point(p)
	}
	return out
}

// MarshalJSON writes loops as control-point lists and openings by name.
func (s *PlanarSurface) MarshalJSON() ([]byte, error) {
	j := surfaceJSON{
		Origin: point(s.Plane.Origin),
		Normal: point(s.Plane.Normal),
		Area:   s.Area(),
		Outer:  points(s.Outer),
	}
	for _, h := range s.Holes {
		j.Holes = append(j.Holes, points(h))
	}
	for _, o := range s.Openings {
		name := o.Name
		if name == "" {
			name = o.ElementID.String()
		}
		j.Openings = append(j.Openings, name)
	}
	return json.Marshal(j)
}
