package main

import (
	"fmt"
	"log"

	"github.com/chazu/planarize/pkg/config"
	"github.com/chazu/planarize/pkg/convert"
	"github.com/chazu/planarize/pkg/diag"
	"github.com/chazu/planarize/pkg/document"
	"github.com/chazu/planarize/pkg/engine"
)

// colorPalette assigns distinct preview colours to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App wires the model engine to the converter. Each command builds one.
type App struct {
	engine    *engine.Engine
	converter *convert.Converter
}

// MeshData is the JSON mesh format written by the mesh command.
type MeshData struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	Element   string    `json:"element"`
	Color     string    `json:"color"`
	Triangles int       `json:"triangles"`
}

// EvalErrorData is a JSON-serializable evaluation error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Report is the outcome of converting one model.
type Report struct {
	Elements    []*convert.Result          `json:"elements"`
	Diagnostics diag.List                  `json:"diagnostics"`
	Validation  []document.ValidationError `json:"validation,omitempty"`
	Errors      []EvalErrorData            `json:"errors,omitempty"`
}

// Failed reports whether the model could not be evaluated or converted
// cleanly.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0 || r.Diagnostics.HasErrors()
}

// NewApp creates an App from settings.
func NewApp(cfg config.Config) (*App, error) {
	conv, err := convert.New(cfg.ConverterOptions())
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine()
	eng.Units = cfg.Units
	return &App{engine: eng, converter: conv}, nil
}

// Load evaluates source into a document. Evaluation errors come back as
// EvalErrorData; the error return is reserved for fatal failures.
func (a *App) Load(source string) (*document.Document, []EvalErrorData, error) {
	d, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("evaluate: %v", err)
		return nil, nil, err
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, len(evalErrs))
		for i, e := range evalErrs {
			out[i] = EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		}
		return nil, out, nil
	}
	return d, nil, nil
}

// Convert evaluates source and converts every host element.
func (a *App) Convert(source string) (*Report, error) {
	report := &Report{Elements: []*convert.Result{}, Diagnostics: diag.List{}}

	d, evalErrs, err := a.Load(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		report.Errors = evalErrs
		return report, nil
	}

	vr := document.Validate(d)
	report.Validation = append(vr.Errors, vr.Warnings...)

	results, diags := a.converter.ConvertAll(d)
	report.Elements = append(report.Elements, results...)
	report.Diagnostics = append(report.Diagnostics, diags...)
	return report, nil
}

// Mesh evaluates source and renders preview meshes for the named host
// elements, or for every host when names is empty.
func (a *App) Mesh(source string, names ...string) ([]MeshData, []EvalErrorData, error) {
	d, evalErrs, err := a.Load(source)
	if err != nil || len(evalErrs) > 0 {
		return nil, evalErrs, err
	}

	var hosts []*document.Element
	if len(names) == 0 {
		hosts = d.Hosts()
	}
	for _, name := range names {
		e := d.Lookup(name)
		if e == nil {
			return nil, nil, fmt.Errorf("no element named %q", name)
		}
		hosts = append(hosts, e)
	}

	out := []MeshData{}
	for _, e := range hosts {
		r, err := a.converter.Convert(d, e.ID)
		if err != nil {
			return nil, nil, err
		}
		if r.Skipped {
			log.Printf("mesh: %s %q skipped: %s", e.Category, e.Name, r.Diagnostics)
			continue
		}
		meshes, err := a.converter.Mesh(r)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range meshes {
			out = append(out, MeshData{
				Vertices:  m.Vertices,
				Normals:   m.Normals,
				Indices:   m.Indices,
				Element:   m.Element,
				Color:     colorPalette[len(out)%len(colorPalette)],
				Triangles: m.TriangleCount(),
			})
		}
	}
	return out, nil, nil
}
