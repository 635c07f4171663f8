package document

import "fmt"

// ValidationSeverity indicates whether a validation finding makes the
// document unusable or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // element cannot be converted
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// MarshalText renders the severity by name.
func (s ValidationSeverity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ValidationError describes a single validation finding.
type ValidationError struct {
	ElementID ElementID          `json:"element_id"` // zero if document-level
	Message   string             `json:"message"`
	Severity  ValidationSeverity `json:"severity"`
}

func (e ValidationError) Error() string {
	if e.ElementID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] element %s: %s", e.Severity, e.ElementID.Short(), e.Message)
}

// ValidationResult bundles errors and warnings.
type ValidationResult struct {
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// OK reports whether no errors were found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks followed by the extent checks. It
// never mutates the document.
func Validate(d *Document) ValidationResult {
	var all []ValidationError
	all = append(all, validatePayloads(d)...)
	all = append(all, validateReferences(d)...)
	all = append(all, validateDimensions(d)...)
	all = append(all, validateExtents(d)...)

	var r ValidationResult
	for _, f := range all {
		if f.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, f)
		} else {
			r.Errors = append(r.Errors, f)
		}
	}
	return r
}

func errorf(id ElementID, format string, args ...any) ValidationError {
	return ValidationError{ElementID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func warnf(id ElementID, format string, args ...any) ValidationError {
	return ValidationError{ElementID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// validatePayloads checks that every element carries the payload its
// category calls for.
func validatePayloads(d *Document) []ValidationError {
	var errs []ValidationError
	for _, e := range d.Elements() {
		ok := false
		switch e.Data.(type) {
		case WallData:
			ok = e.Category == CategoryWall
		case FloorData:
			ok = e.Category == CategoryFloor
		case RoofData:
			ok = e.Category == CategoryRoof
		case CeilingData:
			ok = e.Category == CategoryCeiling
		case OpeningData:
			ok = e.Category.IsInsert()
		case SketchData:
			ok = e.Category == CategorySketch
		}
		if !ok {
			errs = append(errs, errorf(e.ID, "%s carries %T payload", e.Category, e.Data))
		}
	}
	return errs
}

// validateReferences checks host links, sketch owners and stacked-wall
// owners.
func validateReferences(d *Document) []ValidationError {
	var errs []ValidationError
	for _, e := range d.Elements() {
		switch {
		case e.Category.IsInsert() && e.Host.IsZero():
			errs = append(errs, errorf(e.ID, "%s %q has no host", e.Category, e.Name))
		case e.Category.IsInsert():
			h := d.Element(e.Host)
			if h == nil {
				errs = append(errs, errorf(e.ID, "host %s does not exist", e.Host.Short()))
			} else if !h.Category.IsHost() {
				errs = append(errs, errorf(e.ID, "host %q is a %s", h.Name, h.Category))
			}
		case !e.Host.IsZero():
			errs = append(errs, warnf(e.ID, "%s %q is not an insert but names a host", e.Category, e.Name))
		}
		if s, ok := e.Data.(SketchData); ok && d.Element(s.Owner) == nil {
			errs = append(errs, warnf(e.ID, "sketch owner %s does not exist", s.Owner.Short()))
		}
		if w, ok := e.Data.(WallData); ok && w.StackedOwner != "" && d.Lookup(w.StackedOwner) == nil {
			errs = append(errs, warnf(e.ID, "stacked owner %q does not exist", w.StackedOwner))
		}
	}
	return errs
}

// validateDimensions checks that sizes are positive and locations have
// length.
func validateDimensions(d *Document) []ValidationError {
	var errs []ValidationError
	for _, e := range d.Elements() {
		switch data := e.Data.(type) {
		case WallData:
			if data.Location == nil || data.Location.Length() <= d.tolerance() {
				errs = append(errs, errorf(e.ID, "wall %q has no location", e.Name))
			}
			if data.Height <= 0 || data.Thickness <= 0 {
				errs = append(errs, errorf(e.ID, "wall %q: height %g and thickness %g must be positive", e.Name, data.Height, data.Thickness))
			}
		case OpeningData:
			if data.Width <= 0 || data.Height <= 0 {
				errs = append(errs, errorf(e.ID, "%s %q: width %g and height %g must be positive", e.Category, e.Name, data.Width, data.Height))
			}
		case SketchData:
		default:
			s, ok := slabOf(data)
			if !ok {
				continue
			}
			if len(s.Boundary) == 0 {
				errs = append(errs, errorf(e.ID, "%s %q has no boundary", e.Category, e.Name))
			}
			if s.Thickness <= 0 {
				errs = append(errs, errorf(e.ID, "%s %q: thickness %g must be positive", e.Category, e.Name, s.Thickness))
			}
		}
	}
	return errs
}

// validateExtents warns about inserts that reach beyond their host.
func validateExtents(d *Document) []ValidationError {
	var warns []ValidationError
	for _, e := range d.Elements() {
		if !e.Category.IsInsert() || d.Element(e.Host) == nil {
			continue
		}
		box, err := d.BoundingBox(e.ID)
		if err != nil {
			continue
		}
		hostBox, err := d.BoundingBox(e.Host)
		if err != nil {
			continue
		}
		if !hostBox.ContainsAll(box.Corners(), d.tolerance()) {
			warns = append(warns, warnf(e.ID, "%s %q extends beyond its host", e.Category, e.Name))
		}
	}
	return warns
}
