package document

import "github.com/google/uuid"

// ElementID is a deterministic identifier derived from an element's path in
// the model, so re-evaluating the same model yields the same ids.
type ElementID uuid.UUID

// ZeroID is the empty element id.
var ZeroID ElementID

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("planarize/element"))

// NewElementID returns the id for path, e.g. "wall/south" or
// "window/south/w1".
func NewElementID(path string) ElementID {
	return ElementID(uuid.NewSHA1(namespace, []byte(path)))
}

// IsZero reports whether id is the zero id.
func (id ElementID) IsZero() bool { return id == ZeroID }

func (id ElementID) String() string { return uuid.UUID(id).String() }

// Short returns the first eight hex digits, for messages.
func (id ElementID) Short() string { return id.String()[:8] }

// MarshalText encodes the id in its canonical string form.
func (id ElementID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText parses a canonical UUID string.
func (id *ElementID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = ElementID(u)
	return nil
}
