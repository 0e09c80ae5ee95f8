package geo

import "errors"

// State is a step of the on-demand location lookup.
type State string

const (
	Idle     State = "idle"
	Loading  State = "loading"
	Resolved State = "resolved"
	Failed   State = "error"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("location unavailable")
	ErrTimeout             = errors.New("location request timed out")
)

// Browser GeolocationPositionError codes.
const (
	codePermissionDenied    = 1
	codePositionUnavailable = 2
	codeTimeout             = 3
)

// ErrorFromCode maps a browser geolocation error code to an error. Unknown
// codes are treated as an unavailable position.
func ErrorFromCode(code int) error {
	switch code {
	case codePermissionDenied:
		return ErrPermissionDenied
	case codeTimeout:
		return ErrTimeout
	default:
		return ErrPositionUnavailable
	}
}

// Code is the inverse of ErrorFromCode. It returns 0 for nil.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrPermissionDenied):
		return codePermissionDenied
	case errors.Is(err, ErrTimeout):
		return codeTimeout
	default:
		return codePositionUnavailable
	}
}

// Message is the inline text shown for a lookup failure.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Location access was denied. Allow location in your browser settings and try again."
	case errors.Is(err, ErrTimeout):
		return "Finding your location took too long. Try again."
	default:
		return "Your location is unavailable right now. Try again."
	}
}

// Status tracks one user's location lookup. The last resolved coordinate is
// kept across failures and toggles so that re-enabling is instant.
type Status struct {
	State State
	Coord *Coordinate
	Err   error
}

// Request starts a lookup. The browser prompt follows the rendered response.
func (s *Status) Request() {
	s.State = Loading
	s.Err = nil
}

// Resolve records a successful lookup.
func (s *Status) Resolve(c Coordinate) error {
	if !c.Valid() {
		s.Fail(ErrPositionUnavailable)
		return ErrPositionUnavailable
	}
	s.State = Resolved
	s.Coord = &c
	s.Err = nil
	return nil
}

// Fail records a failed lookup. A previous coordinate is retained but not
// used until a lookup resolves again.
func (s *Status) Fail(err error) {
	s.State = Failed
	s.Err = err
}

// Origin returns the coordinate the search should be centered on, or nil
// when location filtering is off or no lookup has resolved.
func (s Status) Origin(enabled bool) *Coordinate {
	if !enabled || s.State != Resolved || s.Coord == nil {
		return nil
	}
	c := *s.Coord
	return &c
}
