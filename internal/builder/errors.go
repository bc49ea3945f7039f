package builder

import "errors"

var (
	ErrTooFewPoints      = errors.New("too few points")
	ErrComplexPolygon    = errors.New("polygon is not simple")
	ErrDegenerateRing    = errors.New("ring encloses no area")
	ErrDegenerateSegment = errors.New("zero length segment")
	ErrMalformedRelation = errors.New("malformed relation")
	ErrNotStyled         = errors.New("type not styled in tier")
)
