package domain

import "fmt"

// TypeOfSession is the category of a session. Stored as its string value.
type TypeOfSession string

const (
	TypeOfSessionNotSpecified TypeOfSession = "NOT_SPECIFIED"
	TypeOfSessionWorkshop     TypeOfSession = "WORKSHOP"
	TypeOfSessionLecture      TypeOfSession = "LECTURE"
	TypeOfSessionKeynote      TypeOfSession = "KEYNOTE"
	TypeOfSessionForum        TypeOfSession = "FORUM"
	TypeOfSessionDemo         TypeOfSession = "DEMO"
	TypeOfSessionPanel        TypeOfSession = "PANEL"
)

var typesOfSession = []TypeOfSession{
	TypeOfSessionNotSpecified,
	TypeOfSessionWorkshop,
	TypeOfSessionLecture,
	TypeOfSessionKeynote,
	TypeOfSessionForum,
	TypeOfSessionDemo,
	TypeOfSessionPanel,
}

// TypesOfSession returns every TypeOfSession in declaration order.
func TypesOfSession() []TypeOfSession {
	out := make([]TypeOfSession, len(typesOfSession))
	copy(out, typesOfSession)
	return out
}

// ParseTypeOfSession decodes a stored or submitted value. Empty means NOT_SPECIFIED.
func ParseTypeOfSession(s string) (TypeOfSession, error) {
	if s == "" {
		return TypeOfSessionNotSpecified, nil
	}
	for _, t := range typesOfSession {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown typeOfSession %q", ErrInvalidInput, s)
}

// TeeShirtSize is a profile's shirt size. Stored as its string value.
type TeeShirtSize string

const (
	TeeShirtSizeNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtSizeXSM          TeeShirtSize = "XS_M"
	TeeShirtSizeXSW          TeeShirtSize = "XS_W"
	TeeShirtSizeSM           TeeShirtSize = "S_M"
	TeeShirtSizeSW           TeeShirtSize = "S_W"
	TeeShirtSizeMM           TeeShirtSize = "M_M"
	TeeShirtSizeMW           TeeShirtSize = "M_W"
	TeeShirtSizeLM           TeeShirtSize = "L_M"
	TeeShirtSizeLW           TeeShirtSize = "L_W"
	TeeShirtSizeXLM          TeeShirtSize = "XL_M"
	TeeShirtSizeXLW          TeeShirtSize = "XL_W"
	TeeShirtSizeXXLM         TeeShirtSize = "XXL_M"
	TeeShirtSizeXXLW         TeeShirtSize = "XXL_W"
	TeeShirtSizeXXXLM        TeeShirtSize = "XXXL_M"
	TeeShirtSizeXXXLW        TeeShirtSize = "XXXL_W"
)

var teeShirtSizes = []TeeShirtSize{
	TeeShirtSizeNotSpecified,
	TeeShirtSizeXSM, TeeShirtSizeXSW,
	TeeShirtSizeSM, TeeShirtSizeSW,
	TeeShirtSizeMM, TeeShirtSizeMW,
	TeeShirtSizeLM, TeeShirtSizeLW,
	TeeShirtSizeXLM, TeeShirtSizeXLW,
	TeeShirtSizeXXLM, TeeShirtSizeXXLW,
	TeeShirtSizeXXXLM, TeeShirtSizeXXXLW,
}

// ParseTeeShirtSize decodes a stored or submitted value. Empty means NOT_SPECIFIED.
func ParseTeeShirtSize(s string) (TeeShirtSize, error) {
	if s == "" {
		return TeeShirtSizeNotSpecified, nil
	}
	for _, size := range teeShirtSizes {
		if string(size) == s {
			return size, nil
		}
	}
	return "", fmt.Errorf("%w: unknown teeShirtSize %q", ErrInvalidInput, s)
}
