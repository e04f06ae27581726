package models

// CoverState is the position of the clothesline cover mechanism. There is no
// "moving" state: actuation blocks until the mechanism has reached position.
type CoverState int

const (
	// CoverOutside is the normal drying position. Initial state at boot.
	CoverOutside CoverState = iota
	// CoverCovered is the protected position, reached when rain is detected.
	CoverCovered
)

func (cs CoverState) String() string {
	switch cs {
	case CoverOutside:
		return "outside"
	case CoverCovered:
		return "covered"
	default:
		return "unknown"
	}
}

// ClothesStatus returns the wire label used by the remote logging endpoint.
// These exact strings are part of the endpoint's contract.
func (cs CoverState) ClothesStatus() string {
	if cs == CoverCovered {
		return "In Cover"
	}
	return "Drying"
}

// CoverStateFromClothesStatus maps a wire label back to a CoverState.
// Returns false for labels the endpoint contract does not define.
func CoverStateFromClothesStatus(s string) (CoverState, bool) {
	switch s {
	case "In Cover":
		return CoverCovered, true
	case "Drying":
		return CoverOutside, true
	default:
		return CoverOutside, false
	}
}
