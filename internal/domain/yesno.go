package domain

// YesNo models a paper-form yes/no question as two independent booleans
// rather than a single bool, because both, neither, or exactly one may be
// marked on the physical form — validation (F-series) is what enforces
// that exactly one ends up true. AsBool collapses it once that invariant
// holds; it returns (value, true) only when exactly one field is set.
type YesNo struct {
	Yes bool `json:"yes"`
	No  bool `json:"no"`
}

// YesNoYes is the affirmative answer.
func YesNoYes() YesNo { return YesNo{Yes: true} }

// YesNoNo is the negative answer.
func YesNoNo() YesNo { return YesNo{No: true} }

// AsBool returns the collapsed boolean value and true when exactly one of
// Yes/No is set; it returns (false, false) when the form is blank or
// contradictory (both set).
func (y YesNo) AsBool() (value bool, ok bool) {
	switch {
	case y.Yes && !y.No:
		return true, true
	case y.No && !y.Yes:
		return false, true
	default:
		return false, false
	}
}

// IsAnswered reports whether exactly one of Yes/No is set.
func (y YesNo) IsAnswered() bool {
	_, ok := y.AsBool()
	return ok
}

// IsInvalid reports whether both Yes and No are set, the contradictory
// form that no single physical checkbox pair can represent validly.
func (y YesNo) IsInvalid() bool {
	return y.Yes && y.No
}
