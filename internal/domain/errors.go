package domain

// DataError reports that a polling station's input is structurally
// malformed beyond what field-level validation addresses: a wrong number
// of lists, non-consecutive list or candidate numbers, or a count field
// out of representable range. It is fatal to the operation that returns
// it — the caller must not retry with the same input unchanged.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string { return e.Msg }

// NewDataError builds a DataError with the given message.
func NewDataError(msg string) *DataError { return &DataError{Msg: msg} }
