package journal

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// CodeError carries a machine readable code. Its message is the code itself
// so it survives transports that only keep the error string.
type CodeError struct {
	Code string
}

func (e *CodeError) Error() string { return e.Code }

const (
	CodeInstrumentInUse = "INSTRUMENT_IN_USE"
	CodeAccountInUse    = "ACCOUNT_IN_USE"
)

var (
	ErrInstrumentInUse = &CodeError{Code: CodeInstrumentInUse}
	ErrAccountInUse    = &CodeError{Code: CodeAccountInUse}
)

// ErrorCode returns the code of a CodeError anywhere in err's chain, or "".
func ErrorCode(err error) string {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
