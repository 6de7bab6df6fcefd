package squish

import "errors"

// ErrorCode identifies a codec API failure class.
type ErrorCode uint32

const (
	// Success reports no error.
	Success ErrorCode = 0

	// ErrBadParam reports an invalid argument (nil buffer, bad length).
	ErrBadParam ErrorCode = 1

	// ErrBadFormat reports an unknown or unsupported block format.
	ErrBadFormat ErrorCode = 2

	// ErrBadFlags reports an invalid flag combination.
	ErrBadFlags ErrorCode = 3

	// ErrBadBlock reports a malformed compressed block (reserved mode bits).
	ErrBadBlock ErrorCode = 4

	// ErrBadContainer reports a malformed DDS container.
	ErrBadContainer ErrorCode = 5
)

// ErrorString returns a stable name for an error code, or "" for unknown codes.
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "SQUISH_SUCCESS"
	case ErrBadParam:
		return "SQUISH_ERR_BAD_PARAM"
	case ErrBadFormat:
		return "SQUISH_ERR_BAD_FORMAT"
	case ErrBadFlags:
		return "SQUISH_ERR_BAD_FLAGS"
	case ErrBadBlock:
		return "SQUISH_ERR_BAD_BLOCK"
	case ErrBadContainer:
		return "SQUISH_ERR_BAD_CONTAINER"
	default:
		return ""
	}
}

// Error is a typed error carrying a codec error code.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "squish: " + s
	}
	return "squish: error"
}

// ErrorCodeOf returns the error code for err, or Success for nil.
//
// For non-*Error errors it returns ErrBadParam as a conservative fallback.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
