package util

import "errors"

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAssignmentPublished  = errors.New("assignment already published")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrMediaNotFound        = errors.New("media not found")
	ErrMediaAlreadyAttached = errors.New("media attached to another question")
	ErrInvalidMedia         = errors.New("invalid media file")
)

// FieldError 表示某个请求字段的错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation failed"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AsValidationError 尝试将 err 解包为 *ValidationError
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
