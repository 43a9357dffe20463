// internal/app/features/errors/logger.go
package errors

import (
	"errors"
	"fmt"
	"net/http"

	memberstore "github.com/phearom922/wall-of-fame/internal/app/store/members"
	pinstore "github.com/phearom922/wall-of-fame/internal/app/store/pins"
	"github.com/phearom922/wall-of-fame/internal/app/system/imagestore"
	"github.com/phearom922/wall-of-fame/internal/app/system/reorder"
	"github.com/phearom922/wall-of-fame/internal/app/system/reqbody"
	"github.com/phearom922/wall-of-fame/internal/app/system/respond"
	"go.uber.org/zap"
)

// InputError is a request the caller can fix. It is written as 400.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Invalid returns an *InputError with a formatted message.
func Invalid(format string, args ...interface{}) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// ErrorLogger writes failures as JSON and logs the ones that are not the
// caller's fault.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Respond maps err onto a status code and message:
//
//	400  *InputError, *reorder.ValidationError, *reqbody.FieldError,
//	     reqbody.ErrMalformed, reqbody.ErrTooLarge, imagestore.ErrUnsupportedType
//	404  store ErrNotFound
//	409  store duplicate errors
//	502  *imagestore.UploadError
//	500  anything else
//
// op names the operation in log lines.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		inputErr  *InputError
		reorderEr *reorder.ValidationError
		fieldErr  *reqbody.FieldError
		uploadErr *imagestore.UploadError
	)

	switch {
	case errors.As(err, &inputErr):
		respond.BadRequest(w, inputErr.Msg)
	case errors.As(err, &reorderEr):
		respond.BadRequest(w, reorderEr.Msg)
	case errors.As(err, &fieldErr):
		respond.BadRequest(w, fieldErr.Error())
	case errors.Is(err, reqbody.ErrTooLarge):
		respond.BadRequest(w, "Request is too large")
	case errors.Is(err, reqbody.ErrMalformed):
		respond.BadRequest(w, "Invalid request body")
	case errors.Is(err, imagestore.ErrUnsupportedType):
		respond.BadRequest(w, err.Error())
	case errors.Is(err, memberstore.ErrNotFound), errors.Is(err, pinstore.ErrNotFound):
		respond.NotFound(w, "Not found")
	case errors.Is(err, memberstore.ErrDuplicateMemberID):
		respond.Conflict(w, "Member ID already exists")
	case errors.Is(err, pinstore.ErrDuplicatePin):
		respond.Conflict(w, "Pin name already exists")
	case errors.As(err, &uploadErr):
		e.logger().Warn(op+": image upload failed", e.fields(r, err)...)
		respond.BadGateway(w, "Image upload failed")
	default:
		e.LogServerError(w, r, op, err)
	}
}

// LogServerError logs err and answers 500 without leaking its text.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.logger().Error(op, e.fields(r, err)...)
	respond.InternalError(w, "Internal server error")
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
}

func (e *ErrorLogger) logger() *zap.Logger {
	if e == nil || e.Log == nil {
		return zap.L()
	}
	return e.Log
}
