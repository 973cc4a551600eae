package api

import (
	"errors"
	"net/http"

	service "github.com/okian/mentorlink/internal/app"
	"github.com/okian/mentorlink/internal/adapters/auth"
	"github.com/okian/mentorlink/internal/domain/mentorship"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBackpressure = errors.New("backpressure")
	ErrRateLimited  = errors.New("rate limited")
)

// opError tags an error with the operation that produced it and, optionally,
// a sentinel kind used for status mapping.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.err != nil:
		return e.op + ": " + e.err.Error()
	case e.kind != nil:
		return e.op + ": " + e.kind.Error()
	default:
		return e.op
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// Wrap tags err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// NewKind returns an error of kind for op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// statusFor maps an error onto an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrReceiverUnverified):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, mentorship.ErrMentorshipNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrProfileExists),
		errors.Is(err, service.ErrDuplicateFeedback),
		errors.Is(err, mentorship.ErrAlreadyActive):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrBackpressure),
		errors.Is(err, ErrRateLimited),
		errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrSelfFeedback),
		errors.Is(err, mentorship.ErrInvalidRequest),
		errors.Is(err, mentorship.ErrSelfMentorship),
		errors.Is(err, mentorship.ErrInsufficientCoins),
		errors.Is(err, mentorship.ErrMentorFull):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal_error"
}
