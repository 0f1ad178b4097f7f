package feed

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrUpstream     = errors.New("upstream failure")
)

// Category is the user-actionable class of a feed failure
type Category string

const (
	CategoryAuth      Category = "auth"
	CategoryRateLimit Category = "rate_limit"
	CategoryUpstream  Category = "upstream"
)

// Feed names
const (
	NameSportsbook = "sportsbook"
	NamePolymarket = "polymarket"
)

// Error is a feed-level failure. It unwraps to one of the sentinel errors.
type Error struct {
	Feed       string
	Category   Category
	StatusCode int // Zero for transport failures
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s feed: HTTP %d: %v", e.Feed, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s feed: %v", e.Feed, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns a short message the presentation layer can show as-is
func (e *Error) Message() string {
	switch e.Category {
	case CategoryAuth:
		return "Invalid Odds API key. Check the configured api_key."
	case CategoryRateLimit:
		return "Odds API rate limit reached. Try again later."
	default:
		if e.StatusCode != 0 {
			return fmt.Sprintf("%s feed returned HTTP %d.", e.Feed, e.StatusCode)
		}
		return fmt.Sprintf("%s feed unavailable.", e.Feed)
	}
}

// HTTPStatus maps the failure category to the status returned to clients
func (e *Error) HTTPStatus() int {
	switch e.Category {
	case CategoryAuth:
		return http.StatusUnauthorized
	case CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// CategoryOf returns the failure category of err
func CategoryOf(err error) Category {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return CategoryAuth
	case errors.Is(err, ErrRateLimited):
		return CategoryRateLimit
	default:
		return CategoryUpstream
	}
}

// MessageOf returns the presentation message for err
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message()
	}
	return "feed unavailable."
}

// StatusOf returns the HTTP status a client should see for err
func StatusOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.HTTPStatus()
	}
	return http.StatusBadGateway
}

// checkHTTPStatus converts a non-2xx response into a categorized feed error
func checkHTTPStatus(feedName string, statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := strings.TrimSpace(string(body))
	if len(bodyStr) > 256 {
		bodyStr = bodyStr[:256]
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Feed: feedName, Category: CategoryAuth, StatusCode: statusCode, Err: fmt.Errorf("%w: %s", ErrUnauthorized, bodyStr)}
	case http.StatusTooManyRequests:
		return &Error{Feed: feedName, Category: CategoryRateLimit, StatusCode: statusCode, Err: fmt.Errorf("%w: %s", ErrRateLimited, bodyStr)}
	default:
		return &Error{Feed: feedName, Category: CategoryUpstream, StatusCode: statusCode, Err: fmt.Errorf("%w: %s", ErrUpstream, bodyStr)}
	}
}

// FailureOf describes err in the form carried by snapshots and the feed cache
func FailureOf(err error) *models.FeedFailure {
	f := &models.FeedFailure{
		Category: string(CategoryOf(err)),
		Message:  MessageOf(err),
	}
	var fe *Error
	if errors.As(err, &fe) {
		f.StatusCode = fe.StatusCode
	}
	return f
}

// FromFailure rebuilds the feed error of a cached failure
func FromFailure(feedName string, f *models.FeedFailure) *Error {
	e := &Error{Feed: feedName, Category: Category(f.Category), StatusCode: f.StatusCode}
	switch e.Category {
	case CategoryAuth:
		e.Err = ErrUnauthorized
	case CategoryRateLimit:
		e.Err = ErrRateLimited
	default:
		e.Category = CategoryUpstream
		e.Err = ErrUpstream
	}
	return e
}

// transportError wraps a network or decode failure.
// The request URL carries the API key, so *url.Error is reduced to its cause.
func transportError(feedName string, err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return &Error{Feed: feedName, Category: CategoryUpstream, Err: fmt.Errorf("%w: %w", ErrUpstream, err)}
}
