package ao3

import (
	"errors"
	"fmt"
)

// ErrServiceUnreachable signals that AO3 itself could not be contacted. This
// is checked once before a scrape run and aborts it wholesale.
var ErrServiceUnreachable = errors.New("could not reach AO3 servers")

type FetchErrorKind string

const (
	FetchErrorStatus  FetchErrorKind = "status"
	FetchErrorTimeout FetchErrorKind = "timeout"
	FetchErrorParse   FetchErrorKind = "parse"
	FetchErrorNetwork FetchErrorKind = "network"
)

// FetchError describes a failed fetch of a single work. It is isolated to
// that work's outcome and never aborts a run.
type FetchError struct {
	Kind       FetchErrorKind
	WorkID     int64
	StatusCode int
	Detail     string
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchErrorStatus:
		return fmt.Sprintf("%d ERROR WHEN FETCHING INFORMATION", e.StatusCode)
	case FetchErrorTimeout:
		return fmt.Sprintf("fetch timed out: %s", e.Detail)
	case FetchErrorParse:
		return fmt.Sprintf("could not parse work page: %s", e.Detail)
	default:
		return e.Detail
	}
}
