package fetcher

import (
	"errors"
)

var (
	// ErrNetworkFailure covers DNS, connection reset and other transport
	// faults. Not retried in-run; the next scheduled run picks it up.
	ErrNetworkFailure = errors.New("network failure")

	// ErrTimeout is a navigation that exceeded the page timeout with no DOM at all
	ErrTimeout = errors.New("fetch timeout")

	// ErrBotBlocked is an anti-automation response from the source. Logged
	// distinctly, treated as a network failure for retry purposes.
	ErrBotBlocked = errors.New("blocked by anti-automation defenses")
)
