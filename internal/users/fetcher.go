package users

import (
	"time"

	"github.com/samplecodes/testkata/internal/apperr"
	"github.com/samplecodes/testkata/internal/config"
)

// InvalidUserID is the identifier the simulated remote never finds.
const InvalidUserID = "invalid"

// Defaults used when FetchConfig leaves a field empty.
const (
	DefaultDelay           = 100 * time.Millisecond
	DefaultPlaceholderName = "Test User"
)

// Fetch errors.
var (
	ErrMissingUserID = apperr.New(apperr.KindMissingParameter, "user ID is required")
	ErrUserNotFound  = apperr.New(apperr.KindNotFound, "user not found")
)

// Result is the outcome of a single fetch: exactly one of User or Err is set.
type Result struct {
	User *User
	Err  error
}

// Fetcher simulates a remote user lookup with one fixed round-trip delay.
type Fetcher struct {
	delay       time.Duration
	placeholder string
}

// NewFetcher creates a Fetcher from configuration.
// A zero delay resolves without waiting; an empty placeholder uses DefaultPlaceholderName.
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	f := &Fetcher{
		delay:       cfg.Delay,
		placeholder: cfg.PlaceholderName,
	}
	if f.delay < 0 {
		f.delay = DefaultDelay
	}
	if f.placeholder == "" {
		f.placeholder = DefaultPlaceholderName
	}
	return f
}

// NewDefaultFetcher creates a Fetcher with the default delay and placeholder.
func NewDefaultFetcher() *Fetcher {
	return NewFetcher(config.FetchConfig{Delay: DefaultDelay})
}

// Delay returns the simulated round-trip time.
func (f *Fetcher) Delay() time.Duration {
	return f.delay
}

// FetchAsync starts a lookup and returns a channel that receives exactly one
// Result and is then closed. An empty userID fails at once, before any delay.
// The lookup cannot be cancelled; callers needing a timeout select on the
// channel against their own deadline. The channel is buffered, so an
// abandoned lookup still completes without blocking.
func (f *Fetcher) FetchAsync(userID string) <-chan Result {
	ch := make(chan Result, 1)

	if userID == "" {
		ch <- Result{Err: ErrMissingUserID}
		close(ch)
		return ch
	}

	time.AfterFunc(f.delay, func() {
		ch <- f.resolve(userID)
		close(ch)
	})

	return ch
}

// Fetch runs a lookup and waits for its result.
func (f *Fetcher) Fetch(userID string) (*User, error) {
	res := <-f.FetchAsync(userID)
	return res.User, res.Err
}

func (f *Fetcher) resolve(userID string) Result {
	if userID == InvalidUserID {
		return Result{Err: ErrUserNotFound}
	}
	return Result{User: &User{ID: userID, Name: f.placeholder}}
}
