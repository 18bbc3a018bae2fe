package mailbox

import (
	"context"
	"sync"

	"github.com/leapstack-labs/retailsync/internal/enrich"
)

// Fake is an in-memory Service for tests. Deliveries are keyed by
// label; fetched labels and sent notifications are recorded. Safe for
// concurrent use, matching how the engine fans out over retailers.
type Fake struct {
	Deliveries map[string][]enrich.Source
	FetchErr   error

	// FetchDelay, when set, is invoked inside each fetch while the
	// in-flight counter is raised. Lets tests observe concurrency.
	FetchDelay func()

	Fetched []FetchOptions
	Sent    []Notification

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

var _ Service = (*Fake)(nil)

// FetchAttachments implements Service.
func (f *Fake) FetchAttachments(_ context.Context, opts FetchOptions) ([]enrich.Source, error) {
	f.mu.Lock()
	f.Fetched = append(f.Fetched, opts)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.FetchDelay
	f.mu.Unlock()

	if delay != nil {
		delay()
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return f.Deliveries[opts.Label], nil
}

// SendNotification implements Service.
func (f *Fake) SendNotification(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, n)
	return nil
}

// MaxInFlight reports the highest number of fetches observed running
// at once.
func (f *Fake) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}
