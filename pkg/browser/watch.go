package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// RequestWatch captures the first outbound request whose URL satisfies a
// predicate. It resolves at most once and stops listening as soon as it
// does.
//
// The watch must be armed before the action that triggers the request;
// a request issued before Arm is never seen.
type RequestWatch struct {
	match func(url string) bool

	mu        sync.Mutex
	detach    func()
	armed     bool
	cancelled bool

	once sync.Once
	done chan struct{}
	url  string
}

// NewRequestWatch returns an unarmed watch for requests accepted by match.
func NewRequestWatch(match func(url string) bool) *RequestWatch {
	return &RequestWatch{
		match: match,
		done:  make(chan struct{}),
	}
}

// Arm starts observing requests on obs.
func (w *RequestWatch) Arm(obs RequestObserver) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.armed {
		return errors.New("request watch already armed")
	}
	if w.cancelled {
		return errors.New("request watch cancelled")
	}

	w.armed = true
	w.detach = obs.ObserveRequests(w.offer)
	return nil
}

func (w *RequestWatch) offer(url string) {
	w.mu.Lock()
	cancelled := w.cancelled
	w.mu.Unlock()

	if cancelled || !w.match(url) {
		return
	}

	w.once.Do(func() {
		w.url = url
		close(w.done)
		// Detaching from inside the event callback can deadlock some
		// emitters, so release on another goroutine.
		go w.release()
	})
}

// Cancel stops observing. An unresolved watch stays unresolved.
func (w *RequestWatch) Cancel() {
	w.mu.Lock()
	w.cancelled = true
	w.mu.Unlock()
	w.release()
}

func (w *RequestWatch) release() {
	w.mu.Lock()
	detach := w.detach
	w.detach = nil
	w.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Wait blocks until a request is captured, the policy's bound elapses or
// ctx is done.
func (w *RequestWatch) Wait(ctx context.Context, policy WaitPolicy) (string, error) {
	var timeout <-chan time.Time
	if !policy.Indefinite {
		timer := time.NewTimer(policy.Duration())
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-w.done:
		return w.url, nil
	case <-timeout:
		return "", fmt.Errorf("%w within %s", ErrNoRequest, policy)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
