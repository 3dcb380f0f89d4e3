package browser

import (
	"context"
	"fmt"
	"time"
)

// Scroller is the part of Driver ScrollUntilStable needs.
type Scroller interface {
	ScrollToBottom() (int, error)
}

// ScrollUntilStable keeps scrolling to the bottom of the page until the
// document height stops growing, so lazily loaded content is rendered.
//
// Every Interval it scrolls and reads the height. It returns once
// StablePolls consecutive reads equal the read before them. The first read
// is compared against zero. It returns the number of polls taken.
func ScrollUntilStable(ctx context.Context, s Scroller, opts ScrollOptions) (int, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultScrollInterval
	}
	if opts.StablePolls <= 0 {
		opts.StablePolls = DefaultScrollStablePolls
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultScrollMaxDuration
	}

	deadline := time.NewTimer(opts.MaxDuration)
	defer deadline.Stop()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	previous, stable, polls := 0, 0, 0
	for {
		select {
		case <-ctx.Done():
			return polls, ctx.Err()
		case <-deadline.C:
			return polls, fmt.Errorf("%w after %d polls in %s", ErrScrollTimeout, polls, opts.MaxDuration)
		case <-ticker.C:
		}

		height, err := s.ScrollToBottom()
		if err != nil {
			return polls, err
		}
		polls++

		if height == previous {
			stable++
			if stable >= opts.StablePolls {
				return polls, nil
			}
		} else {
			stable = 0
		}
		previous = height
	}
}
