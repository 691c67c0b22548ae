package uart

import (
	"context"
	"time"
)

// Run clocks the serial domain on its own schedule, one reference cycle per
// period, until ctx is cancelled. observe, when non-nil, is called outside
// the core lock whenever TX or IRQ changes. Bus accesses from other
// goroutines may proceed concurrently.
func (c *Core) Run(ctx context.Context, period time.Duration, observe func(Signals)) error {
	if period <= 0 {
		period = time.Microsecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := Signals{TX: c.TX(), IRQ: c.IRQ()}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s := c.Tick()
			if observe != nil && (s.TX != last.TX || s.IRQ != last.IRQ) {
				observe(s)
			}
			last = s
		}
	}
}
