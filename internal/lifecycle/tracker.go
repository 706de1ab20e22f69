package lifecycle

import (
	"sync"
	"time"

	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

// Tracker records whether a frontend session is currently attached and, when
// none is, how long the service has been unobserved. The inbound flow consults
// it to decide whether a user-facing alert is warranted. All methods are safe
// for concurrent use.
type Tracker struct {
	mu            sync.Mutex
	foreground    bool
	backgroundAt  time.Time
	sawBackground bool
}

// NewTracker starts in the background state: until a session attaches, every
// inbound message counts as unobserved.
func NewTracker() *Tracker {
	return &Tracker{
		backgroundAt: utils.Now(),
	}
}

// OnForeground marks a frontend session as attached.
func (t *Tracker) OnForeground() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.foreground = true
}

// OnBackground marks the last frontend session as detached and starts the
// unobserved clock.
func (t *Tracker) OnBackground() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.foreground = false
	t.backgroundAt = utils.Now()
	t.sawBackground = true
}

// InForeground reports whether a session is currently attached.
func (t *Tracker) InForeground() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foreground
}

// WasInBackground reports whether the service dropped to background since the
// last call, and resets the flag.
func (t *Tracker) WasInBackground() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := t.sawBackground
	t.sawBackground = false
	return was
}

// BackgroundElapsed returns how long the service has been unobserved, or zero
// when a session is attached.
func (t *Tracker) BackgroundElapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.foreground {
		return 0
	}
	return utils.Now().Sub(t.backgroundAt)
}
