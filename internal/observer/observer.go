// Package observer turns the host's stream of block mutations into debounced
// change notifications.
package observer

import (
	"sync"
	"time"

	"github.com/bethropolis/blockundo/internal/event"
	"github.com/bethropolis/blockundo/internal/logger"
)

// Subscriber is the part of the host event bus the observer needs.
type Subscriber interface {
	SubscribeEvent(eventType event.Type, handler event.Handler) event.SubscriptionID
	UnsubscribeEvent(id event.SubscriptionID)
}

// Observer watches a host for block mutations and calls onChange once per
// burst.
type Observer struct {
	sub       Subscriber
	debouncer *Debouncer

	mu     sync.Mutex
	subID  event.SubscriptionID
	active bool
}

// New creates an observer. It does nothing until Start is called.
func New(sub Subscriber, window time.Duration, onChange func()) *Observer {
	return &Observer{
		sub:       sub,
		debouncer: NewDebouncer(window, onChange),
	}
}

// Start subscribes to the host. Calling it twice is a no-op.
func (o *Observer) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active {
		return
	}
	o.subID = o.sub.SubscribeEvent(event.TypeBlocksMutated, o.handle)
	o.active = true
	logger.DebugTagf("observer", "Observer: started (window %v)", o.debouncer.window)
}

func (o *Observer) handle(ev event.Event) bool {
	if data, ok := ev.Data.(event.BlocksMutatedData); ok {
		logger.DebugTagf("observer", "Observer: %s at %d", data.Op, data.Index)
	}
	o.debouncer.Trigger()
	return false
}

// Flush delivers a pending notification right away.
func (o *Observer) Flush() bool { return o.debouncer.Flush() }

// Close unsubscribes and drops any pending notification.
func (o *Observer) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active {
		o.sub.UnsubscribeEvent(o.subID)
		o.active = false
	}
	o.debouncer.Stop()
	logger.DebugTagf("observer", "Observer: closed")
}
