package clock

import "sync"

// deliveryPolicy names what happens when a subscription's buffer is
// full. The policy is an explicit construction-time choice, never an
// accident of the underlying primitive.
type deliveryPolicy int

const (
	// deliverUnbounded queues every outcome; the consumer must drain or
	// memory grows without bound.
	deliverUnbounded deliveryPolicy = iota

	// deliverDropOldest keeps a fixed-capacity ring and overwrites the
	// oldest queued outcome when full. Chosen over drop-newest because
	// the kernel's consumers want the most recent state to win.
	deliverDropOldest
)

// Subscription receives a copy of every TickOutcome as it is produced,
// decoupling who advances time from who reacts to it.
//
// Publication happens synchronously inside Tick on the driver
// goroutine; draining may happen on any other goroutine. The
// buffer is protected by a mutex and availability is signaled through
// a coalescing channel, so TryNext/Wait compose with select.
type Subscription struct {
	mu       sync.Mutex
	policy   deliveryPolicy
	outcomes []TickOutcome
	// Ring cursor, used only under deliverDropOldest once the buffer
	// reached capacity.
	start   int
	count   int
	dropped uint64
	closed  bool
	signal  chan struct{} // Signals outcome availability (buffered, size 1)
}

// Subscribe attaches an unbounded subscription: every outcome is
// queued until drained. Must be called from the driver goroutine
// (subscriptions share the clock's single-driver contract).
func (c *Clock) Subscribe() *Subscription {
	sub := &Subscription{
		policy:   deliverUnbounded,
		outcomes: make([]TickOutcome, 0, 64),
		signal:   make(chan struct{}, 1),
	}
	c.subs = append(c.subs, sub)
	return sub
}

// SubscribeBounded attaches a fixed-capacity subscription with a
// drop-oldest overflow policy: when the buffer is full, the oldest
// undrained outcome is silently replaced and Dropped is incremented.
// This is the only place in the kernel where data can be dropped.
//
// Capacity must be at least 1; smaller values are raised to 1.
func (c *Clock) SubscribeBounded(capacity int) *Subscription {
	if capacity < 1 {
		capacity = 1
	}
	sub := &Subscription{
		policy:   deliverDropOldest,
		outcomes: make([]TickOutcome, capacity),
		signal:   make(chan struct{}, 1),
	}
	c.subs = append(c.subs, sub)
	return sub
}

// publish appends one outcome. Returns false once the subscription is
// closed so the clock can drop it from its fan-out list.
func (s *Subscription) publish(outcome TickOutcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	switch s.policy {
	case deliverDropOldest:
		if s.count == len(s.outcomes) {
			// Full: overwrite the oldest slot and advance the cursor.
			s.outcomes[s.start] = outcome
			s.start = (s.start + 1) % len(s.outcomes)
			s.dropped++
		} else {
			s.outcomes[(s.start+s.count)%len(s.outcomes)] = outcome
			s.count++
		}
	default:
		s.outcomes = append(s.outcomes, outcome)
	}

	// Non-blocking signal - the buffer of 1 coalesces bursts.
	select {
	case s.signal <- struct{}{}:
	default:
	}

	return true
}

// TryNext removes and returns the oldest queued outcome without
// blocking. Returns false when the buffer is empty.
func (s *Subscription) TryNext() (TickOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.policy {
	case deliverDropOldest:
		if s.count == 0 {
			return TickOutcome{}, false
		}
		outcome := s.outcomes[s.start]
		s.outcomes[s.start] = TickOutcome{}
		s.start = (s.start + 1) % len(s.outcomes)
		s.count--
		return outcome, true

	default:
		if len(s.outcomes) == 0 {
			return TickOutcome{}, false
		}
		outcome := s.outcomes[0]
		// Nil out the slot so the outcome's slices can be collected
		// before the backing array is reallocated.
		s.outcomes[0] = TickOutcome{}
		if len(s.outcomes) == 1 {
			s.outcomes = s.outcomes[:0]
		} else {
			s.outcomes = s.outcomes[1:]
		}
		return outcome, true
	}
}

// Drain removes and returns everything currently queued, oldest first.
func (s *Subscription) Drain() []TickOutcome {
	var drained []TickOutcome
	for {
		outcome, ok := s.TryNext()
		if !ok {
			return drained
		}
		drained = append(drained, outcome)
	}
}

// Wait returns a channel that signals when outcomes may be available.
// Use with select for context-aware draining:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-sub.Wait():
//	    // TryNext until empty
//	}
func (s *Subscription) Wait() <-chan struct{} {
	return s.signal
}

// Len returns the number of queued outcomes.
func (s *Subscription) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.policy == deliverDropOldest {
		return s.count
	}
	return len(s.outcomes)
}

// Dropped returns how many outcomes the drop-oldest policy discarded.
// Always zero for unbounded subscriptions.
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close detaches the subscription. The clock drops it on the next
// publish; queued outcomes remain drainable.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
}
