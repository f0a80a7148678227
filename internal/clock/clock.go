package clock

// OverflowPulseName is the reserved pulse appended to an outcome when
// the tick counter wraps. It cannot collide with user pulses in
// practice and always sorts after them within the outcome.
const OverflowPulseName = "__overflow__"

// Clock is the aggregate root of the kernel: it exclusively owns the
// tick and epoch counters, the ordered partition set, the ordered
// pulse set, and any attached subscriptions. All access goes through
// methods; none of the owned slices escape.
//
// Tick must be driven from a single goroutine (see the package doc).
type Clock struct {
	tick       uint64
	epoch      uint64
	partitions []partitionState
	order      PartitionOrder
	pulses     []PulseSpec
	subs       []*Subscription
}

// Default returns the conventional wall-clock-shaped configuration:
// sec(60), min(60), hour(24), least-significant-first, no pulses.
func Default() *Clock {
	c, err := NewBuilder().
		LeastSignificantFirst().
		AddPartition("sec", 60).
		AddPartition("min", 60).
		AddPartition("hour", 24).
		Build()
	if err != nil {
		panic("default clock configuration must be valid: " + err.Error())
	}
	return c
}

// TickCount returns the current tick counter without advancing.
func (c *Clock) TickCount() uint64 {
	return c.tick
}

// Epoch returns the current epoch. The epoch increments each time the
// tick counter wraps, so (epoch, tick) forms an extended timestamp.
func (c *Clock) Epoch() uint64 {
	return c.epoch
}

// Order returns the partition order selected at build time.
func (c *Clock) Order() PartitionOrder {
	return c.order
}

// Snapshot captures the current state without advancing time.
func (c *Clock) Snapshot() Snapshot {
	partitions := make([]PartitionValue, len(c.partitions))
	for i, p := range c.partitions {
		partitions[i] = PartitionValue{Name: p.name, Value: p.value, Modulus: p.modulus}
	}
	return Snapshot{Tick: c.tick, Epoch: c.epoch, Partitions: partitions}
}

// PulseNames returns the registered pulse names in registration order.
// The reserved overflow pulse is not included.
func (c *Clock) PulseNames() []string {
	names := make([]string, len(c.pulses))
	for i, p := range c.pulses {
		names[i] = p.Name
	}
	return names
}

// PartitionModuli returns each partition's modulus in partition order.
func (c *Clock) PartitionModuli() []uint64 {
	moduli := make([]uint64, len(c.partitions))
	for i, p := range c.partitions {
		moduli[i] = p.modulus
	}
	return moduli
}

// Tick advances logical time by one step and returns the outcome.
//
// Tick is total and infallible: every input it touches was validated
// at build time. The steps, in order: advance the tick counter with
// defined wraparound, bump the epoch on wrap, cascade the partitions,
// capture a snapshot, evaluate every pulse in registration order,
// append the reserved overflow pulse on wrap, publish to subscribers,
// return.
func (c *Clock) Tick() TickOutcome {
	c.tick++
	overflowed := c.tick == 0
	if overflowed {
		// Epoch wrap after 2^64 tick overflows is defined, not guarded:
		// uint64 arithmetic wraps naturally.
		c.epoch++
	}

	c.advancePartitions()

	snap := c.Snapshot()

	fired := make([]PulseFired, 0, len(c.pulses)+1)
	for _, pulse := range c.pulses {
		if Eval(pulse.Condition, c.tick, &snap) {
			fired = append(fired, PulseFired{Name: pulse.Name, Tick: c.tick, Epoch: c.epoch})
		}
	}
	if overflowed {
		fired = append(fired, PulseFired{Name: OverflowPulseName, Tick: c.tick, Epoch: c.epoch})
	}

	outcome := TickOutcome{Snapshot: snap, Pulses: fired, Overflowed: overflowed}

	c.publish(outcome)

	return outcome
}

// advancePartitions cascades a carry through the partitions starting
// at the least-significant end. The first partition that does not
// carry stops the cascade, so a typical step touches only the
// fastest-changing digit.
func (c *Clock) advancePartitions() {
	switch c.order {
	case MostSignificantFirst:
		for i := len(c.partitions) - 1; i >= 0; i-- {
			if !c.partitions[i].increment() {
				return
			}
		}
	default:
		for i := range c.partitions {
			if !c.partitions[i].increment() {
				return
			}
		}
	}
}

// publish delivers the outcome to every attached subscription.
// Publication is synchronous and O(subscriber count); closed
// subscriptions are dropped from the list.
func (c *Clock) publish(outcome TickOutcome) {
	if len(c.subs) == 0 {
		return
	}
	live := c.subs[:0]
	for _, sub := range c.subs {
		if sub.publish(outcome) {
			live = append(live, sub)
		}
	}
	for i := len(live); i < len(c.subs); i++ {
		c.subs[i] = nil
	}
	c.subs = live
}
