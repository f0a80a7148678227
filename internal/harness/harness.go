package harness

import (
	"fmt"

	"github.com/roach88/beeclock/internal/clock"
)

// TraceEvent records one tick on which at least one pulse fired.
// Silent ticks are not recorded, keeping long-run traces proportional
// to activity rather than duration.
type TraceEvent struct {
	Seq    uint64
	Tick   uint64
	Epoch  uint64
	Pulses []string
}

// Result is the outcome of running a scenario.
type Result struct {
	Scenario *Scenario
	Trace    []TraceEvent
	Final    clock.Snapshot
}

// BuildClock constructs a clock from a scenario's configuration. Order
// strings, condition literals, and the kernel's build validation all
// surface here, before the first tick.
func BuildClock(cfg *ClockConfig) (*clock.Clock, error) {
	b := clock.NewBuilder()

	if cfg.Order != "" {
		order, err := clock.ParseOrder(cfg.Order)
		if err != nil {
			return nil, fmt.Errorf("clock.order: %w", err)
		}
		b.Order(order)
	}

	for _, p := range cfg.Partitions {
		b.AddPartition(p.Name, p.Modulus)
	}

	for _, p := range cfg.Pulses {
		if p.Every != 0 {
			b.PulseEvery(p.Name, p.Every)
			continue
		}
		cond, err := clock.ConditionFromValue(p.Condition)
		if err != nil {
			return nil, fmt.Errorf("pulse %q: %w", p.Name, err)
		}
		b.PulseWhen(p.Name, cond)
	}

	if cfg.StartTick != 0 {
		b.StartTick(cfg.StartTick)
	}

	return b.Build()
}

// Run builds the scenario's clock, drives it the requested number of
// ticks, and returns the trace and final snapshot. Assertion checking
// is separate (Result.Check) so callers can inspect a failing trace.
func Run(scenario *Scenario) (*Result, error) {
	c, err := BuildClock(&scenario.Clock)
	if err != nil {
		return nil, err
	}

	result := &Result{Scenario: scenario}
	for i := uint64(0); i < scenario.Ticks; i++ {
		outcome := c.Tick()
		if len(outcome.Pulses) == 0 {
			continue
		}
		names := make([]string, len(outcome.Pulses))
		for j, p := range outcome.Pulses {
			names[j] = p.Name
		}
		result.Trace = append(result.Trace, TraceEvent{
			Seq:    i + 1,
			Tick:   outcome.Snapshot.Tick,
			Epoch:  outcome.Snapshot.Epoch,
			Pulses: names,
		})
	}
	result.Final = c.Snapshot()

	return result, nil
}
