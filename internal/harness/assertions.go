package harness

import "fmt"

// Check evaluates every assertion against the result and returns one
// error per failed assertion. An empty slice means the scenario
// passed.
func (r *Result) Check() []error {
	var failures []error
	for i, a := range r.Scenario.Assertions {
		if err := r.check(&a); err != nil {
			failures = append(failures, fmt.Errorf("assertions[%d]: %w", i, err))
		}
	}
	return failures
}

func (r *Result) check(a *Assertion) error {
	switch a.Type {
	case AssertPulseAt:
		return r.checkPulseAt(a)
	case AssertPulseCount:
		return r.checkPulseCount(a)
	case AssertFinalSnapshot:
		return r.checkFinalSnapshot(a)
	default:
		// Unreachable for loaded scenarios: validateAssertion already
		// rejected unknown types.
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// checkPulseAt requires the pulse to have fired on exactly the given
// tick: present there, absent everywhere else.
func (r *Result) checkPulseAt(a *Assertion) error {
	var firedAt []uint64
	for _, event := range r.Trace {
		for _, name := range event.Pulses {
			if name == a.Pulse {
				firedAt = append(firedAt, event.Tick)
			}
		}
	}

	if len(firedAt) == 1 && firedAt[0] == a.Tick {
		return nil
	}
	if len(firedAt) == 0 {
		return fmt.Errorf("pulse %q never fired, expected at tick %d", a.Pulse, a.Tick)
	}
	return fmt.Errorf("pulse %q fired at ticks %v, expected only at tick %d", a.Pulse, firedAt, a.Tick)
}

func (r *Result) checkPulseCount(a *Assertion) error {
	var count uint64
	for _, event := range r.Trace {
		for _, name := range event.Pulses {
			if name == a.Pulse {
				count++
			}
		}
	}

	if count != a.Count {
		return fmt.Errorf("pulse %q fired %d times, expected %d", a.Pulse, count, a.Count)
	}
	return nil
}

func (r *Result) checkFinalSnapshot(a *Assertion) error {
	if a.FinalTick != nil && r.Final.Tick != *a.FinalTick {
		return fmt.Errorf("final tick = %d, expected %d", r.Final.Tick, *a.FinalTick)
	}

	for name, expected := range a.Partitions {
		p, ok := r.Final.Partition(name)
		if !ok {
			return fmt.Errorf("final snapshot has no partition %q", name)
		}
		if p.Value != expected {
			return fmt.Errorf("final %s = %d, expected %d", name, p.Value, expected)
		}
	}
	return nil
}
