package clock

import (
	"golang.org/x/text/unicode/norm"
)

// PulseSpec pairs a unique pulse name with its firing condition.
type PulseSpec struct {
	Name      string
	Condition Condition
}

// Builder accumulates clock configuration. All error checking is
// deferred to Build so the fluent calls never fail; Build surfaces the
// first violation as a *BuildError.
//
// Partition and pulse names are NFC-normalized at registration so that
// differently-composed Unicode spellings of the same name bind to the
// same partition.
type Builder struct {
	partitions []PartitionSpec
	pulses     []PulseSpec
	order      PartitionOrder
	startTick  uint64
}

// NewBuilder starts an empty builder with no partitions or pulses.
func NewBuilder() *Builder {
	return &Builder{}
}

// Order selects the partition cascade order explicitly.
func (b *Builder) Order(order PartitionOrder) *Builder {
	b.order = order
	return b
}

// LeastSignificantFirst selects least-significant-first cascade order.
func (b *Builder) LeastSignificantFirst() *Builder {
	return b.Order(LeastSignificantFirst)
}

// MostSignificantFirst selects most-significant-first cascade order.
func (b *Builder) MostSignificantFirst() *Builder {
	return b.Order(MostSignificantFirst)
}

// AddPartition registers one partition with the given modulus.
// Registration order is significance order under the selected
// PartitionOrder.
func (b *Builder) AddPartition(name string, modulus uint64) *Builder {
	b.partitions = append(b.partitions, PartitionSpec{
		Name:    norm.NFC.String(name),
		Modulus: modulus,
	})
	return b
}

// PulseEvery registers a periodic pulse firing every period ticks.
func (b *Builder) PulseEvery(name string, period uint64) *Builder {
	return b.PulseWhen(name, Every{Period: period})
}

// PulseWhen registers a pulse with an arbitrary condition.
func (b *Builder) PulseWhen(name string, condition Condition) *Builder {
	b.pulses = append(b.pulses, PulseSpec{
		Name:      norm.NFC.String(name),
		Condition: normalizeCondition(condition),
	})
	return b
}

// StartTick seeds the tick counter, so a rebuilt clock can resume a
// logical timestamp instead of restarting from zero. Partitions always
// start at zero regardless; the tick counter and the partition digits
// are independent counters.
func (b *Builder) StartTick(tick uint64) *Builder {
	b.startTick = tick
	return b
}

// Build validates the accumulated configuration and freezes it into a
// Clock. Checks run in a fixed order and abort on the first violation:
//
//  1. duplicate partition names
//  2. zero partition moduli
//  3. missing order selection (only when partitions exist)
//  4. recursive condition validation per pulse, in registration order
//  5. duplicate pulse names
//
// On success the clock's shape never changes again and Tick is
// infallible.
func (b *Builder) Build() (*Clock, error) {
	known := make(map[string]struct{}, len(b.partitions))
	for _, spec := range b.partitions {
		if _, dup := known[spec.Name]; dup {
			return nil, newDuplicatePartitionError(spec.Name)
		}
		known[spec.Name] = struct{}{}
	}

	for _, spec := range b.partitions {
		if spec.Modulus == 0 {
			return nil, newZeroModulusError(spec.Name)
		}
	}

	order := b.order
	if order == OrderUnset {
		if len(b.partitions) > 0 {
			return nil, newMissingOrderError()
		}
		// Degenerate clock with no partitions: the order is irrelevant,
		// default it so callers need not pick one.
		order = LeastSignificantFirst
	}

	for _, pulse := range b.pulses {
		if err := validateCondition(pulse.Condition, known, pulse.Name); err != nil {
			return nil, err
		}
	}

	pulseNames := make(map[string]struct{}, len(b.pulses))
	for _, pulse := range b.pulses {
		if _, dup := pulseNames[pulse.Name]; dup {
			return nil, newDuplicatePulseError(pulse.Name)
		}
		pulseNames[pulse.Name] = struct{}{}
	}

	partitions := make([]partitionState, len(b.partitions))
	for i, spec := range b.partitions {
		partitions[i] = partitionState{name: spec.Name, modulus: spec.Modulus}
	}

	pulses := make([]PulseSpec, len(b.pulses))
	copy(pulses, b.pulses)

	return &Clock{
		tick:       b.startTick,
		partitions: partitions,
		order:      order,
		pulses:     pulses,
	}, nil
}

// validateCondition recursively checks one condition tree. Every
// referenced partition must exist, every divisor must be nonzero, and
// every range must be well-formed; Not/And/Or recurse into children.
func validateCondition(c Condition, known map[string]struct{}, pulse string) error {
	switch cond := c.(type) {
	case Every:
		if cond.Period == 0 {
			return newZeroPeriodError(pulse)
		}
		return nil

	case PartitionEquals:
		if _, ok := known[cond.Name]; !ok {
			return newUnknownPartitionError(pulse, cond.Name)
		}
		return nil

	case PartitionModulo:
		if cond.Modulus == 0 {
			return newZeroConditionModulusError(pulse, cond.Name)
		}
		if _, ok := known[cond.Name]; !ok {
			return newUnknownPartitionError(pulse, cond.Name)
		}
		return nil

	case TickRange:
		if cond.Start > cond.End {
			return newInvalidTickRangeError(pulse, cond.Start, cond.End)
		}
		return nil

	case Not:
		return validateCondition(cond.Condition, known, pulse)

	case And:
		for _, child := range cond.Conditions {
			if err := validateCondition(child, known, pulse); err != nil {
				return err
			}
		}
		return nil

	case Or:
		for _, child := range cond.Conditions {
			if err := validateCondition(child, known, pulse); err != nil {
				return err
			}
		}
		return nil

	default:
		// Unreachable: the grammar is sealed.
		return nil
	}
}

// normalizeCondition returns a copy of the tree with every partition
// reference NFC-normalized, so references compare bytewise against
// normalized partition names.
func normalizeCondition(c Condition) Condition {
	switch cond := c.(type) {
	case PartitionEquals:
		cond.Name = norm.NFC.String(cond.Name)
		return cond
	case PartitionModulo:
		cond.Name = norm.NFC.String(cond.Name)
		return cond
	case Not:
		cond.Condition = normalizeCondition(cond.Condition)
		return cond
	case And:
		children := make([]Condition, len(cond.Conditions))
		for i, child := range cond.Conditions {
			children[i] = normalizeCondition(child)
		}
		return And{Conditions: children}
	case Or:
		children := make([]Condition, len(cond.Conditions))
		for i, child := range cond.Conditions {
			children[i] = normalizeCondition(child)
		}
		return Or{Conditions: children}
	default:
		return c
	}
}
