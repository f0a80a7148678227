package clock

import (
	"fmt"
	"strings"
)

// PartitionOrder selects the cascade direction over the partition
// slice. It is a storage convention chosen once at build time; callers
// always address partitions by name, never by position.
type PartitionOrder int

const (
	// OrderUnset is the zero value; Build rejects it when at least one
	// partition is registered.
	OrderUnset PartitionOrder = iota

	// LeastSignificantFirst stores the fastest-changing partition at
	// position 0 (sec, min, hour).
	LeastSignificantFirst

	// MostSignificantFirst stores the fastest-changing partition at the
	// last position (hour, min, sec).
	MostSignificantFirst
)

// String implements fmt.Stringer.
func (o PartitionOrder) String() string {
	switch o {
	case LeastSignificantFirst:
		return "least_significant_first"
	case MostSignificantFirst:
		return "most_significant_first"
	default:
		return "unset"
	}
}

// ParseOrder resolves a partition order from its accepted synonyms.
//
// Valid values: "lsf", "least", "least_significant_first",
// "msf", "most", "most_significant_first". Matching is
// case-insensitive.
func ParseOrder(s string) (PartitionOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lsf", "least", "least_significant_first":
		return LeastSignificantFirst, nil
	case "msf", "most", "most_significant_first":
		return MostSignificantFirst, nil
	default:
		return OrderUnset, fmt.Errorf("unknown partition order %q: must be 'lsf' or 'msf' (least/most_significant_first)", s)
	}
}

// PartitionSpec declares one mixed-radix digit: a unique name and a
// fixed modulus. The modulus must be greater than zero; Build enforces
// this.
type PartitionSpec struct {
	Name    string
	Modulus uint64
}

// partitionState is the live counter for one partition. The value is
// mutated only by increment, so 0 <= value < modulus always holds.
type partitionState struct {
	name    string
	value   uint64
	modulus uint64
}

// increment advances the partition by one, returning true when the
// value wrapped to zero (carry into the next partition).
func (p *partitionState) increment() bool {
	p.value++
	if p.value >= p.modulus {
		p.value = 0
		return true
	}
	return false
}
