package clock

// PartitionValue is one partition's captured state inside a Snapshot.
type PartitionValue struct {
	Name    string `json:"name"`
	Value   uint64 `json:"value"`
	Modulus uint64 `json:"modulus"`
}

// Snapshot is an immutable capture of the clock at one instant. It
// holds no live reference back into the clock: the partition slice is
// copied on capture.
type Snapshot struct {
	Tick       uint64           `json:"tick"`
	Epoch      uint64           `json:"epoch"`
	Partitions []PartitionValue `json:"partitions"`
}

// Partition looks up a captured partition by name.
func (s *Snapshot) Partition(name string) (PartitionValue, bool) {
	for _, p := range s.Partitions {
		if p.Name == name {
			return p, true
		}
	}
	return PartitionValue{}, false
}

// Get returns a partition value by name, or 0 when the name is absent.
func (s *Snapshot) Get(name string) uint64 {
	p, ok := s.Partition(name)
	if !ok {
		return 0
	}
	return p.Value
}

// PulseFired records that a named pulse fired at a given instant.
type PulseFired struct {
	Name  string `json:"name"`
	Tick  uint64 `json:"tick"`
	Epoch uint64 `json:"epoch"`
}

// TickOutcome is the result of one step: the snapshot after advancing,
// the pulses that fired (registration order, then the reserved
// overflow pulse), and whether the tick counter wrapped.
type TickOutcome struct {
	Snapshot   Snapshot     `json:"snapshot"`
	Pulses     []PulseFired `json:"pulses"`
	Overflowed bool         `json:"overflowed"`
}
