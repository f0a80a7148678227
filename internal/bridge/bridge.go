package bridge

import (
	"strconv"

	"github.com/roach88/beeclock/internal/clock"
)

// PartitionView is one partition inside a SnapshotView.
type PartitionView struct {
	Name     string `json:"name"`
	Value    uint64 `json:"value"`
	ValueStr string `json:"value_str"`
	Modulus  uint64 `json:"modulus"`
}

// SnapshotView is the rich-path projection of a clock snapshot. The
// _str twins carry the full 64-bit value in decimal for hosts that
// cannot represent it numerically.
type SnapshotView struct {
	Tick       uint64          `json:"tick"`
	TickStr    string          `json:"tick_str"`
	Epoch      uint64          `json:"epoch"`
	EpochStr   string          `json:"epoch_str"`
	Partitions []PartitionView `json:"partitions"`
}

// PulseView is one fired pulse inside an OutcomeView.
type PulseView struct {
	Name     string `json:"name"`
	Tick     uint64 `json:"tick"`
	TickStr  string `json:"tick_str"`
	Epoch    uint64 `json:"epoch"`
	EpochStr string `json:"epoch_str"`
}

// OutcomeView is the rich-path projection of one tick outcome.
type OutcomeView struct {
	Snapshot   SnapshotView `json:"snapshot"`
	Pulses     []PulseView  `json:"pulses"`
	Overflowed bool         `json:"overflowed"`
}

// Host wraps a built clock for a foreign embedder. The pulse-name and
// moduli tables are frozen at construction, matching the clock's fixed
// shape, so the raw path can size and index its buffers without asking
// the clock per tick.
type Host struct {
	clock      *clock.Clock
	pulseNames []string
	pulseIndex map[string]int
	moduli     []uint64
}

// NewHost wraps a built clock.
func NewHost(c *clock.Clock) *Host {
	names := c.PulseNames()
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	return &Host{
		clock:      c,
		pulseNames: names,
		pulseIndex: index,
		moduli:     c.PartitionModuli(),
	}
}

// Clock returns the wrapped clock for callers that want the native API.
func (h *Host) Clock() *clock.Clock {
	return h.clock
}

// PulseNames returns the registered pulse names in registration order.
// Index i here is bit i in the raw pulse bitset.
func (h *Host) PulseNames() []string {
	names := make([]string, len(h.pulseNames))
	copy(names, h.pulseNames)
	return names
}

// PartitionCount returns the number of partitions.
func (h *Host) PartitionCount() int {
	return len(h.moduli)
}

// Order returns the partition order as its string form.
func (h *Host) Order() string {
	return h.clock.Order().String()
}

// Snapshot captures the current state without advancing.
func (h *Host) Snapshot() SnapshotView {
	snap := h.clock.Snapshot()
	return snapshotView(&snap)
}

// Tick advances one step and returns the rich outcome view.
func (h *Host) Tick() OutcomeView {
	outcome := h.clock.Tick()

	pulses := make([]PulseView, len(outcome.Pulses))
	for i, p := range outcome.Pulses {
		pulses[i] = PulseView{
			Name:     p.Name,
			Tick:     p.Tick,
			TickStr:  strconv.FormatUint(p.Tick, 10),
			Epoch:    p.Epoch,
			EpochStr: strconv.FormatUint(p.Epoch, 10),
		}
	}

	return OutcomeView{
		Snapshot:   snapshotView(&outcome.Snapshot),
		Pulses:     pulses,
		Overflowed: outcome.Overflowed,
	}
}

func snapshotView(snap *clock.Snapshot) SnapshotView {
	partitions := make([]PartitionView, len(snap.Partitions))
	for i, p := range snap.Partitions {
		partitions[i] = PartitionView{
			Name:     p.Name,
			Value:    p.Value,
			ValueStr: strconv.FormatUint(p.Value, 10),
			Modulus:  p.Modulus,
		}
	}
	return SnapshotView{
		Tick:       snap.Tick,
		TickStr:    strconv.FormatUint(snap.Tick, 10),
		Epoch:      snap.Epoch,
		EpochStr:   strconv.FormatUint(snap.Epoch, 10),
		Partitions: partitions,
	}
}

// HostBuilder mirrors the clock builder for hosts working over the
// bridge. Methods that parse host input fail immediately with a typed
// error; everything else defers to Build, which surfaces the kernel's
// own validation verdict.
type HostBuilder struct {
	builder *clock.Builder
}

// NewHostBuilder starts an empty builder.
func NewHostBuilder() *HostBuilder {
	return &HostBuilder{builder: clock.NewBuilder()}
}

// SetOrder selects the cascade order from its string form. Accepts the
// same synonyms as clock.ParseOrder ("lsf", "least_significant_first",
// "msf", ...).
func (hb *HostBuilder) SetOrder(s string) error {
	order, err := clock.ParseOrder(s)
	if err != nil {
		return err
	}
	hb.builder.Order(order)
	return nil
}

// Partition registers one partition.
func (hb *HostBuilder) Partition(name string, modulus uint64) *HostBuilder {
	hb.builder.AddPartition(name, modulus)
	return hb
}

// PulseEvery registers a periodic pulse.
func (hb *HostBuilder) PulseEvery(name string, period uint64) *HostBuilder {
	hb.builder.PulseEvery(name, period)
	return hb
}

// PulseCondition registers a pulse from a JSON condition literal. The
// literal is parsed here, once; a malformed literal never reaches the
// clock.
func (hb *HostBuilder) PulseCondition(name string, literal []byte) error {
	cond, err := clock.ParseConditionLiteral(literal)
	if err != nil {
		return err
	}
	hb.builder.PulseWhen(name, cond)
	return nil
}

// PulseConditionValue registers a pulse from an already-decoded
// literal tree, for hosts that hand over structured values rather
// than JSON text.
func (hb *HostBuilder) PulseConditionValue(name string, v any) error {
	cond, err := clock.ConditionFromValue(v)
	if err != nil {
		return err
	}
	hb.builder.PulseWhen(name, cond)
	return nil
}

// StartTick seeds the tick counter for resumed runs.
func (hb *HostBuilder) StartTick(tick uint64) *HostBuilder {
	hb.builder.StartTick(tick)
	return hb
}

// Build validates and freezes the configuration into a Host.
func (hb *HostBuilder) Build() (*Host, error) {
	c, err := hb.builder.Build()
	if err != nil {
		return nil, err
	}
	return NewHost(c), nil
}
