package bridge

import (
	"fmt"

	"github.com/roach88/beeclock/internal/clock"
)

// Raw buffer word layout, all uint32:
//
//	snapshot: [tick_lo, tick_hi, epoch_lo, epoch_hi, overflowed,
//	           partition_count, p0_lo, p0_hi, p1_lo, p1_hi, ...]
//	pulses:   bitset, bit i = pulse i in registration order, plus one
//	          reserved bit after the user pulses for overflow
//	moduli:   [m0_lo, m0_hi, m1_lo, m1_hi, ...] in partition order
//
// The caller owns the buffers and sizes them once from RawSnapshotLen
// and RawPulseWords; the kernel writes in place every step.

// rawHeaderWords counts the fixed words before the partition pairs.
const rawHeaderWords = 6

// BufferError reports a caller-supplied buffer too small for the
// clock's fixed shape. The tick that would have filled it was not
// consumed.
type BufferError struct {
	Buffer string
	Need   int
	Got    int
}

// Error implements the error interface.
func (e *BufferError) Error() string {
	return fmt.Sprintf("%s buffer too small: need %d words, got %d", e.Buffer, e.Need, e.Got)
}

// RawSnapshotLen returns the exact number of uint32 words a raw
// snapshot occupies. Constant for the life of the host.
func (h *Host) RawSnapshotLen() int {
	return rawHeaderWords + 2*len(h.moduli)
}

// RawPulseWords returns the exact number of uint32 words the pulse
// bitset occupies, including the reserved overflow bit.
func (h *Host) RawPulseWords() int {
	bits := len(h.pulseNames) + 1
	return (bits + 31) / 32
}

// SnapshotRaw writes the current snapshot into out without advancing.
func (h *Host) SnapshotRaw(out []uint32) error {
	if need := h.RawSnapshotLen(); len(out) < need {
		return &BufferError{Buffer: "snapshot", Need: need, Got: len(out)}
	}
	snap := h.clock.Snapshot()
	h.writeSnapshot(out, &snap, false)
	return nil
}

// TickRaw advances one step and writes the snapshot and the fired
// pulse bitset into the caller's buffers. Both buffers are length
// checked before the clock moves, so a short buffer never consumes a
// tick.
func (h *Host) TickRaw(snapshotOut, pulseBitsOut []uint32) error {
	if need := h.RawSnapshotLen(); len(snapshotOut) < need {
		return &BufferError{Buffer: "snapshot", Need: need, Got: len(snapshotOut)}
	}
	if need := h.RawPulseWords(); len(pulseBitsOut) < need {
		return &BufferError{Buffer: "pulses", Need: need, Got: len(pulseBitsOut)}
	}

	outcome := h.clock.Tick()

	h.writeSnapshot(snapshotOut, &outcome.Snapshot, outcome.Overflowed)

	for i := 0; i < h.RawPulseWords(); i++ {
		pulseBitsOut[i] = 0
	}
	overflowBit := len(h.pulseNames)
	for _, fired := range outcome.Pulses {
		bit, known := h.pulseIndex[fired.Name]
		if !known {
			// Only the reserved overflow pulse is absent from the table.
			bit = overflowBit
		}
		pulseBitsOut[bit/32] |= 1 << (uint(bit) % 32)
	}

	return nil
}

// PartitionModuliRaw writes each partition's modulus as a (low, high)
// word pair in partition order. A host typically calls this once at
// startup to label its buffers.
func (h *Host) PartitionModuliRaw(out []uint32) error {
	if need := 2 * len(h.moduli); len(out) < need {
		return &BufferError{Buffer: "moduli", Need: need, Got: len(out)}
	}
	for i, m := range h.moduli {
		putU64(out[2*i:], m)
	}
	return nil
}

func (h *Host) writeSnapshot(out []uint32, snap *clock.Snapshot, overflowed bool) {
	putU64(out[0:], snap.Tick)
	putU64(out[2:], snap.Epoch)
	if overflowed {
		out[4] = 1
	} else {
		out[4] = 0
	}
	out[5] = uint32(len(snap.Partitions))
	for i, p := range snap.Partitions {
		putU64(out[rawHeaderWords+2*i:], p.Value)
	}
}

// putU64 writes v as a (low, high) uint32 pair.
func putU64(out []uint32, v uint64) {
	out[0] = uint32(v)
	out[1] = uint32(v >> 32)
}
