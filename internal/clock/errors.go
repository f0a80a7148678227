package clock

import (
	"errors"
	"fmt"
)

// BuildError represents a configuration error detected by Build.
//
// All kernel errors are construction-time errors: once Build succeeds
// the clock's shape is frozen and Tick cannot fail. BuildError carries
// structured fields so callers can report the offending partition or
// pulse without parsing the message.
type BuildError struct {
	// Code identifies the error category.
	Code BuildErrorCode

	// Message is a human-readable description.
	Message string

	// Pulse names the offending pulse, when one is involved.
	Pulse string

	// Partition names the offending partition, when one is involved.
	Partition string

	// Start and End carry the offending range for INVALID_TICK_RANGE.
	Start uint64
	End   uint64
}

// BuildErrorCode categorizes construction failures.
type BuildErrorCode string

const (
	// ErrCodeDuplicatePartition indicates two partitions share a name.
	ErrCodeDuplicatePartition BuildErrorCode = "DUPLICATE_PARTITION"

	// ErrCodeZeroModulus indicates a partition with modulus 0.
	ErrCodeZeroModulus BuildErrorCode = "ZERO_MODULUS"

	// ErrCodeZeroPeriod indicates an Every condition with period 0.
	ErrCodeZeroPeriod BuildErrorCode = "ZERO_PERIOD"

	// ErrCodeZeroConditionModulus indicates a PartitionModulo condition
	// with modulus 0.
	ErrCodeZeroConditionModulus BuildErrorCode = "ZERO_CONDITION_MODULUS"

	// ErrCodeUnknownPartition indicates a condition referencing a
	// partition that was never registered.
	ErrCodeUnknownPartition BuildErrorCode = "UNKNOWN_PARTITION"

	// ErrCodeInvalidTickRange indicates a TickRange with start > end.
	ErrCodeInvalidTickRange BuildErrorCode = "INVALID_TICK_RANGE"

	// ErrCodeMissingOrder indicates partitions were registered without
	// an explicit order selection.
	ErrCodeMissingOrder BuildErrorCode = "MISSING_ORDER"

	// ErrCodeDuplicatePulse indicates two pulses share a name.
	ErrCodeDuplicatePulse BuildErrorCode = "DUPLICATE_PULSE"
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Pulse != "" && e.Partition != "" {
		return fmt.Sprintf("%s: %s (pulse=%s, partition=%s)", e.Code, e.Message, e.Pulse, e.Partition)
	}
	if e.Pulse != "" {
		return fmt.Sprintf("%s: %s (pulse=%s)", e.Code, e.Message, e.Pulse)
	}
	if e.Partition != "" {
		return fmt.Sprintf("%s: %s (partition=%s)", e.Code, e.Message, e.Partition)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsBuildError reports whether err is a BuildError with the given code.
// Uses errors.As to handle wrapped errors.
func IsBuildError(err error, code BuildErrorCode) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func newDuplicatePartitionError(name string) *BuildError {
	return &BuildError{
		Code:      ErrCodeDuplicatePartition,
		Message:   "partition name registered twice",
		Partition: name,
	}
}

func newZeroModulusError(name string) *BuildError {
	return &BuildError{
		Code:      ErrCodeZeroModulus,
		Message:   "partition modulus must be > 0",
		Partition: name,
	}
}

func newZeroPeriodError(pulse string) *BuildError {
	return &BuildError{
		Code:    ErrCodeZeroPeriod,
		Message: "pulse period must be > 0",
		Pulse:   pulse,
	}
}

func newZeroConditionModulusError(pulse, partition string) *BuildError {
	return &BuildError{
		Code:      ErrCodeZeroConditionModulus,
		Message:   "condition modulus must be > 0",
		Pulse:     pulse,
		Partition: partition,
	}
}

func newUnknownPartitionError(pulse, partition string) *BuildError {
	return &BuildError{
		Code:      ErrCodeUnknownPartition,
		Message:   "condition references unknown partition",
		Pulse:     pulse,
		Partition: partition,
	}
}

func newInvalidTickRangeError(pulse string, start, end uint64) *BuildError {
	return &BuildError{
		Code:    ErrCodeInvalidTickRange,
		Message: fmt.Sprintf("tick range start %d exceeds end %d", start, end),
		Pulse:   pulse,
		Start:   start,
		End:     end,
	}
}

func newMissingOrderError() *BuildError {
	return &BuildError{
		Code:    ErrCodeMissingOrder,
		Message: "partition order must be selected when partitions are registered",
	}
}

func newDuplicatePulseError(name string) *BuildError {
	return &BuildError{
		Code:    ErrCodeDuplicatePulse,
		Message: "pulse name registered twice",
		Pulse:   name,
	}
}
