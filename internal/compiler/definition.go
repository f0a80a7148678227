package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/beeclock/internal/clock"
)

// PartitionDef is one partition declaration, in declaration order.
type PartitionDef struct {
	Name    string
	Modulus uint64
}

// PulseDef pairs a pulse name with its compiled condition.
type PulseDef struct {
	Name      string
	Condition clock.Condition
}

// Definition is a compiled clock definition, still unvalidated: the
// kernel's builder performs the semantic checks (duplicate names,
// zero moduli, unknown partitions) when the definition is built.
type Definition struct {
	Name       string
	Order      clock.PartitionOrder
	Partitions []PartitionDef
	Pulses     []PulseDef
	StartTick  uint64
}

// CompileClock parses a CUE value into a Definition.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the clock struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`clock: Wall: { ... }`)
//	def, err := CompileClock(v.LookupPath(cue.ParsePath("clock.Wall")))
func CompileClock(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{}

	// Parse clock name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.Name = labels[len(labels)-1].String()
	}

	// Parse order (required whenever partitions exist; the kernel
	// enforces that, so here it is simply optional)
	orderVal := v.LookupPath(cue.ParsePath("order"))
	if orderVal.Exists() {
		orderStr, err := orderVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		order, err := clock.ParseOrder(orderStr)
		if err != nil {
			return nil, &CompileError{
				Field:   "order",
				Message: err.Error(),
				Pos:     orderVal.Pos(),
			}
		}
		def.Order = order
	}

	// Parse partitions (optional; field order is significance order)
	partitionVal := v.LookupPath(cue.ParsePath("partition"))
	if partitionVal.Exists() {
		iter, err := partitionVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			modulus, err := iter.Value().Uint64()
			if err != nil {
				return nil, &CompileError{
					Field:   "partition." + iter.Label(),
					Message: "modulus must be a non-negative integer",
					Pos:     iter.Value().Pos(),
				}
			}
			def.Partitions = append(def.Partitions, PartitionDef{
				Name:    iter.Label(),
				Modulus: modulus,
			})
		}
	}

	// Parse pulses (optional; each value is one condition node)
	pulseVal := v.LookupPath(cue.ParsePath("pulse"))
	if pulseVal.Exists() {
		iter, err := pulseVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			cond, err := parseCondition(iter.Value(), "pulse."+iter.Label())
			if err != nil {
				return nil, err
			}
			def.Pulses = append(def.Pulses, PulseDef{
				Name:      iter.Label(),
				Condition: cond,
			})
		}
	}

	// Parse start_tick (optional, for resumed runs)
	startVal := v.LookupPath(cue.ParsePath("start_tick"))
	if startVal.Exists() {
		start, err := startVal.Uint64()
		if err != nil {
			return nil, &CompileError{
				Field:   "start_tick",
				Message: "must be a non-negative integer",
				Pos:     startVal.Pos(),
			}
		}
		def.StartTick = start
	}

	return def, nil
}

// parseCondition parses one condition node. The grammar mirrors the
// bridge's literal grammar: a struct with a "type" discriminator and
// per-type fields, recursing through not/and/or.
func parseCondition(v cue.Value, field string) (clock.Condition, error) {
	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: "condition type is required",
			Pos:     v.Pos(),
		}
	}
	kind, err := typeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	switch kind {
	case "every":
		period, err := conditionUint(v, field, "period")
		if err != nil {
			return nil, err
		}
		return clock.Every{Period: period}, nil

	case "partition_equals":
		name, err := conditionString(v, field, "name")
		if err != nil {
			return nil, err
		}
		value, err := conditionUint(v, field, "value")
		if err != nil {
			return nil, err
		}
		return clock.PartitionEquals{Name: name, Value: value}, nil

	case "partition_modulo":
		name, err := conditionString(v, field, "name")
		if err != nil {
			return nil, err
		}
		modulus, err := conditionUint(v, field, "modulus")
		if err != nil {
			return nil, err
		}
		remainder, err := conditionUint(v, field, "remainder")
		if err != nil {
			return nil, err
		}
		return clock.PartitionModulo{Name: name, Modulus: modulus, Remainder: remainder}, nil

	case "tick_range":
		start, err := conditionUint(v, field, "start")
		if err != nil {
			return nil, err
		}
		end, err := conditionUint(v, field, "end")
		if err != nil {
			return nil, err
		}
		return clock.TickRange{Start: start, End: end}, nil

	case "not":
		childVal := v.LookupPath(cue.ParsePath("condition"))
		if !childVal.Exists() {
			return nil, &CompileError{
				Field:   field + ".condition",
				Message: "not requires a child condition",
				Pos:     v.Pos(),
			}
		}
		child, err := parseCondition(childVal, field+".condition")
		if err != nil {
			return nil, err
		}
		return clock.Not{Condition: child}, nil

	case "and", "or":
		listVal := v.LookupPath(cue.ParsePath("conditions"))
		if !listVal.Exists() {
			return nil, &CompileError{
				Field:   field + ".conditions",
				Message: kind + " requires a conditions list",
				Pos:     v.Pos(),
			}
		}
		listIter, err := listVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var children []clock.Condition
		i := 0
		for listIter.Next() {
			child, err := parseCondition(listIter.Value(), fmt.Sprintf("%s.conditions[%d]", field, i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
			i++
		}
		if kind == "and" {
			return clock.And{Conditions: children}, nil
		}
		return clock.Or{Conditions: children}, nil

	default:
		return nil, &CompileError{
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown condition type %q", kind),
			Pos:     typeVal.Pos(),
		}
	}
}

func conditionString(v cue.Value, field, key string) (string, error) {
	val := v.LookupPath(cue.ParsePath(key))
	if !val.Exists() {
		return "", &CompileError{
			Field:   field + "." + key,
			Message: key + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func conditionUint(v cue.Value, field, key string) (uint64, error) {
	val := v.LookupPath(cue.ParsePath(key))
	if !val.Exists() {
		return 0, &CompileError{
			Field:   field + "." + key,
			Message: key + " is required",
			Pos:     v.Pos(),
		}
	}
	n, err := val.Uint64()
	if err != nil {
		return 0, &CompileError{
			Field:   field + "." + key,
			Message: key + " must be a non-negative integer",
			Pos:     val.Pos(),
		}
	}
	return n, nil
}

// Builder produces a kernel builder configured from the definition.
// Partition declaration order becomes significance order.
func (d *Definition) Builder() *clock.Builder {
	b := clock.NewBuilder()
	if d.Order != clock.OrderUnset {
		b.Order(d.Order)
	}
	for _, p := range d.Partitions {
		b.AddPartition(p.Name, p.Modulus)
	}
	for _, p := range d.Pulses {
		b.PulseWhen(p.Name, p.Condition)
	}
	if d.StartTick != 0 {
		b.StartTick(d.StartTick)
	}
	return b
}

// Build compiles the definition into a running clock, surfacing the
// kernel's validation verdict.
func (d *Definition) Build() (*clock.Clock, error) {
	return d.Builder().Build()
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
