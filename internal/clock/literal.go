package clock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// The condition literal grammar mirrors the native Condition tree one
// tagged object per node, for hosts that cannot construct Go values:
//
//	{ "type": "every", "period": 10 }
//	{ "type": "partition_equals", "name": "hour", "value": 12 }
//	{ "type": "partition_modulo", "name": "sec", "modulus": 2, "remainder": 0 }
//	{ "type": "tick_range", "start": 5, "end": 9 }
//	{ "type": "not", "condition": {...} }
//	{ "type": "and", "conditions": [...] }
//	{ "type": "or", "conditions": [...] }
//
// Literals are parsed ONCE at registration into the native tree and
// never re-parsed per tick.

// LiteralError describes a malformed condition literal: an unknown
// type discriminator, a missing field, or a field of the wrong shape.
// Path locates the offending node (e.g. "conditions[1].period").
type LiteralError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *LiteralError) Error() string {
	if e.Path == "" {
		return "condition literal: " + e.Message
	}
	return fmt.Sprintf("condition literal at %s: %s", e.Path, e.Message)
}

// ParseConditionLiteral decodes a JSON condition literal into the
// native tree. Numbers are decoded strictly: floats, negatives, and
// values beyond uint64 are rejected.
func ParseConditionLiteral(data []byte) (Condition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &LiteralError{Message: err.Error()}
	}

	return conditionFromValue(raw, "")
}

// ConditionFromValue converts an already-decoded literal (a
// map[string]any tree, as produced by JSON or YAML decoders) into the
// native Condition tree. Accepts json.Number and the integer kinds
// YAML decoders produce; rejects floats and negative values.
func ConditionFromValue(v any) (Condition, error) {
	return conditionFromValue(v, "")
}

func conditionFromValue(v any, path string) (Condition, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &LiteralError{Path: path, Message: fmt.Sprintf("node must be an object, got %T", v)}
	}

	kind, err := literalString(obj, "type", path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "every":
		period, err := literalUint(obj, "period", path)
		if err != nil {
			return nil, err
		}
		return Every{Period: period}, nil

	case "partition_equals":
		name, err := literalString(obj, "name", path)
		if err != nil {
			return nil, err
		}
		value, err := literalUint(obj, "value", path)
		if err != nil {
			return nil, err
		}
		return PartitionEquals{Name: name, Value: value}, nil

	case "partition_modulo":
		name, err := literalString(obj, "name", path)
		if err != nil {
			return nil, err
		}
		modulus, err := literalUint(obj, "modulus", path)
		if err != nil {
			return nil, err
		}
		remainder, err := literalUint(obj, "remainder", path)
		if err != nil {
			return nil, err
		}
		return PartitionModulo{Name: name, Modulus: modulus, Remainder: remainder}, nil

	case "tick_range":
		start, err := literalUint(obj, "start", path)
		if err != nil {
			return nil, err
		}
		end, err := literalUint(obj, "end", path)
		if err != nil {
			return nil, err
		}
		return TickRange{Start: start, End: end}, nil

	case "not":
		child, exists := obj["condition"]
		if !exists {
			return nil, &LiteralError{Path: joinPath(path, "condition"), Message: "missing field"}
		}
		inner, err := conditionFromValue(child, joinPath(path, "condition"))
		if err != nil {
			return nil, err
		}
		return Not{Condition: inner}, nil

	case "and":
		children, err := literalChildren(obj, path)
		if err != nil {
			return nil, err
		}
		return And{Conditions: children}, nil

	case "or":
		children, err := literalChildren(obj, path)
		if err != nil {
			return nil, err
		}
		return Or{Conditions: children}, nil

	default:
		return nil, &LiteralError{Path: joinPath(path, "type"), Message: fmt.Sprintf("unknown condition type %q", kind)}
	}
}

// literalChildren decodes the "conditions" array shared by and/or.
func literalChildren(obj map[string]any, path string) ([]Condition, error) {
	raw, exists := obj["conditions"]
	if !exists {
		return nil, &LiteralError{Path: joinPath(path, "conditions"), Message: "missing field"}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &LiteralError{Path: joinPath(path, "conditions"), Message: fmt.Sprintf("must be an array, got %T", raw)}
	}

	children := make([]Condition, len(list))
	for i, elem := range list {
		child, err := conditionFromValue(elem, fmt.Sprintf("%s[%d]", joinPath(path, "conditions"), i))
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return children, nil
}

func literalString(obj map[string]any, field, path string) (string, error) {
	raw, exists := obj[field]
	if !exists {
		return "", &LiteralError{Path: joinPath(path, field), Message: "missing field"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &LiteralError{Path: joinPath(path, field), Message: fmt.Sprintf("must be a string, got %T", raw)}
	}
	return s, nil
}

// literalUint extracts a non-negative integer field. Floats are
// rejected rather than truncated - a fractional period is a
// misconfiguration, not a rounding request.
func literalUint(obj map[string]any, field, path string) (uint64, error) {
	raw, exists := obj[field]
	if !exists {
		return 0, &LiteralError{Path: joinPath(path, field), Message: "missing field"}
	}

	switch n := raw.(type) {
	case json.Number:
		s := n.String()
		if strings.ContainsAny(s, ".eE") {
			return 0, &LiteralError{Path: joinPath(path, field), Message: fmt.Sprintf("must be an integer, got %s", s)}
		}
		if strings.HasPrefix(s, "-") {
			return 0, &LiteralError{Path: joinPath(path, field), Message: fmt.Sprintf("must be non-negative, got %s", s)}
		}
		var value uint64
		if _, err := fmt.Sscanf(s, "%d", &value); err != nil {
			return 0, &LiteralError{Path: joinPath(path, field), Message: fmt.Sprintf("out of uint64 range: %s", s)}
		}
		return value, nil
	case int:
		if n < 0 {
			return 0, &LiteralError{Path: joinPath(path, field), Message: fmt.Sprintf("must be non-negative, got %d", n)}
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, &LiteralError{Path: joinPath(path, field), Message: fmt.Sprintf("must be non-negative, got %d", n)}
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	case float64:
		// Floats are forbidden even when integral: a float-typed period
		// means the host serialized through a lossy number type.
		return 0, &LiteralError{Path: joinPath(path, field), Message: fmt.Sprintf("must be an integer, floats are not accepted: %v", n)}
	default:
		return 0, &LiteralError{Path: joinPath(path, field), Message: fmt.Sprintf("must be an integer, got %T", raw)}
	}
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
