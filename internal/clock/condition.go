package clock

// Condition is the sealed predicate grammar deciding when a pulse
// fires. Only the seven node types in this file implement it; the
// grammar is closed by design so that evaluation and validation can
// type-switch exhaustively.
//
// Conditions are pure values: evaluation never mutates clock state and
// may be repeated without limit. All failure modes (unknown partition,
// zero divisor, inverted range) are rejected at build time, so Eval
// never errors.
type Condition interface {
	isCondition() // Sealed - only the node types below implement it.
}

// Every fires on every Period-th tick. Tick 0 never fires, so a
// period-1 pulse first fires at tick 1.
type Every struct {
	Period uint64
}

func (Every) isCondition() {}

// PartitionEquals fires when the named partition holds exactly Value.
type PartitionEquals struct {
	Name  string
	Value uint64
}

func (PartitionEquals) isCondition() {}

// PartitionModulo fires when the named partition's value modulo
// Modulus equals Remainder.
type PartitionModulo struct {
	Name      string
	Modulus   uint64
	Remainder uint64
}

func (PartitionModulo) isCondition() {}

// TickRange fires while Start <= tick <= End, inclusive on both ends.
type TickRange struct {
	Start uint64
	End   uint64
}

func (TickRange) isCondition() {}

// Not negates its child condition.
type Not struct {
	Condition Condition
}

func (Not) isCondition() {}

// And fires when the list is non-empty and every child fires. An empty
// And is false, not vacuously true - a misconfigured always-firing
// pulse would otherwise go unnoticed.
type And struct {
	Conditions []Condition
}

func (And) isCondition() {}

// Or fires when at least one child fires. An empty Or is false.
type Or struct {
	Conditions []Condition
}

func (Or) isCondition() {}

// Eval reports whether the condition is met at the given tick and
// snapshot. The walk is pure and total: a condition referencing a
// partition absent from the snapshot evaluates to false rather than
// failing, although build-time validation makes that unreachable for
// conditions that passed Build.
func Eval(c Condition, tick uint64, snap *Snapshot) bool {
	switch cond := c.(type) {
	case Every:
		return tick != 0 && cond.Period != 0 && tick%cond.Period == 0

	case PartitionEquals:
		p, ok := snap.Partition(cond.Name)
		return ok && p.Value == cond.Value

	case PartitionModulo:
		p, ok := snap.Partition(cond.Name)
		if !ok || cond.Modulus == 0 {
			return false
		}
		return p.Value%cond.Modulus == cond.Remainder

	case TickRange:
		return tick >= cond.Start && tick <= cond.End

	case Not:
		return !Eval(cond.Condition, tick, snap)

	case And:
		if len(cond.Conditions) == 0 {
			return false
		}
		for _, child := range cond.Conditions {
			if !Eval(child, tick, snap) {
				return false
			}
		}
		return true

	case Or:
		for _, child := range cond.Conditions {
			if Eval(child, tick, snap) {
				return true
			}
		}
		return false

	default:
		// Unreachable: the grammar is sealed.
		return false
	}
}
