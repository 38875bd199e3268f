package scan_variant

import (
	"bytes"
	"fmt"
	"strings"
)

// Predicate is the condition a scanned location must satisfy.
type Predicate int

const (
	Equals Predicate = iota
	NotEquals
	GreaterThan
	LessThan
	InRange // inclusive on both bounds
	Changed
	Unchanged
	Increased
	Decreased
)

var predicateNames = [...]string{
	Equals:      "eq",
	NotEquals:   "ne",
	GreaterThan: "gt",
	LessThan:    "lt",
	InRange:     "range",
	Changed:     "changed",
	Unchanged:   "unchanged",
	Increased:   "increased",
	Decreased:   "decreased",
}

var predicateAliases = map[string]Predicate{
	"==": Equals,
	"!=": NotEquals,
	">":  GreaterThan,
	"<":  LessThan,
}

func (p Predicate) String() string {
	if p >= 0 && int(p) < len(predicateNames) {
		return predicateNames[p]
	}
	return fmt.Sprintf("Predicate(%d)", int(p))
}

// ParsePredicate accepts the names printed by String and the operators == != > <.
func ParsePredicate(s string) (Predicate, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range predicateNames {
		if name == s {
			return Predicate(i), nil
		}
	}
	if p, ok := predicateAliases[s]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: unknown predicate %q", ErrParse, s)
}

// Operands is the number of literal values the predicate needs.
func (p Predicate) Operands() int {
	switch p {
	case Equals, NotEquals, GreaterThan, LessThan:
		return 1
	case InRange:
		return 2
	default:
		return 0
	}
}

// Relational predicates need an ordering, equality ones do not.
func (p Predicate) Relational() bool {
	switch p {
	case GreaterThan, LessThan, InRange, Increased, Decreased:
		return true
	}
	return false
}

// UsesPrevious reports whether Match reads the previous snapshot.
func (p Predicate) UsesPrevious() bool {
	return p >= Changed && p <= Decreased
}

// Matcher evaluates one predicate against raw memory windows. The
// comparator is resolved once when the matcher is built. A Matcher holds
// scratch space, so each scanning worker needs its own.
type Matcher struct {
	trait    Trait
	pred     Predicate
	cmp      Comparator
	operands [][]byte
	width    int

	// swap is set when raw memory is little-endian on a big-endian host
	swap             bool
	scratch, scratch2 [8]byte
}

// NewMatcher prepares p for memory of the given byte order. Operands are
// values of trait t, as produced by FromString or FromBuffer.
func NewMatcher(t Trait, p Predicate, littleEndian bool, operands ...*ScanVariant) (*Matcher, error) {
	if t == nil || t.IsStructureType() || IsNullType(t) {
		return nil, traitError("match "+p.String(), t, ErrUnsupportedOperation)
	}
	if len(operands) != p.Operands() {
		return nil, traitError("match "+p.String(), t,
			fmt.Errorf("%w: got %d, want %d", ErrOperandCount, len(operands), p.Operands()))
	}
	if p.Relational() && !IsOrdered(t) {
		return nil, traitError("match "+p.String(), t, ErrUnorderedType)
	}

	m := &Matcher{trait: t, pred: p, width: t.Size()}

	if t.IsNumericType() {
		switch {
		case littleEndian == HostLittleEndian:
			m.cmp = t.Comparator()
		case !littleEndian:
			m.cmp = t.BigEndianComparator()
		default:
			m.cmp = t.Comparator()
			m.swap = true
		}
	}

	for _, op := range operands {
		if op == nil || op.trait != t {
			return nil, traitError("match "+p.String(), t, ErrTraitMismatch)
		}
		encoded, err := m.encodeOperand(op, littleEndian)
		if err != nil {
			return nil, err
		}
		m.operands = append(m.operands, encoded)
	}

	if t.IsStringType() && len(m.operands) > 0 {
		m.width = len(m.operands[0])
	}

	return m, nil
}

func (m *Matcher) encodeOperand(op *ScanVariant, littleEndian bool) ([]byte, error) {
	if m.trait.IsNumericType() {
		if m.swap {
			return bytes.Clone(op.payload), nil
		}
		return m.trait.Encode(nil, op.payload, littleEndian)
	}

	// Strings compare without their terminator.
	needle := bytes.Clone(op.payload)
	if _, wide := m.trait.(*wideStringTrait); wide {
		needle = bytes.TrimSuffix(needle, []byte{0, 0})
		if littleEndian != HostLittleEndian {
			for i := 0; i+1 < len(needle); i += wideCharSize {
				needle[i], needle[i+1] = needle[i+1], needle[i]
			}
		}
	} else {
		needle = bytes.TrimSuffix(needle, []byte{0})
	}
	return needle, nil
}

// Clone returns a matcher sharing m's operands but with its own scratch space.
func (m *Matcher) Clone() *Matcher {
	c := *m
	return &c
}

func (m *Matcher) Trait() Trait         { return m.trait }
func (m *Matcher) Predicate() Predicate { return m.pred }

// Width is the number of bytes Match consumes from raw, 0 when the whole
// window is compared (string change predicates).
func (m *Matcher) Width() int { return m.width }

// Match reports whether raw satisfies the predicate. previous is the same
// location in the prior snapshot and is only read by change predicates.
func (m *Matcher) Match(raw, previous []byte) (bool, error) {
	cur, err := m.window(raw, m.scratch[:])
	if err != nil {
		return false, err
	}

	switch m.pred {
	case Equals:
		return m.equal(cur, m.operands[0]), nil
	case NotEquals:
		return !m.equal(cur, m.operands[0]), nil
	case GreaterThan:
		return m.cmp(cur, m.operands[0]) == Greater, nil
	case LessThan:
		return m.cmp(cur, m.operands[0]) == Less, nil
	case InRange:
		return m.cmp(cur, m.operands[0]) != Less && m.cmp(cur, m.operands[1]) != Greater, nil
	}

	prev, err := m.window(previous, m.scratch2[:])
	if err != nil {
		return false, err
	}

	switch m.pred {
	case Changed:
		return !m.equal(cur, prev), nil
	case Unchanged:
		return m.equal(cur, prev), nil
	case Increased:
		return m.cmp(cur, prev) == Greater, nil
	case Decreased:
		return m.cmp(cur, prev) == Less, nil
	}

	return false, traitError("match "+m.pred.String(), m.trait, ErrUnsupportedOperation)
}

func (m *Matcher) window(raw []byte, scratch []byte) ([]byte, error) {
	if m.width == 0 {
		return raw, nil
	}
	if len(raw) < m.width {
		return nil, traitError("match "+m.pred.String(), m.trait,
			fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(raw), m.width))
	}
	w := raw[:m.width]
	if !m.swap {
		return w, nil
	}
	s := scratch[:m.width]
	for i := range w {
		s[len(w)-1-i] = w[i]
	}
	return s, nil
}

// equal uses the comparator when there is one, so +0 equals -0 for floats.
func (m *Matcher) equal(a, b []byte) bool {
	if m.cmp != nil {
		return m.cmp(a, b) == Equal
	}
	return bytes.Equal(a, b)
}
