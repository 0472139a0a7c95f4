package expr

import (
	"reflect"
)

// Cond is a single condition term: column OP value.
type Cond struct {
	Col   Ref
	Op    Op
	Value any
}

// Validate checks the term invariants: a column is present, the operator is
// a comparison, null checks carry no value, and membership tests carry a
// collection.
func (c *Cond) Validate() error {
	switch {
	case c.Col.IsZero():
		return &InvalidChainError{Op: c.Op, Reason: "term has no column"}
	case !c.Op.Valid():
		return &InvalidChainError{Column: c.Col.String(), Reason: "unknown operator"}
	case c.Op.IsConnective():
		return &InvalidChainError{Op: c.Op, Column: c.Col.String(), Reason: "connective used as a comparison"}
	case c.Op.IsNullCheck() && c.Value != nil:
		return &InvalidChainError{Op: c.Op, Column: c.Col.String(), Reason: "null check must not carry a value"}
	case c.Op.IsMembership() && !isCollection(c.Value):
		return &InvalidChainError{Op: c.Op, Column: c.Col.String(), Reason: "membership test requires a slice or array"}
	}
	return nil
}

func isCollection(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// Term is one element of a Chain: either a condition or a parenthesized
// group. Conn joins the term to the next one and is zero on the last term.
type Term struct {
	Cond  *Cond
	Group *Chain
	Conn  Op
}

// Chain is an immutable sequence of terms joined by connectives. The zero
// value is the empty chain.
type Chain struct {
	terms []Term
	err   error
}

// Len returns the number of terms.
func (c Chain) Len() int { return len(c.terms) }

// IsEmpty reports whether the chain has no terms.
func (c Chain) IsEmpty() bool { return len(c.terms) == 0 }

// Err returns the first construction error recorded on the chain or any of
// its groups.
func (c Chain) Err() error { return c.err }

// Terms returns a copy of the chain's terms in order.
func (c Chain) Terms() []Term {
	out := make([]Term, len(c.terms))
	copy(out, c.terms)
	return out
}

// And joins other with AND.
func (c Chain) And(other Chain) Chain { return c.Join(OpAnd, other) }

// Or joins other with OR.
func (c Chain) Or(other Chain) Chain { return c.Join(OpOr, other) }

// Xor joins other with XOR.
func (c Chain) Xor(other Chain) Chain { return c.Join(OpXor, other) }

// AndGroup joins the chain built by fn with AND, as a single parenthesized term.
func (c Chain) AndGroup(fn func() Chain) Chain { return c.Join(OpAnd, Group(fn())) }

// OrGroup joins the chain built by fn with OR, as a single parenthesized term.
func (c Chain) OrGroup(fn func() Chain) Chain { return c.Join(OpOr, Group(fn())) }

// XorGroup joins the chain built by fn with XOR, as a single parenthesized term.
func (c Chain) XorGroup(fn func() Chain) Chain { return c.Join(OpXor, Group(fn())) }

// Join appends other to c using the connective op and returns the result.
// Neither operand is modified. Joining with an empty chain returns the other
// operand unchanged. A non-connective op records an InvalidChainError.
func (c Chain) Join(op Op, other Chain) Chain {
	err := firstErr(c.err, other.err)
	if !op.IsConnective() {
		return Chain{
			terms: c.Terms(),
			err:   firstErr(err, &InvalidChainError{Op: op, Reason: "not a connective"}),
		}
	}
	if other.IsEmpty() {
		return Chain{terms: c.terms, err: err}
	}
	if c.IsEmpty() {
		return Chain{terms: other.terms, err: err}
	}
	terms := make([]Term, 0, len(c.terms)+len(other.terms))
	terms = append(terms, c.terms...)
	terms[len(terms)-1].Conn = op
	terms = append(terms, other.terms...)
	return Chain{terms: terms, err: err}
}

// Group wraps c so that it renders as one parenthesized term. Chains with
// fewer than two terms are returned as is.
func Group(c Chain) Chain {
	if c.Len() < 2 {
		return c
	}
	inner := c
	return Chain{terms: []Term{{Group: &inner}}, err: c.err}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func cond[C ColumnRef](col C, op Op, v any) Chain {
	c := &Cond{Col: RefOf(col), Op: op, Value: v}
	return Chain{terms: []Term{{Cond: c}}, err: c.Validate()}
}

// Where wraps an existing condition as a single-term chain.
func Where(c Cond) Chain {
	cc := c
	return Chain{terms: []Term{{Cond: &cc}}, err: cc.Validate()}
}

// EQ builds col = v.
func EQ[C ColumnRef](col C, v any) Chain { return cond(col, OpEQ, v) }

// NE builds col <> v.
func NE[C ColumnRef](col C, v any) Chain { return cond(col, OpNE, v) }

// LT builds col < v.
func LT[C ColumnRef](col C, v any) Chain { return cond(col, OpLT, v) }

// LE builds col <= v.
func LE[C ColumnRef](col C, v any) Chain { return cond(col, OpLE, v) }

// GT builds col > v.
func GT[C ColumnRef](col C, v any) Chain { return cond(col, OpGT, v) }

// GE builds col >= v.
func GE[C ColumnRef](col C, v any) Chain { return cond(col, OpGE, v) }

// In builds col IN vs. vs must be a slice or array; an empty one is valid and
// renders an always-false membership test.
func In[C ColumnRef](col C, vs any) Chain { return cond(col, OpIn, vs) }

// NotIn builds col NOT IN vs.
func NotIn[C ColumnRef](col C, vs any) Chain { return cond(col, OpNotIn, vs) }

// IsNull builds col IS NULL.
func IsNull[C ColumnRef](col C) Chain { return cond(col, OpIsNull, nil) }

// NotNull builds col IS NOT NULL.
func NotNull[C ColumnRef](col C) Chain { return cond(col, OpNotNull, nil) }

// Contains builds a substring match.
func Contains[C ColumnRef](col C, v any) Chain { return cond(col, OpContains, v) }

// HasPrefix builds col STARTS WITH v.
func HasPrefix[C ColumnRef](col C, v any) Chain { return cond(col, OpStartsWith, v) }

// NotHasPrefix builds the negated prefix match.
func NotHasPrefix[C ColumnRef](col C, v any) Chain { return cond(col, OpNotStartsWith, v) }

// HasSuffix builds col ENDS WITH v.
func HasSuffix[C ColumnRef](col C, v any) Chain { return cond(col, OpEndsWith, v) }

// NotHasSuffix builds the negated suffix match.
func NotHasSuffix[C ColumnRef](col C, v any) Chain { return cond(col, OpNotEndsWith, v) }

// Assign builds col = v in assignment position.
func Assign[C ColumnRef](col C, v any) Chain { return cond(col, OpAssign, v) }

// Guarded variants return the empty chain when ok is false.

func EQIf[C ColumnRef](ok bool, col C, v any) Chain  { return guard(ok, col, OpEQ, v) }
func NEIf[C ColumnRef](ok bool, col C, v any) Chain  { return guard(ok, col, OpNE, v) }
func LTIf[C ColumnRef](ok bool, col C, v any) Chain  { return guard(ok, col, OpLT, v) }
func LEIf[C ColumnRef](ok bool, col C, v any) Chain  { return guard(ok, col, OpLE, v) }
func GTIf[C ColumnRef](ok bool, col C, v any) Chain  { return guard(ok, col, OpGT, v) }
func GEIf[C ColumnRef](ok bool, col C, v any) Chain  { return guard(ok, col, OpGE, v) }
func InIf[C ColumnRef](ok bool, col C, vs any) Chain { return guard(ok, col, OpIn, vs) }

func NotInIf[C ColumnRef](ok bool, col C, vs any) Chain { return guard(ok, col, OpNotIn, vs) }
func IsNullIf[C ColumnRef](ok bool, col C) Chain        { return guard(ok, col, OpIsNull, nil) }
func NotNullIf[C ColumnRef](ok bool, col C) Chain       { return guard(ok, col, OpNotNull, nil) }

func ContainsIf[C ColumnRef](ok bool, col C, v any) Chain { return guard(ok, col, OpContains, v) }

func HasPrefixIf[C ColumnRef](ok bool, col C, v any) Chain { return guard(ok, col, OpStartsWith, v) }

func NotHasPrefixIf[C ColumnRef](ok bool, col C, v any) Chain {
	return guard(ok, col, OpNotStartsWith, v)
}

func HasSuffixIf[C ColumnRef](ok bool, col C, v any) Chain { return guard(ok, col, OpEndsWith, v) }

func NotHasSuffixIf[C ColumnRef](ok bool, col C, v any) Chain {
	return guard(ok, col, OpNotEndsWith, v)
}

func guard[C ColumnRef](ok bool, col C, op Op, v any) Chain {
	if !ok {
		return Chain{}
	}
	return cond(col, op, v)
}
