package expr

import (
	"fmt"
	"strings"
)

// Op is a comparison or logical operator. The set is closed.
type Op int

const (
	OpAnd Op = iota + 1
	OpOr
	OpXor
	OpAssign
	OpEQ
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpIn
	OpNotIn
	OpIsNull
	OpNotNull
	OpContains
	OpStartsWith
	OpNotStartsWith
	OpEndsWith
	OpNotEndsWith
)

var opNames = [...]string{
	OpAnd:           "AND",
	OpOr:            "OR",
	OpXor:           "XOR",
	OpAssign:        "ASSIGN",
	OpEQ:            "EQ",
	OpNE:            "NE",
	OpLT:            "LT",
	OpLE:            "LE",
	OpGT:            "GT",
	OpGE:            "GE",
	OpIn:            "IN",
	OpNotIn:         "NOT_IN",
	OpIsNull:        "ISNULL",
	OpNotNull:       "NOT_NULL",
	OpContains:      "CONTAINS",
	OpStartsWith:    "STARTS_WITH",
	OpNotStartsWith: "NOT_STARTS_WITH",
	OpEndsWith:      "ENDS_WITH",
	OpNotEndsWith:   "NOT_ENDS_WITH",
}

// Ops returns every operator in declaration order.
func Ops() []Op {
	ops := make([]Op, 0, len(opNames)-1)
	for op := OpAnd; op <= OpNotEndsWith; op++ {
		ops = append(ops, op)
	}
	return ops
}

// Valid reports whether op is a member of the operator set.
func (op Op) Valid() bool {
	return op >= OpAnd && op <= OpNotEndsWith
}

// String returns the canonical upper-case operator name.
func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opNames[op]
}

// IsConnective reports whether op joins two terms (AND, OR, XOR).
func (op Op) IsConnective() bool {
	return op == OpAnd || op == OpOr || op == OpXor
}

// IsNullCheck reports whether op takes no value (ISNULL, NOT_NULL).
func (op Op) IsNullCheck() bool {
	return op == OpIsNull || op == OpNotNull
}

// IsMembership reports whether op requires a collection value (IN, NOT_IN).
func (op Op) IsMembership() bool {
	return op == OpIn || op == OpNotIn
}

// ParseOp parses an operator name. Matching is case-insensitive and accepts
// spaces in place of underscores ("starts with").
func ParseOp(s string) (Op, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	switch name {
	case "IS_NULL":
		return OpIsNull, nil
	case "NOTNULL", "IS_NOT_NULL":
		return OpNotNull, nil
	}
	for op := OpAnd; op <= OpNotEndsWith; op++ {
		if opNames[op] == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// Func is an aggregate function. The set is closed.
type Func int

const (
	FuncSum Func = iota + 1
	FuncAvg
	FuncMax
	FuncMin
	FuncCount
)

var funcNames = [...]string{
	FuncSum:   "SUM",
	FuncAvg:   "AVG",
	FuncMax:   "MAX",
	FuncMin:   "MIN",
	FuncCount: "CNT",
}

// Funcs returns every aggregate function in declaration order.
func Funcs() []Func {
	return []Func{FuncSum, FuncAvg, FuncMax, FuncMin, FuncCount}
}

// Valid reports whether fn is a member of the function set.
func (fn Func) Valid() bool {
	return fn >= FuncSum && fn <= FuncCount
}

func (fn Func) String() string {
	if !fn.Valid() {
		return fmt.Sprintf("Func(%d)", int(fn))
	}
	return funcNames[fn]
}

// ParseFunc parses an aggregate function name. "count" is accepted as an
// alias of CNT.
func ParseFunc(s string) (Func, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "COUNT" {
		return FuncCount, nil
	}
	for fn := FuncSum; fn <= FuncCount; fn++ {
		if funcNames[fn] == name {
			return fn, nil
		}
	}
	return 0, fmt.Errorf("unknown function %q", s)
}
