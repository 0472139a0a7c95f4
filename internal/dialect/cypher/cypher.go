// Package cypher implements the Cypher dialect (Neo4j style).
//
// Entities are bound to variables: properties render as n.name, reserved
// columns as built-in functions (id(n), labels(n), type(e), startNode(e)).
// Aggregates are inline in RETURN and rely on implicit grouping.
//
// Importing the package registers the dialect as "cypher" version 5.
package cypher

import (
	"strings"

	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/value"
)

const (
	Name    = "cypher"
	Version = "5"
)

func init() {
	dialect.MustRegister(Descriptor())
}

// Templates are the statement skeletons of the dialect.
var Templates = map[string]string{
	"vertex_query": "MATCH ({binding}{label?}){where} RETURN {return}{order}{page}",
	"edge_query":   "MATCH ()-[{binding}{label?}]->(){where} RETURN {return}{order}{page}",
	"label":        ":{name}",
	"where":        " WHERE {predicate}",
	"order":        " ORDER BY {keys}",
	"page":         " SKIP {skip} LIMIT {limit}",
	"traversal":    "{steps} RETURN {return}{order}{page}",
	"segment":      "MATCH {pattern}{where}",
	"with":         "WITH {vars}{order}{page}",
	"node":         "({binding}{label?})",
	"step_out":     "-[{binding}{edge_types}{step_range}]->{node}",
	"step_in":      "<-[{binding}{edge_types}{step_range}]-{node}",
	"step_both":    "-[{binding}{edge_types}{step_range}]-{node}",
}

// Descriptor returns a fresh descriptor for the dialect.
func Descriptor() dialect.Descriptor {
	tpl := make(map[string]string, len(Templates))
	for k, v := range Templates {
		tpl[k] = v
	}
	r := renderer{}
	return dialect.Descriptor{
		Name:      Name,
		Version:   Version,
		Predicate: r,
		Selection: r,
		Function:  r,
		Traversal: traversalRenderer{},
		Templates: tpl,
		Values: value.Style{
			Quote:    '\'',
			Null:     "null",
			ListSep:  ", ",
			DateTime: "datetime",
		},
	}
}

var operators = map[expr.Op]dialect.OperatorFunc{
	expr.OpEQ:         dialect.Infix("="),
	expr.OpNE:         dialect.Infix("<>"),
	expr.OpLT:         dialect.Infix("<"),
	expr.OpLE:         dialect.Infix("<="),
	expr.OpGT:         dialect.Infix(">"),
	expr.OpGE:         dialect.Infix(">="),
	expr.OpIn:         dialect.Infix("IN"),
	expr.OpNotIn:      negated("IN"),
	expr.OpIsNull:     dialect.Postfix("IS NULL"),
	expr.OpNotNull:    dialect.Postfix("IS NOT NULL"),
	expr.OpContains:   dialect.Infix("CONTAINS"),
	expr.OpStartsWith: dialect.Infix("STARTS WITH"),
	expr.OpEndsWith:   dialect.Infix("ENDS WITH"),

	expr.OpNotStartsWith: negated("STARTS WITH"),
	expr.OpNotEndsWith:   negated("ENDS WITH"),
}

func negated(tok string) dialect.OperatorFunc {
	return func(ref, v string) string { return "NOT " + ref + " " + tok + " " + v }
}

var connectives = map[expr.Op]string{
	expr.OpAnd: "AND",
	expr.OpOr:  "OR",
	expr.OpXor: "XOR",
}

var functions = map[expr.Func]string{
	expr.FuncSum:   "SUM",
	expr.FuncAvg:   "AVG",
	expr.FuncMax:   "MAX",
	expr.FuncMin:   "MIN",
	expr.FuncCount: "COUNT",
}

type renderer struct{}

func (renderer) Operator(op expr.Op) (dialect.OperatorFunc, bool) {
	fn, ok := operators[op]
	return fn, ok
}

func (renderer) Connective(op expr.Op) (string, bool) {
	tok, ok := connectives[op]
	return tok, ok
}

// Reference renders c against the variable bound in s. A variable-length
// edge is a list, so its columns are mapped over its elements.
func (r renderer) Reference(s dialect.Scope, c expr.Column) (string, error) {
	if s.Multi {
		inner := s
		inner.Multi = false
		inner.Binding = "r"
		ref, err := r.Reference(inner, c)
		if err != nil {
			return "", err
		}
		return "[r IN " + s.Binding + " | " + ref + "]", nil
	}

	b := s.Binding
	if c.Reserved() {
		return builtin(s, c)
	}
	if b == "" {
		return quote(c.Name), nil
	}
	return b + "." + quote(c.Name), nil
}

func builtin(s dialect.Scope, c expr.Column) (string, error) {
	b := s.Binding
	if b == "" {
		return "", &dialect.ReferenceError{Dialect: Name, Scope: s.Kind, Column: c.Name, Reason: "no variable bound"}
	}
	switch c.Name {
	case expr.ColumnID:
		return "id(" + b + ")", nil
	case expr.ColumnLabel:
		if s.Kind == dialect.Edge {
			return "type(" + b + ")", nil
		}
		return "labels(" + b + ")", nil
	case expr.ColumnSrc:
		if s.Kind == dialect.Edge {
			return "id(startNode(" + b + "))", nil
		}
	case expr.ColumnDst:
		if s.Kind == dialect.Edge {
			return "id(endNode(" + b + "))", nil
		}
	case expr.ColumnRank:
		return "", &dialect.ReferenceError{Dialect: Name, Scope: s.Kind, Column: c.Name, Reason: "edges have no rank"}
	}
	return "", &dialect.ReferenceError{Dialect: Name, Scope: s.Kind, Column: c.Name, Reason: "endpoints exist only on edges"}
}

// quote wraps names that are not plain identifiers in backticks.
func quote(name string) string {
	if value.IsIdentifier(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (renderer) Project(ref, alias string) string {
	return ref + " AS " + quote(alias)
}

func (renderer) SelectAll(s dialect.Scope, alias string) string {
	if alias == "" || alias == s.Binding {
		return s.Binding
	}
	return s.Binding + " AS " + quote(alias)
}

func (renderer) FieldSeparator() string { return ", " }

func (renderer) DefaultAlias(k dialect.ScopeKind) string {
	if k == dialect.Edge {
		return "e"
	}
	return "n"
}

func (renderer) AggregateStage() dialect.AggregateStage { return dialect.StageInline }

func (r renderer) OrderReference(s dialect.Scope, c expr.Column, _ string) (string, error) {
	return r.Reference(s, c)
}

func (renderer) Call(fn expr.Func, arg string) (string, bool) {
	name, ok := functions[fn]
	if !ok {
		return "", false
	}
	return name + "(" + arg + ")", true
}

// Argument reads c from source when one is named, otherwise from the scope
// variable.
func (r renderer) Argument(source string, s dialect.Scope, c expr.Column, _ string) (string, error) {
	if source != "" {
		s.Binding = source
		s.Multi = false
	}
	return r.Reference(s, c)
}
