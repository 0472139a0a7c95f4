// Package nebula implements the Nebula Graph dialect (nGQL 3.x).
//
// Properties are qualified by tag or edge type (player.name, follow.degree);
// in traversals the destination and source vertices use the $$ and $^
// prefixes. Aggregates are computed in a piped YIELD stage that reads the
// first stage's output through $-, and so are ordering keys. A vertex query
// by id alone is a FETCH; any other vertex query is a LOOKUP.
//
// Importing the package registers the dialect as "nebula" version 3.6.
package nebula

import (
	"strings"

	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/value"
)

const (
	Name    = "nebula"
	Version = "3.6"
)

func init() {
	dialect.MustRegister(Descriptor())
}

// Templates are the statement skeletons of the dialect.
var Templates = map[string]string{
	"vertex_query":     "LOOKUP ON {label}{where} YIELD {return}{aggregate}{order}{page}",
	"vertex_ids_query": "FETCH PROP ON {label} {ids} YIELD {return}{aggregate}{order}{page}",
	"edge_query":       "LOOKUP ON {label}{where} YIELD {return}{aggregate}{order}{page}",
	"label":            "{name}",
	"where":            " WHERE {predicate}",
	"aggregate_stage":  " | YIELD {aggregates}",
	"order":            " | ORDER BY {keys}",
	"page":             " | LIMIT {skip}, {limit}",
	"traversal":        "{steps}{page}",
	"step":             "GO {step_range} FROM {from} OVER {edge_types}{direction}{where} YIELD {yield}{aggregate}{order}{page}",
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
			Quote:    '"',
			Null:     "NULL",
			ListSep:  ", ",
			DateTime: "datetime",
		},
	}
}

var operators = map[expr.Op]dialect.OperatorFunc{
	expr.OpAssign:        dialect.Infix("="),
	expr.OpEQ:            dialect.Infix("=="),
	expr.OpNE:            dialect.Infix("!="),
	expr.OpLT:            dialect.Infix("<"),
	expr.OpLE:            dialect.Infix("<="),
	expr.OpGT:            dialect.Infix(">"),
	expr.OpGE:            dialect.Infix(">="),
	expr.OpIn:            dialect.Infix("IN"),
	expr.OpNotIn:         dialect.Infix("NOT IN"),
	expr.OpIsNull:        dialect.Postfix("IS NULL"),
	expr.OpNotNull:       dialect.Postfix("IS NOT NULL"),
	expr.OpContains:      dialect.Infix("CONTAINS"),
	expr.OpStartsWith:    dialect.Infix("STARTS WITH"),
	expr.OpNotStartsWith: dialect.Infix("NOT STARTS WITH"),
	expr.OpEndsWith:      dialect.Infix("ENDS WITH"),
	expr.OpNotEndsWith:   dialect.Infix("NOT ENDS WITH"),
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

// subject is the expression denoting the entity of a scope.
func subject(k dialect.ScopeKind) string {
	switch k {
	case dialect.Edge:
		return "edge"
	case dialect.Destination:
		return "$$"
	case dialect.Source:
		return "$^"
	}
	return "vertex"
}

// prefix is the qualifier placed before tag.column.
func prefix(k dialect.ScopeKind) string {
	switch k {
	case dialect.Destination:
		return "$$."
	case dialect.Source:
		return "$^."
	}
	return ""
}

// Reference qualifies c by the scope label, falling back to the label that
// owns a typed property. Without either, properties(...) is used.
func (renderer) Reference(s dialect.Scope, c expr.Column) (string, error) {
	subj := subject(s.Kind)
	if c.Reserved() {
		return builtin(s, subj, c)
	}
	label := s.Label
	if label == "" {
		label = c.Owner
	}
	if label == "" {
		return "properties(" + subj + ")." + quote(c.Name), nil
	}
	return prefix(s.Kind) + quote(label) + "." + quote(c.Name), nil
}

func builtin(s dialect.Scope, subj string, c expr.Column) (string, error) {
	edge := s.Kind == dialect.Edge
	switch c.Name {
	case expr.ColumnID:
		if edge {
			break
		}
		return "id(" + subj + ")", nil
	case expr.ColumnLabel:
		if edge {
			return "type(edge)", nil
		}
		return "tags(" + subj + ")", nil
	case expr.ColumnSrc:
		if edge {
			return "src(edge)", nil
		}
	case expr.ColumnDst:
		if edge {
			return "dst(edge)", nil
		}
	case expr.ColumnRank:
		if edge {
			return "rank(edge)", nil
		}
	}
	reason := "available only on edges"
	if edge {
		reason = "edges are identified by src, dst and rank"
	}
	return "", &dialect.ReferenceError{Dialect: Name, Scope: s.Kind, Column: c.Name, Reason: reason}
}

func quote(name string) string {
	if value.IsIdentifier(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

func (renderer) Project(ref, alias string) string {
	return ref + " AS " + quote(alias)
}

func (renderer) SelectAll(s dialect.Scope, alias string) string {
	return subject(s.Kind) + " AS " + quote(alias)
}

func (renderer) FieldSeparator() string { return "," }

func (renderer) DefaultAlias(k dialect.ScopeKind) string {
	switch k {
	case dialect.Edge:
		return "e"
	case dialect.Source:
		return "src"
	}
	return "v"
}

func (renderer) AggregateStage() dialect.AggregateStage { return dialect.StagePiped }

// OrderReference refers to the column yielded by the previous stage.
func (renderer) OrderReference(_ dialect.Scope, _ expr.Column, output string) (string, error) {
	return "$-." + quote(output), nil
}

func (renderer) Call(fn expr.Func, arg string) (string, bool) {
	name, ok := functions[fn]
	if !ok {
		return "", false
	}
	return name + "(" + arg + ")", true
}

// Argument reads the column from the first stage's output, under the name it
// was fed as or else its default alias.
func (renderer) Argument(_ string, _ dialect.Scope, c expr.Column, input string) (string, error) {
	if input == "" {
		input = c.DefaultAlias()
	}
	return "$-." + quote(input), nil
}
