// Package querydoc decodes YAML query documents into statements.
//
// A file holds one or more documents separated by "---":
//
//	name: adults
//	kind: vertex
//	label: player
//	where:
//	  - {col: age, op: GT, value: 30, next: OR}
//	  - group:
//	      - {col: name, op: STARTS_WITH, value: Tim}
//	      - {col: "@id", op: IN, value: [player100]}
//	select: [name, {col: age, as: years}]
//	order: [{col: age, desc: true}]
//	page: {skip: 0, limit: 10}
//	---
//	kind: traversal
//	from: [player100]
//	steps:
//	  - direction: out
//	    edges: [follow]
//	    dst: {label: player, select: [name]}
//	paginate: {skip: 0, limit: 5}
package querydoc

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Statement kinds.
const (
	KindVertex    = "vertex"
	KindEdge      = "edge"
	KindTraversal = "traversal"
)

// Document is one decoded query document.
type Document struct {
	Name    string `yaml:"name,omitempty"`
	Kind    string `yaml:"kind"`
	Dialect string `yaml:"dialect,omitempty"`
	Version string `yaml:"version,omitempty"`

	// Vertex and edge statements.
	Label string `yaml:"label,omitempty"`
	Alias string `yaml:"alias,omitempty"`
	IDs   []any  `yaml:"ids,omitempty"`

	Projection `yaml:",inline"`

	// Traversals.
	From     []any  `yaml:"from,omitempty"`
	Steps    []Step `yaml:"steps,omitempty"`
	Paginate *Page  `yaml:"paginate,omitempty"`

	index int
}

// Index is the zero-based position of the document in its file.
func (d *Document) Index() int { return d.index }

// Projection is the filter and output part shared by statements and
// traversal sub-queries.
type Projection struct {
	Where      []Term      `yaml:"where,omitempty"`
	Select     []Item      `yaml:"select,omitempty"`
	All        string      `yaml:"all,omitempty"`
	None       bool        `yaml:"none,omitempty"`
	Aggregates []Aggregate `yaml:"aggregates,omitempty"`
	Order      []Order     `yaml:"order,omitempty"`
	Page       *Page       `yaml:"page,omitempty"`
}

// Term is a condition or a parenthesized group. Next is the connective to
// the following term and defaults to AND.
type Term struct {
	Col   string `yaml:"col,omitempty"`
	Op    string `yaml:"op,omitempty"`
	Value any    `yaml:"value,omitempty"`
	Group []Term `yaml:"group,omitempty"`
	Next  string `yaml:"next,omitempty"`
}

// Item is a projected column. It decodes from a bare column name or a
// {col, as} mapping.
type Item struct {
	Col string `yaml:"col"`
	As  string `yaml:"as,omitempty"`
}

// UnmarshalYAML accepts the scalar shorthand.
func (it *Item) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		it.Col = node.Value
		return nil
	}
	type plain Item
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*it = Item(p)
	return nil
}

// Aggregate is an aggregate projection. Col may be empty for CNT.
type Aggregate struct {
	Func string `yaml:"func"`
	Col  string `yaml:"col,omitempty"`
	As   string `yaml:"as"`
	From string `yaml:"from,omitempty"`
}

// Order is one ordering key.
type Order struct {
	Col  string `yaml:"col"`
	Desc bool   `yaml:"desc,omitempty"`
}

// Page is a skip/limit pair.
type Page struct {
	Skip  int `yaml:"skip"`
	Limit int `yaml:"limit"`
}

// Step is one traversal hop. Min and Max default to 1; a missing Max equals
// Min.
type Step struct {
	Direction string   `yaml:"direction,omitempty"`
	Min       *int     `yaml:"min,omitempty"`
	Max       *int     `yaml:"max,omitempty"`
	Edges     []string `yaml:"edges,omitempty"`
	Dst       *Sub     `yaml:"dst,omitempty"`
	Src       *Sub     `yaml:"src,omitempty"`
	Edge      *Sub     `yaml:"edge,omitempty"`
}

// Sub is a sub-query on one part of a hop.
type Sub struct {
	Alias string `yaml:"alias,omitempty"`
	Label string `yaml:"label,omitempty"`

	Projection `yaml:",inline"`
}

// DecodeError reports a document that cannot be decoded or built.
type DecodeError struct {
	Doc    int
	Name   string
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	doc := fmt.Sprintf("document %d", e.Doc)
	if e.Name != "" {
		doc += " (" + e.Name + ")"
	}
	msg := e.Reason
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Field == "" {
		return doc + ": " + msg
	}
	return doc + ": " + e.Field + ": " + msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
