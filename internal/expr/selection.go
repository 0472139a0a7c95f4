package expr

import "strings"

// Item is one projected column with its output alias.
type Item struct {
	Col   Ref
	Alias string
}

// Aggregate is an aggregate-function projection. Source names the binding
// the column is read from; it is empty when the column is a plain reference.
type Aggregate struct {
	Func   Func
	Source string
	Col    Ref
	Alias  string
}

// From returns a copy of a reading its column from source.
func (a Aggregate) From(source string) Aggregate {
	a.Source = source
	return a
}

// Validate enforces a non-blank alias and a column for every function except
// CNT.
func (a Aggregate) Validate() error {
	if !a.Func.Valid() {
		return &InvalidSelectionError{Column: a.Col.String(), Reason: "unknown aggregate function"}
	}
	if strings.TrimSpace(a.Alias) == "" {
		return &InvalidSelectionError{Column: a.Col.String(), Reason: a.Func.String() + " requires an alias"}
	}
	if a.Col.IsZero() && a.Func != FuncCount {
		return &InvalidSelectionError{Reason: a.Func.String() + " requires a column"}
	}
	return nil
}

// Count builds the zero-argument count projection, COUNT(*).
func Count(alias string) Aggregate {
	return Aggregate{Func: FuncCount, Alias: alias}
}

// CountOf counts the non-null values of col.
func CountOf[C ColumnRef](col C, alias string) Aggregate {
	return Aggregate{Func: FuncCount, Col: RefOf(col), Alias: alias}
}

func Sum[C ColumnRef](col C, alias string) Aggregate {
	return Aggregate{Func: FuncSum, Col: RefOf(col), Alias: alias}
}

func Avg[C ColumnRef](col C, alias string) Aggregate {
	return Aggregate{Func: FuncAvg, Col: RefOf(col), Alias: alias}
}

func Min[C ColumnRef](col C, alias string) Aggregate {
	return Aggregate{Func: FuncMin, Col: RefOf(col), Alias: alias}
}

func Max[C ColumnRef](col C, alias string) Aggregate {
	return Aggregate{Func: FuncMax, Col: RefOf(col), Alias: alias}
}

// Selection describes what a statement projects: an ordered list of
// columns, the whole entity under one alias, or nothing explicit. The zero
// value selects nothing, which renders as the dialect's whole-entity default.
type Selection struct {
	items []Item
	all   bool
	alias string
	aggs  []Aggregate
	err   error
}

// Select projects cols in order, each aliased by its column name.
func Select[C ColumnRef](cols ...C) Selection {
	var s Selection
	for _, c := range cols {
		ref := RefOf(c)
		s = s.add(Item{Col: ref})
	}
	return s
}

// SelectAs projects col under alias.
func SelectAs[C ColumnRef](col C, alias string) Selection {
	var s Selection
	if strings.TrimSpace(alias) == "" {
		s.err = &InvalidSelectionError{Column: RefOf(col).String(), Reason: "blank alias"}
		return s
	}
	return s.add(Item{Col: RefOf(col), Alias: alias})
}

// All projects the whole entity under alias.
func All(alias string) Selection {
	s := Selection{all: true, alias: alias}
	if strings.TrimSpace(alias) == "" {
		s.err = &InvalidSelectionError{Reason: "select all requires an alias"}
	}
	return s
}

// Nothing is the explicit empty selection.
func Nothing() Selection {
	return Selection{}
}

func (s Selection) add(it Item) Selection {
	if it.Col.IsZero() {
		s.err = firstErr(s.err, &InvalidSelectionError{Reason: "empty column"})
		return s
	}
	items := make([]Item, len(s.items), len(s.items)+1)
	copy(items, s.items)
	s.items = append(items, it)
	return s
}

// Also returns a selection projecting the items of s followed by those of
// others. A whole-entity marker on either side wins over columns; when both
// sides carry one, the first alias is kept.
func (s Selection) Also(others ...Selection) Selection {
	out := Selection{
		items: append([]Item(nil), s.items...),
		all:   s.all,
		alias: s.alias,
		aggs:  append([]Aggregate(nil), s.aggs...),
		err:   s.err,
	}
	for _, o := range others {
		out.err = firstErr(out.err, o.err)
		out.items = append(out.items, o.items...)
		out.aggs = append(out.aggs, o.aggs...)
		if o.all && !out.all {
			out.all, out.alias = true, o.alias
		}
	}
	return out
}

// Aggregate returns a copy of s with aggs appended in order.
func (s Selection) Aggregate(aggs ...Aggregate) Selection {
	out := s
	out.aggs = make([]Aggregate, 0, len(s.aggs)+len(aggs))
	out.aggs = append(out.aggs, s.aggs...)
	for _, a := range aggs {
		out.err = firstErr(out.err, a.Validate())
		out.aggs = append(out.aggs, a)
	}
	return out
}

// Items returns a copy of the projected columns.
func (s Selection) Items() []Item {
	return append([]Item(nil), s.items...)
}

// Whole reports whether the selection projects the whole entity, and under
// which alias.
func (s Selection) Whole() (string, bool) {
	return s.alias, s.all
}

// Aggregates returns a copy of the aggregate projections.
func (s Selection) Aggregates() []Aggregate {
	return append([]Aggregate(nil), s.aggs...)
}

// IsEmpty reports whether nothing is selected explicitly.
func (s Selection) IsEmpty() bool {
	return !s.all && len(s.items) == 0 && len(s.aggs) == 0
}

// Err returns the first construction error.
func (s Selection) Err() error { return s.err }
