package querydoc

import (
	"fmt"

	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/query"
	"github.com/roach88/graphq/internal/traversal"
)

// Statement builds the statement the document describes: a
// *query.VertexQuery, a *query.EdgeQuery or a traversal.Planner.
func (d *Document) Statement() (any, error) {
	switch d.Kind {
	case KindVertex:
		q := query.Vertex(d.Label).As(d.Alias).IDs(d.IDs...)
		where, sel, err := d.Projection.build(d, "")
		if err != nil {
			return nil, err
		}
		q.Where(where).Select(sel).OrderBy(orders(d.Order)...)
		if d.Page != nil {
			q.Page(d.Page.Skip, d.Page.Limit)
		}
		return q, nil
	case KindEdge:
		q := query.Edge(d.Label).As(d.Alias)
		where, sel, err := d.Projection.build(d, "")
		if err != nil {
			return nil, err
		}
		q.Where(where).Select(sel).OrderBy(orders(d.Order)...)
		if d.Page != nil {
			q.Page(d.Page.Skip, d.Page.Limit)
		}
		return q, nil
	case KindTraversal:
		return d.traversal()
	}
	return nil, d.fail("kind", fmt.Sprintf("unknown kind %q", d.Kind), nil)
}

func (d *Document) traversal() (traversal.Planner, error) {
	g := traversal.From(d.From...)
	for i, s := range d.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		dir, err := traversal.ParseDirection(s.Direction)
		if err != nil {
			return nil, d.fail(field+".direction", "", err)
		}
		lo, hi := 1, 1
		if s.Min != nil {
			lo, hi = *s.Min, *s.Min
		}
		if s.Max != nil {
			hi = *s.Max
		}

		subs := []struct {
			name string
			sub  *Sub
			add  func(*traversal.HopQuery, string, string, func(*traversal.Sub)) *traversal.HopQuery
		}{
			{"edge", s.Edge, (*traversal.HopQuery).Edge},
			{"src", s.Src, (*traversal.HopQuery).InV},
			{"dst", s.Dst, (*traversal.HopQuery).OutV},
		}
		var configure []func(*traversal.HopQuery)
		for _, ss := range subs {
			if ss.sub == nil {
				continue
			}
			sub, add := ss.sub, ss.add
			where, sel, err := sub.Projection.build(d, field+"."+ss.name)
			if err != nil {
				return nil, err
			}
			configure = append(configure, func(h *traversal.HopQuery) {
				add(h, sub.Alias, sub.Label, func(ts *traversal.Sub) {
					sub.apply(ts, where, sel)
				})
			})
		}
		g.AddStep(dir, lo, hi, s.Edges, configure...)
	}
	if d.Paginate != nil {
		return g.Paginate(d.Paginate.Skip, d.Paginate.Limit), nil
	}
	return g, nil
}

func (s *Sub) apply(ts *traversal.Sub, where expr.Chain, sel expr.Selection) {
	ts.Where(where)
	switch {
	case s.None:
		ts.NoneSelect()
	case !sel.IsEmpty():
		ts.Select(sel)
	}
	ts.OrderBy(orders(s.Order)...)
	if s.Page != nil {
		ts.Page(s.Page.Skip, s.Page.Limit)
	}
}

// build converts the filter and selection parts. prefix locates the
// projection in the document for error messages.
func (p Projection) build(d *Document, prefix string) (expr.Chain, expr.Selection, error) {
	where, err := chain(p.Where)
	if err != nil {
		return expr.Chain{}, expr.Selection{}, d.fail(join(prefix, "where"), "", err)
	}
	if p.None && (len(p.Select) > 0 || p.All != "" || len(p.Aggregates) > 0) {
		return expr.Chain{}, expr.Selection{}, d.fail(join(prefix, "none"), "none excludes select, all and aggregates", nil)
	}

	var sel expr.Selection
	if p.All != "" {
		sel = sel.Also(expr.All(p.All))
	}
	for _, it := range p.Select {
		if it.As == "" {
			sel = sel.Also(expr.Select(it.Col))
			continue
		}
		sel = sel.Also(expr.SelectAs(it.Col, it.As))
	}
	for i, a := range p.Aggregates {
		agg, err := aggregate(a)
		if err != nil {
			return expr.Chain{}, expr.Selection{}, d.fail(fmt.Sprintf("%s[%d]", join(prefix, "aggregates"), i), "", err)
		}
		sel = sel.Aggregate(agg)
	}
	if err := sel.Err(); err != nil {
		return expr.Chain{}, expr.Selection{}, d.fail(join(prefix, "select"), "", err)
	}
	return where, sel, nil
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}

// chain folds terms left to right; each term's Next joins it to the one
// after it.
func chain(terms []Term) (expr.Chain, error) {
	var out expr.Chain
	next := expr.OpAnd
	for i, t := range terms {
		var c expr.Chain
		switch {
		case len(t.Group) > 0:
			if t.Col != "" || t.Op != "" || t.Value != nil {
				return expr.Chain{}, fmt.Errorf("term %d: a group has no col, op or value", i)
			}
			g, err := chain(t.Group)
			if err != nil {
				return expr.Chain{}, fmt.Errorf("term %d: %w", i, err)
			}
			c = expr.Group(g)
		default:
			op, err := expr.ParseOp(t.Op)
			if err != nil {
				return expr.Chain{}, fmt.Errorf("term %d: %w", i, err)
			}
			c = expr.Where(expr.Cond{Col: expr.RefOf(t.Col), Op: op, Value: t.Value})
		}

		if i == 0 {
			out = c
		} else {
			out = out.Join(next, c)
		}

		next = expr.OpAnd
		if t.Next != "" {
			op, err := expr.ParseOp(t.Next)
			if err != nil {
				return expr.Chain{}, fmt.Errorf("term %d: %w", i, err)
			}
			if !op.IsConnective() {
				return expr.Chain{}, fmt.Errorf("term %d: next must be AND, OR or XOR, got %s", i, op)
			}
			next = op
		}
	}
	if err := out.Err(); err != nil {
		return expr.Chain{}, err
	}
	return out, nil
}

func aggregate(a Aggregate) (expr.Aggregate, error) {
	fn, err := expr.ParseFunc(a.Func)
	if err != nil {
		return expr.Aggregate{}, err
	}
	var agg expr.Aggregate
	switch fn {
	case expr.FuncCount:
		if a.Col == "" {
			agg = expr.Count(a.As)
		} else {
			agg = expr.CountOf(a.Col, a.As)
		}
	case expr.FuncSum:
		agg = expr.Sum(a.Col, a.As)
	case expr.FuncAvg:
		agg = expr.Avg(a.Col, a.As)
	case expr.FuncMax:
		agg = expr.Max(a.Col, a.As)
	case expr.FuncMin:
		agg = expr.Min(a.Col, a.As)
	}
	if a.From != "" {
		agg = agg.From(a.From)
	}
	return agg, agg.Validate()
}

func orders(keys []Order) []expr.Order {
	out := make([]expr.Order, 0, len(keys))
	for _, k := range keys {
		if k.Desc {
			out = append(out, expr.Desc(k.Col))
			continue
		}
		out = append(out, expr.Asc(k.Col))
	}
	return out
}
