package condition

import (
	"fmt"
	"strings"
)

// Join operators between chain items.
const (
	And = "and"
	Or  = "or"
)

// Item is one chain entry. The first item of a chain has an empty Op.
type Item struct {
	Op   string
	Cond Condition
}

// Result is the outcome of rendering a chain.
type Result struct {
	// SQL is the predicate text; empty means match every row.
	SQL string

	// NoMatch is set when an AND-linked sub-query found no values, so no
	// row can satisfy the chain.
	NoMatch bool
}

// IsEmpty reports whether the result places no constraint on rows.
func (r Result) IsEmpty() bool {
	return !r.NoMatch && r.SQL == ""
}

// Chain is an ordered list of conditions joined by and/or.
// A Chain is not safe for concurrent mutation.
type Chain struct {
	items []Item
}

// NewChain returns a chain of the given conditions joined by and.
func NewChain(conds ...Condition) *Chain {
	c := &Chain{}
	for _, cond := range conds {
		c.And(cond)
	}
	return c
}

// And appends cond joined by and. On an empty chain the join is dropped.
func (c *Chain) And(cond Condition) *Chain {
	return c.add(And, cond)
}

// Or appends cond joined by or. On an empty chain the join is dropped.
func (c *Chain) Or(cond Condition) *Chain {
	return c.add(Or, cond)
}

func (c *Chain) add(op string, cond Condition) *Chain {
	if len(c.items) == 0 {
		op = ""
	}
	c.items = append(c.items, Item{Op: op, Cond: cond})
	return c
}

// Merge appends the items of other. The first merged item is joined by and;
// the rest keep their own joins. Merging an empty chain changes nothing.
func (c *Chain) Merge(other *Chain) *Chain {
	if other == nil {
		return c
	}
	for i, it := range other.Items() {
		op := it.Op
		if i == 0 {
			op = And
		}
		c.add(op, it.Cond)
	}
	return c
}

// Len returns the number of items.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns a copy of the chain items.
func (c *Chain) Items() []Item {
	if c == nil {
		return nil
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Render joins the rendered fragments in order. The first fragment that
// renders carries no join. An empty fragment makes the result NoMatch when
// it is AND-linked and is skipped when it is OR-linked; an empty first item
// takes the join of the item after it.
func (c *Chain) Render() (Result, error) {
	if c.Len() == 0 {
		return Result{}, nil
	}

	var b strings.Builder
	for i, it := range c.items {
		f, err := it.Cond.Render()
		if err != nil {
			return Result{}, err
		}
		if f.Empty {
			if linkOf(c.items, i) == Or {
				continue
			}
			return Result{NoMatch: true}, nil
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
			b.WriteString(it.Op)
			b.WriteByte(' ')
		}
		b.WriteString(f.SQL)
	}
	return Result{SQL: b.String()}, nil
}

// linkOf returns the join that ties item i to the rest of the chain.
func linkOf(items []Item, i int) string {
	if i > 0 {
		return items[i].Op
	}
	if len(items) > 1 {
		return items[1].Op
	}
	return And
}

// String returns a diagnostic form of the chain. Sub-queries are described,
// not evaluated.
func (c *Chain) String() string {
	if c.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, it := range c.items {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(it.Op)
			b.WriteByte(' ')
		}
		if s, ok := it.Cond.(fmt.Stringer); ok {
			b.WriteString(s.String())
		} else {
			fmt.Fprintf(&b, "%v", it.Cond)
		}
	}
	return b.String()
}
