package earley

import (
	"fmt"
	"strings"
)

// Column is the set of items valid after consuming Index tokens.
type Column struct {
	index int
	token string
	items []Item
	set   map[Item]struct{}
}

func newColumn(index int, token string) *Column {
	return &Column{
		index: index,
		token: token,
		set:   make(map[Item]struct{}),
	}
}

func (c *Column) reset(index int, token string) {
	c.index = index
	c.token = token
	c.items = c.items[:0]
	clear(c.set)
}

// Add appends item unless the column already holds it. It reports whether the
// item was new.
func (c *Column) Add(item Item) bool {
	if _, have := c.set[item]; have {
		return false
	}
	c.set[item] = struct{}{}
	c.items = append(c.items, item)
	return true
}

func (c *Column) Has(item Item) bool {
	_, have := c.set[item]
	return have
}

func (c *Column) Index() int {
	return c.index
}

// Token is the token this column follows; empty for column 0.
func (c *Column) Token() string {
	return c.token
}

// Items returns the column's items in insertion order. The slice must not be
// modified.
func (c *Column) Items() []Item {
	return c.items
}

func (c *Column) Len() int {
	return len(c.items)
}

func (c *Column) String() string {
	var sb strings.Builder
	rule := strings.Repeat("-", 30)
	fmt.Fprintf(&sb, "%s\nColumn %d for token `%s`:\n%s\n", rule, c.index, c.token, rule)
	for _, it := range c.items {
		sb.WriteString(it.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Chart is the ordered sequence of columns for one token stream.
//
// Columns removed by truncation keep their storage and are reused by later
// appends, so a *Column obtained from the chart is only valid until the
// parser next changes length.
type Chart struct {
	columns []*Column
}

func (c *Chart) Len() int {
	return len(c.columns)
}

func (c *Chart) Column(i int) *Column {
	return c.columns[i]
}

// Columns returns the live columns. The slice must not be modified.
func (c *Chart) Columns() []*Column {
	return c.columns
}

func (c *Chart) last() *Column {
	return c.columns[len(c.columns)-1]
}

func (c *Chart) add(token string) *Column {
	n := len(c.columns)
	if n < cap(c.columns) {
		c.columns = c.columns[:n+1]
		if col := c.columns[n]; col != nil {
			col.reset(n, token)
			return col
		}
	} else {
		c.columns = append(c.columns, nil)
	}
	col := newColumn(n, token)
	c.columns[n] = col
	return col
}

// truncate drops every column from index n on.
func (c *Chart) truncate(n int) {
	if n < len(c.columns) {
		c.columns = c.columns[:n]
	}
}

func (c *Chart) String() string {
	cols := make([]string, len(c.columns))
	for i, col := range c.columns {
		cols[i] = col.String()
	}
	return "Chart\n\n" + strings.Join(cols, "\n")
}
