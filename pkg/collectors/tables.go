package collectors

import (
	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// Table summarizes one table's shape.
type Table struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
	Line    int `json:"line"`
	Section int `json:"section"`
}

// Tables counts rows and columns per table. Cell content is left to the
// generic text path; the shape is what downstream consumers ask for.
type Tables struct {
	Base
	items []Table

	inTable bool
	rowCols int
}

// NewTables creates the tables collector.
func NewTables() *Tables {
	return &Tables{
		Base: NewBase("tables", warehouse.Interest{
			Types: []string{"table_open", "table_close", "tr_open", "tr_close", "th_open", "td_open"},
		}),
	}
}

// OnToken folds the table_* token sequence into per-table shape counts.
func (c *Tables) OnToken(_ int, v token.View, w *warehouse.Warehouse) error {
	switch v.Type {
	case "table_open":
		line, section := locate(v, w)
		c.items = append(c.items, Table{Line: line, Section: section})
		c.inTable = true

	case "table_close":
		c.inTable = false

	case "tr_open":
		if c.inTable && len(c.items) > 0 {
			c.items[len(c.items)-1].Rows++
			c.rowCols = 0
		}

	case "th_open", "td_open":
		if c.inTable && len(c.items) > 0 {
			c.rowCols++
			if cur := &c.items[len(c.items)-1]; c.rowCols > cur.Columns {
				cur.Columns = c.rowCols
			}
		}
	}
	return nil
}

// Finalize returns the table shapes.
func (c *Tables) Finalize(*warehouse.Warehouse) (any, error) {
	return c.items, nil
}
