package format

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/dhamidi/earley/earley"
)

// WriteChart renders every item of chart as a table row. The column index
// and token are only printed on the first row of each column.
func WriteChart(w io.Writer, chart *earley.Chart) {
	var data [][]string
	for _, col := range chart.Columns() {
		index := strconv.Itoa(col.Index())
		token := strconv.Quote(col.Token())
		if col.Index() == 0 {
			token = ""
		}
		for _, it := range col.Items() {
			data = append(data, []string{index, token, it.Dotted(), strconv.Itoa(it.Origin())})
			index, token = "", ""
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Token", "Item", "Origin"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
