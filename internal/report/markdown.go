// Package report renders sales summaries for sharing outside the API.
package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"backoffice/internal/csvexport"
	"backoffice/internal/model"
)

// WriteMarkdown renders r as a Markdown document to w.
func WriteMarkdown(w io.Writer, r *model.SalesReport) error {
	md := markdown.NewMarkdown(w)

	md.H1("Sales Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"From", orAll(r.From)},
			{"To", orAll(r.To)},
			{"Orders", strconv.Itoa(r.Orders)},
			{"Revenue", csvexport.Money(r.RevenueCents)},
		},
	})
	md.PlainText("")

	writeSales(md, r.Sales)
	writeTopProducts(md, r.TopProducts)
	writeDistribution(md, r.CustomerDistribution)

	return md.Build()
}

func orAll(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeSales(md *markdown.Markdown, sales []model.DailySales) {
	md.H2("Sales by Day")
	md.PlainText("")
	if len(sales) == 0 {
		md.PlainText("No orders in this period.")
		md.PlainText("")
		return
	}
	rows := make([][]string, 0, len(sales))
	for _, d := range sales {
		rows = append(rows, []string{d.Date, strconv.Itoa(d.Orders), csvexport.Money(d.AmountCents)})
	}
	md.Table(markdown.TableSet{Header: []string{"Date", "Orders", "Amount"}, Rows: rows})
	md.PlainText("")
}

func writeTopProducts(md *markdown.Markdown, top []model.ProductSales) {
	md.H2("Top Products")
	md.PlainText("")
	if len(top) == 0 {
		md.PlainText("No products sold in this period.")
		md.PlainText("")
		return
	}
	rows := make([][]string, 0, len(top))
	for i, p := range top {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.Name, strconv.Itoa(p.Orders)})
	}
	md.Table(markdown.TableSet{Header: []string{"Rank", "Product", "Orders"}, Rows: rows})
	md.PlainText("")
}

// writeDistribution adds a mermaid pie chart when any customer exists.
func writeDistribution(md *markdown.Markdown, dist []model.LabelCount) {
	md.H2("Customer Distribution")
	md.PlainText("")

	total := 0
	rows := make([][]string, 0, len(dist))
	for _, lc := range dist {
		total += lc.Count
		rows = append(rows, []string{lc.Label, strconv.Itoa(lc.Count)})
	}
	md.Table(markdown.TableSet{Header: []string{"Status", "Customers"}, Rows: rows})
	md.PlainText("")
	if total == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Customers by Status"),
		piechart.WithShowData(true),
	)
	for _, lc := range dist {
		if lc.Count > 0 {
			chart.LabelAndIntValue(lc.Label, uint64(lc.Count))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}
