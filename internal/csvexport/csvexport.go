// Package csvexport renders list exports as RFC 4180 CSV.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"backoffice/internal/model"
)

// Table is a header row plus data rows.
type Table struct {
	Filename string
	Headers  []string
	Rows     [][]string
}

// Write writes headers followed by rows to w.
func Write(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes t to w.
func WriteTable(w io.Writer, t Table) error {
	return Write(w, t.Headers, t.Rows)
}

// Money formats cents as a decimal amount, e.g. 1999 -> "19.99".
func Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(model.DateLayout)
}

func lastLogin(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func Products(items []model.Product) Table {
	t := Table{
		Filename: "products_data.csv",
		Headers:  []string{"ID", "Name", "Category", "Price", "Stock", "Status"},
		Rows:     make([][]string, 0, len(items)),
	}
	for _, p := range items {
		t.Rows = append(t.Rows, []string{
			p.ID, p.Name, p.CategoryName, Money(p.PriceCents), strconv.Itoa(p.Stock), p.Status,
		})
	}
	return t
}

func Orders(items []model.Order) Table {
	t := Table{
		Filename: "orders_data.csv",
		Headers:  []string{"ID", "Customer", "Product", "Amount", "Status", "Date"},
		Rows:     make([][]string, 0, len(items)),
	}
	for _, o := range items {
		t.Rows = append(t.Rows, []string{
			o.ID, o.Customer, o.Product, Money(o.AmountCents), o.Status, date(o.Date),
		})
	}
	return t
}

func Customers(items []model.Customer) Table {
	t := Table{
		Filename: "customer_data.csv",
		Headers:  []string{"Name", "Email", "Phone", "Status", "Joined", "Last Login", "Orders"},
		Rows:     make([][]string, 0, len(items)),
	}
	for _, c := range items {
		t.Rows = append(t.Rows, []string{
			c.Name, c.Email, c.Phone, c.Status, date(c.Joined), lastLogin(c.LastLoginAt), strconv.Itoa(c.OrderCount),
		})
	}
	return t
}

func Transactions(items []model.Transaction) Table {
	t := Table{
		Filename: "transactions_data.csv",
		Headers:  []string{"ID", "Customer", "Amount", "Status", "Date"},
		Rows:     make([][]string, 0, len(items)),
	}
	for _, tx := range items {
		t.Rows = append(t.Rows, []string{
			tx.ID, tx.Customer, Money(tx.AmountCents), tx.Status, date(tx.Date),
		})
	}
	return t
}

func Users(items []model.User) Table {
	t := Table{
		Filename: "users_data.csv",
		Headers:  []string{"Name", "Email", "Role", "Status", "Last Login"},
		Rows:     make([][]string, 0, len(items)),
	}
	for _, u := range items {
		t.Rows = append(t.Rows, []string{u.Name, u.Email, u.RoleName, u.Status, lastLogin(u.LastLoginAt)})
	}
	return t
}
