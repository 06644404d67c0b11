// Package printing renders customer bills and kitchen order tickets and
// hands them to printers. It only ever consumes a finalized snapshot of
// an order plus settings: it is invoked after the order transaction has
// committed, and a failure here is reported to the operator but never
// unwinds order state.
package printing

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/easybill/easybill/internal/model"
)

// BillData is the snapshot a customer receipt is rendered from.
type BillData struct {
	HotelName    string
	HotelAddress string
	Footer       string
	TokenNumber  int
	BillNumber   int
	TableName    string
	CreatedAt    string
	Items        []model.OrderItem
	Total        decimal.Decimal
	Payment      string
}

// KOTData is the snapshot a kitchen ticket is rendered from: items and
// quantities only, no prices.
type KOTData struct {
	TokenNumber int
	TableName   string
	PrintedAt   string
	Items       []model.CartItem
}

var billTmpl = template.Must(template.New("bill").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: monospace; width: 80mm; margin: 0; }
h1 { font-size: 14px; text-align: center; margin: 4px 0; }
p.center { text-align: center; margin: 2px 0; }
table { width: 100%; border-collapse: collapse; font-size: 12px; }
td.num { text-align: right; }
hr { border: none; border-top: 1px dashed #000; }
</style></head><body>
<h1>{{.HotelName}}</h1>
<p class="center">{{.HotelAddress}}</p>
<hr>
<p>Bill No: {{.BillNumber}} &nbsp; Token: {{.TokenNumber}}</p>
{{if .TableName}}<p>Table: {{.TableName}}</p>{{end}}
<p>{{.CreatedAt}}</p>
<hr>
<table>
{{range .Items}}<tr><td>{{.ItemName}}</td><td class="num">{{.Quantity}} x {{.Price}}</td><td class="num">{{.Total}}</td></tr>
{{end}}</table>
<hr>
<p><strong>Total: {{.Total}}</strong></p>
<p>Paid by: {{.Payment}}</p>
<hr>
<p class="center">{{.Footer}}</p>
</body></html>
`))

var kotTmpl = template.Must(template.New("kot").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: monospace; width: 80mm; margin: 0; }
h1 { font-size: 14px; text-align: center; margin: 4px 0; }
table { width: 100%; border-collapse: collapse; font-size: 13px; }
td.num { text-align: right; }
hr { border: none; border-top: 1px dashed #000; }
</style></head><body>
<h1>KOT — Token {{.TokenNumber}}</h1>
{{if .TableName}}<p>Table: {{.TableName}}</p>{{end}}
<p>{{.PrintedAt}}</p>
<hr>
<table>
{{range .Items}}<tr><td>{{.Name}}</td><td class="num">x {{.Quantity}}</td></tr>
{{end}}</table>
</body></html>
`))

// RenderBill produces the receipt HTML for a closed order.
func RenderBill(data BillData) (string, error) {
	var buf bytes.Buffer
	if err := billTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderKOT produces the kitchen-ticket HTML for a set of fired lines.
func RenderKOT(data KOTData) (string, error) {
	var buf bytes.Buffer
	if err := kotTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RouteKOT splits kitchen lines by target printer using each line's menu
// category. Lines with no category routing fall through to the default
// printer from settings.
func RouteKOT(lines []model.CartItem, menu []model.MenuItem, categories []model.Category, defaultPrinter string) map[string][]model.CartItem {
	categoryPrinter := make(map[int64]string, len(categories))
	for _, c := range categories {
		if c.PrinterName != nil && *c.PrinterName != "" {
			categoryPrinter[c.ID] = *c.PrinterName
		}
	}
	itemCategory := make(map[int64]int64, len(menu))
	for _, m := range menu {
		if m.CategoryID != nil {
			itemCategory[m.ID] = *m.CategoryID
		}
	}

	routed := make(map[string][]model.CartItem)
	for _, line := range lines {
		printer := defaultPrinter
		if line.ItemID != nil {
			if cid, ok := itemCategory[*line.ItemID]; ok {
				if p, ok := categoryPrinter[cid]; ok {
					printer = p
				}
			}
		}
		routed[printer] = append(routed[printer], line)
	}
	return routed
}
