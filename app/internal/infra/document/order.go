// Package document renders order documents.
package document

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

const margin = 12.7

var (
	primary   = &props.Color{Red: 14, Green: 146, Blue: 210}
	secondary = &props.Color{Red: 33, Green: 151, Blue: 71}
	textColor = &props.Color{Red: 51, Green: 51, Blue: 51}
	lightGray = &props.Color{Red: 245, Green: 245, Blue: 245}
	white     = &props.Color{Red: 255, Green: 255, Blue: 255}
	muted     = &props.Color{Red: 153, Green: 153, Blue: 153}
)

// FileName is the download name of an order's document.
func FileName(o *domorder.Order) string {
	return "Pedido-" + o.OrderNumber + ".pdf"
}

// Render lays the order out on Letter pages: header, client block, items
// table and totals. Header and footer repeat on every page.
func Render(o *domorder.Order) ([]byte, error) {
	return render(o, true)
}

func render(o *domorder.Order, compress bool) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(margin).
		WithTopMargin(margin).
		WithRightMargin(margin).
		WithCompression(compress).
		Build()

	m := maroto.New(cfg)
	if err := m.RegisterHeader(pageHeader(o)...); err != nil {
		return nil, fmt.Errorf("register header: %w", err)
	}
	if err := m.RegisterFooter(pageFooter()...); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(clientRows(o)...)
	m.AddRows(itemRows(o.Items)...)
	m.AddRows(totalRows(o)...)
	if o.Notes != "" {
		m.AddRows(
			row.New(6),
			row.New(12).Add(
				text.NewCol(2, "Notas:", props.Text{Size: 10, Style: fontstyle.Bold, Color: textColor}),
				text.NewCol(10, o.Notes, props.Text{Size: 9, Color: textColor}),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate order document: %w", err)
	}
	return doc.GetBytes(), nil
}

func pageHeader(o *domorder.Order) []core.Row {
	return []core.Row{
		row.New(22).Add(
			col.New(7).Add(
				text.New("CLEAN TEC", props.Text{Size: 24, Style: fontstyle.Bold, Color: primary}),
				text.New("Productos de Limpieza de Calidad", props.Text{Top: 12, Size: 10, Color: textColor}),
			),
			col.New(5).Add(
				text.New("PEDIDO", props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Color: textColor}),
				text.New(o.OrderNumber, props.Text{Top: 6, Size: 16, Style: fontstyle.Bold, Align: align.Right, Color: primary}),
				text.New("Fecha: "+o.CreatedAt.Format("2/1/2006"), props.Text{Top: 14, Size: 9, Align: align.Right, Color: textColor}),
			),
		),
		line.NewRow(4, props.Line{Color: primary, Thickness: 0.7}),
		row.New(6),
	}
}

func pageFooter() []core.Row {
	small := props.Text{Size: 8, Align: align.Center, Color: textColor}
	return []core.Row{
		line.NewRow(4, props.Line{Color: secondary, Thickness: 0.7}),
		text.NewRow(5, "Clean Tec | Tel: +506 1234-5678 | Email: info@cleantec.com", small),
		text.NewRow(5, "San José, Costa Rica | www.cleantec.com", small),
		text.NewRow(6, "Este documento es una confirmación de pedido. Los precios incluyen IVA. Gracias por su preferencia.",
			props.Text{Top: 1, Size: 7, Align: align.Center, Color: muted}),
	}
}

func clientRows(o *domorder.Order) []core.Row {
	label := props.Text{Left: 3, Top: 1, Size: 10, Style: fontstyle.Bold, Color: textColor}
	value := props.Text{Top: 1, Size: 10, Color: textColor}
	field := func(height float64, name, v string) core.Row {
		return row.New(height).Add(
			text.NewCol(2, name, label),
			text.NewCol(10, v, value),
		).WithStyle(&props.Cell{BackgroundColor: lightGray})
	}

	return []core.Row{
		text.NewRow(10, "INFORMACIÓN DEL CLIENTE", props.Text{Size: 14, Style: fontstyle.Bold, Color: primary}),
		field(7, "Empresa:", orDash(o.ClientCompany)),
		field(7, "Cliente:", orDash(o.ClientName)+" ("+orDash(o.ClientNumber)+")"),
		field(12, "Dirección:", orDash(o.ClientAddress)),
		field(7, "Teléfono:", orDash(o.ClientPhone)),
		row.New(8),
	}
}

func itemRows(items []domorder.OrderItem) []core.Row {
	head := props.Text{Top: 2, Size: 10, Style: fontstyle.Bold, Color: white}
	cell := props.Text{Top: 2, Size: 9, Color: textColor}
	headAt := func(a align.Type) props.Text {
		p := head
		p.Align = a
		return p
	}
	cellAt := func(a align.Type) props.Text {
		p := cell
		p.Align = a
		return p
	}

	rows := []core.Row{
		text.NewRow(10, "PRODUCTOS", props.Text{Size: 14, Style: fontstyle.Bold, Color: primary}),
		row.New(8).Add(
			text.NewCol(4, "Producto", headAt(align.Left)),
			text.NewCol(2, "SKU", headAt(align.Left)),
			text.NewCol(2, "Cant.", headAt(align.Center)),
			text.NewCol(2, "Precio Unit.", headAt(align.Right)),
			text.NewCol(2, "Total", headAt(align.Right)),
		).WithStyle(&props.Cell{BackgroundColor: primary}),
	}
	for i, it := range items {
		total := cellAt(align.Right)
		total.Style = fontstyle.Bold
		r := row.New(8).Add(
			text.NewCol(4, orDash(it.ProductName), cellAt(align.Left)),
			text.NewCol(2, orDash(it.ProductSKU), cellAt(align.Left)),
			text.NewCol(2, strconv.FormatInt(it.Quantity, 10), cellAt(align.Center)),
			text.NewCol(2, money(it.UnitPrice), cellAt(align.Right)),
			text.NewCol(2, money(it.LineTotal), total),
		)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: lightGray})
		}
		rows = append(rows, r)
	}
	return rows
}

func totalRows(o *domorder.Order) []core.Row {
	label := props.Text{Size: 10, Align: align.Right, Color: textColor}
	strong := props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Color: primary}
	return []core.Row{
		row.New(6),
		row.New(6).Add(col.New(7), text.NewCol(3, "Subtotal:", label), text.NewCol(2, money(o.Subtotal), label)),
		row.New(6).Add(col.New(7), text.NewCol(3, "IVA (16%):", label), text.NewCol(2, money(o.Tax), label)),
		row.New(2).Add(col.New(7), line.NewCol(5, props.Line{Color: textColor, Thickness: 0.25})),
		row.New(8).Add(col.New(7), text.NewCol(3, "TOTAL:", strong), text.NewCol(2, money(o.Total), strong)),
	}
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
