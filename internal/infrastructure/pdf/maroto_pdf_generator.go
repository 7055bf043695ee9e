// Package pdf genera la hoja de cierre de caja de una sesión.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + operador   │  Moneda + Fecha              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EFECTIVO: Denominación | Cantidad | Valor                   │
//	│  PROPINAS: Denominación | Cantidad | Valor                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: efectivo / float / fichas / propinas / ventas      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BITÁCORA: Hora | Tipo | Monto | Operador | Nota             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorMuted   = &props.Color{Red: 170, Green: 170, Blue: 170}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa cashbox.ReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

var _ cashbox.ReportGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateSessionReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateSessionReport(ctx context.Context, rep *cashbox.SessionReport) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("pdf: reporte nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(rep.Title, true).
		WithAuthor(nonEmpty(rep.Staff, "caja"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRow("EFECTIVO EN CAJA"))
	m.AddRows(countsHeaderRow())
	m.AddRows(countRows(rep.Cash)...)

	m.AddRows(sectionRow("PROPINAS (FICHAS PERDIDAS)"))
	m.AddRows(countsHeaderRow())
	m.AddRows(countRows(rep.Tips)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(rep.Totals)...)

	if len(rep.Activity) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(sectionRow("BITÁCORA"))
		m.AddRows(activityHeaderRow())
		m.AddRows(activityRows(rep.Activity)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + operador (izq) y moneda + fecha (der).
func headerRow(rep *cashbox.SessionReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(rep.Title, "Cierre de caja"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Operador: "+nonEmpty(rep.Staff, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("MONEDA "+nonEmpty(rep.Currency, "—"), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func sectionRow(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3,
		}),
	))
}

func headerCol(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorWhite, Top: 2, Left: 1, Right: 1,
	})).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func countsHeaderRow() core.Row {
	return row.New(7).Add(
		headerCol("Denominación", 5, align.Left),
		headerCol("Cantidad", 3, align.Center),
		headerCol("Valor", 4, align.Right),
	)
}

// countRows: una fila por denominación; vacío se indica con una sola fila.
func countRows(rows []cashbox.ReportRow) []core.Row {
	if len(rows) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("sin piezas", props.Text{Size: 8, Color: colorMuted, Top: 1, Left: 1}),
		))}
	}
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, row.New(6).Add(
			col.New(5).Add(text.New(r.Denomination, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(fmt.Sprintf("%d", r.Count), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(r.Value, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

// totalsRows: bloque de totales alineado a la derecha; el primero va destacado.
func totalsRows(totals []cashbox.ReportTotal) []core.Row {
	out := make([]core.Row, 0, len(totals))
	for i, t := range totals {
		p := props.Text{Size: 9, Align: align.Right, Right: 1, Top: 1}
		if i == 0 {
			p.Style = fontstyle.Bold
			p.Size = 10
			p.Color = colorPrimary
		}
		lp := p
		lp.Style = fontstyle.Bold
		lp.Right = 2
		out = append(out, row.New(6).Add(
			col.New(4),
			col.New(4).Add(text.New(t.Label+":", lp)),
			col.New(4).Add(text.New(t.Value, p)),
		))
	}
	return out
}

func activityHeaderRow() core.Row {
	return row.New(7).Add(
		headerCol("Hora", 2, align.Left),
		headerCol("Tipo", 2, align.Left),
		headerCol("Monto", 2, align.Right),
		headerCol("Operador", 2, align.Left),
		headerCol("Nota", 4, align.Left),
	)
}

// activityRows: las entradas revertidas van en gris y marcadas.
func activityRows(entries []cashbox.ReportActivity) []core.Row {
	out := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		p := props.Text{Size: 7, Top: 1, Left: 1}
		typ := e.Type
		if e.Reversed {
			p.Color = colorMuted
			typ += " (rev.)"
		}
		right := p
		right.Align = align.Right
		right.Right = 1
		out = append(out, row.New(6).Add(
			col.New(2).Add(text.New(e.Time.Format("15:04:05"), p)),
			col.New(2).Add(text.New(typ, p)),
			col.New(2).Add(text.New(e.Amount, right)),
			col.New(2).Add(text.New(nonEmpty(e.Staff, "—"), p)),
			col.New(4).Add(text.New(truncate(e.Note, 70), p)),
		))
	}
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// truncate corta en runas para no partir caracteres multibyte.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
