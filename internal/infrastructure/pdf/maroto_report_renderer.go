// Package pdf renderiza los reportes de conteo en PDF con Maroto v2.
//
// Layout de la página A4 apaisada:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  TÍTULO del reporte                    │  Fecha de emisión   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Plant | [Location] | Material | ... | Total Qty      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIE: cantidad de filas                                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/StockCount-api/internal/application/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 250}
)

const gridSize = 12

// ── Renderer ──────────────────────────────────────────────────────────────────

var _ report.ReportPDFRenderer = (*MarotoReportRenderer)(nil)

// MarotoReportRenderer implementa report.ReportPDFRenderer usando Maroto v2.
type MarotoReportRenderer struct {
	now func() time.Time
}

// NewMarotoReportRenderer construye el renderer.
func NewMarotoReportRenderer() *MarotoReportRenderer {
	return &MarotoReportRenderer{now: time.Now}
}

// RenderTable genera el PDF y devuelve sus bytes.
func (g *MarotoReportRenderer) RenderTable(_ context.Context, t report.Table) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(t.Title, true).
		Build()

	m := maroto.New(cfg)
	sizes := columnSizes(t.Columns)

	m.AddRows(titleRow(t.Title, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow(t.Columns, sizes))
	m.AddRows(tableBodyRows(t, sizes)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRow(len(t.Rows)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func titleRow(title string, at time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New("Emitido: "+at.Format("02/01/2006 15:04"), props.Text{
			Size: 8, Align: align.Right, Color: colorGray, Top: 4,
		})),
	)
}

// tableHeaderRow: cabecera con fondo del color primario.
func tableHeaderRow(cols []report.Column, sizes []int) core.Row {
	cells := make([]core.Col, len(cols))
	for i, c := range cols {
		cells[i] = col.New(sizes[i]).Add(text.New(c.Header, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: alignFor(c),
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(cells...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableBodyRows(t report.Table, sizes []int) []core.Row {
	out := make([]core.Row, 0, len(t.Rows))
	for n, cells := range t.Rows {
		cs := make([]core.Col, len(t.Columns))
		for i, c := range t.Columns {
			var v any
			if i < len(cells) {
				v = cells[i]
			}
			cs[i] = col.New(sizes[i]).Add(text.New(formatCell(v), props.Text{
				Size: 8, Align: alignFor(c), Top: 1, Left: 1, Right: 1,
			}))
		}
		r := row.New(6).Add(cs...)
		if n%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		out = append(out, r)
	}
	return out
}

func footerRow(count int) core.Row {
	return row.New(8).Add(col.New(gridSize).Add(text.New(
		fmt.Sprintf("Filas: %d", count),
		props.Text{Size: 7, Color: colorGray, Top: 2},
	)))
}

// ── Utilidades ────────────────────────────────────────────────────────────────

// columnSizes reparte la grilla de 12 en partes iguales y da el sobrante a Material.
func columnSizes(cols []report.Column) []int {
	n := len(cols)
	sizes := make([]int, n)
	if n == 0 {
		return sizes
	}
	base := gridSize / n
	if base == 0 {
		base = 1
	}
	rest := gridSize - base*n
	for i, c := range cols {
		sizes[i] = base
		if c.Header == "Material" && rest > 0 {
			sizes[i] += rest
			rest = 0
		}
	}
	if rest > 0 {
		sizes[n-1] += rest
	}
	return sizes
}

func alignFor(c report.Column) align.Type {
	if c.Numeric {
		return align.Right
	}
	return align.Left
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return "—"
	case string:
		if t == "" {
			return "—"
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
