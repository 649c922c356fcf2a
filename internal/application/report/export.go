package report

import (
	"context"
	"regexp"
	"strings"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// Content types de los archivos exportados.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// Column columna de la tabla exportada.
type Column struct {
	Header  string
	Numeric bool
}

// Table tabla lista para renderizar. Las celdas numéricas son float64, el resto string.
type Table struct {
	Sheet   string
	Title   string
	Columns []Column
	Rows    [][]any
}

// SpreadsheetWriter serializa una tabla a xlsx.
type SpreadsheetWriter interface {
	WriteTable(t Table) ([]byte, error)
}

// ReportPDFRenderer serializa una tabla a PDF.
type ReportPDFRenderer interface {
	RenderTable(ctx context.Context, t Table) ([]byte, error)
}

// File archivo exportado.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Exporter arma la tabla según la variante del reporte y delega el formato a los adaptadores.
type Exporter struct {
	sheets SpreadsheetWriter
	pdf    ReportPDFRenderer
}

// NewExporter construye el exportador. pdf puede ser nil si no se ofrece PDF.
func NewExporter(sheets SpreadsheetWriter, pdf ReportPDFRenderer) *Exporter {
	return &Exporter{sheets: sheets, pdf: pdf}
}

// ToSpreadsheet genera el xlsx. Sin filas devuelve domain.ErrNoData y no produce archivo.
func (x *Exporter) ToSpreadsheet(rows []entity.ReportRow, family Family, key Key, plantCode, materialType string) (*File, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoData
	}
	if _, ok := kinds[key]; !ok {
		return nil, domain.ErrInvalidInput
	}
	data, err := x.sheets.WriteTable(BuildTable(rows, family, key, plantCode))
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        FileName(family, key, plantCode, materialType, "xlsx"),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

// ToPDF genera el mismo reporte en PDF.
func (x *Exporter) ToPDF(ctx context.Context, rows []entity.ReportRow, family Family, key Key, plantCode, materialType string) (*File, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoData
	}
	if _, ok := kinds[key]; !ok || x.pdf == nil {
		return nil, domain.ErrInvalidInput
	}
	data, err := x.pdf.RenderTable(ctx, BuildTable(rows, family, key, plantCode))
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        FileName(family, key, plantCode, materialType, "pdf"),
		ContentType: ContentTypePDF,
		Data:        data,
	}, nil
}

// Columns columnas de la variante: Plant, [Location], Material, [Status], UOM, Total Qty, [Total Pack].
func Columns(family Family, key Key) []Column {
	cols := []Column{{Header: "Plant"}}
	if key.ShowsLocation() {
		cols = append(cols, Column{Header: "Location"})
	}
	cols = append(cols, Column{Header: "Material"})
	if family == FamilyGeneral {
		cols = append(cols, Column{Header: "Status"})
	}
	cols = append(cols, Column{Header: "UOM"}, Column{Header: "Total Qty", Numeric: true})
	if family == FamilyFinishedGoods {
		cols = append(cols, Column{Header: "Total Pack", Numeric: true})
	}
	return cols
}

// BuildTable convierte las filas en celdas alineadas con Columns.
func BuildTable(rows []entity.ReportRow, family Family, key Key, plantCode string) Table {
	t := Table{
		Sheet:   "Report",
		Title:   tableTitle(family, key, plantCode),
		Columns: Columns(family, key),
		Rows:    make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		cells := []any{r.PlantCode}
		if key.ShowsLocation() {
			cells = append(cells, deref(r.LocationCode))
		}
		cells = append(cells, r.MaterialName)
		if family == FamilyGeneral {
			cells = append(cells, deref(r.Status))
		}
		cells = append(cells, r.EntryUOM, r.TotalQty.InexactFloat64())
		if family == FamilyFinishedGoods {
			pack := 0.0
			if r.TotalPack != nil {
				pack = r.TotalPack.InexactFloat64()
			}
			cells = append(cells, pack)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func tableTitle(family Family, key Key, plantCode string) string {
	prefix := ""
	if family == FamilyFinishedGoods {
		prefix = "FG · "
	}
	return prefix + key.Label() + " · " + plantCode
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// FileName nombre determinista que incluye la planta, para que exportes de plantas distintas
// no se pisen. General: <label>_<tipo>_<planta>.<ext>; FG: FG_Tab_<clave>_<planta>.<ext>.
func FileName(family Family, key Key, plantCode, materialType, ext string) string {
	plant := sanitize(plantCode)
	if plant == "" {
		plant = "NA"
	}
	if family == FamilyFinishedGoods {
		return "FG_Tab_" + string(key) + "_" + plant + "." + ext
	}
	mt := sanitize(strings.ToUpper(materialType))
	if mt == "" {
		mt = entity.MaterialTypeAll
	}
	return sanitize(key.Label()) + "_" + mt + "_" + plant + "." + ext
}

func sanitize(s string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_"), "_")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
