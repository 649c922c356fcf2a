package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// Formatos de exportación.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Service agrega y exporta en un solo paso (lo usa la API de descarga).
type Service struct {
	engine   *Engine
	exporter *Exporter
}

// NewService construye el servicio.
func NewService(engine *Engine, exporter *Exporter) *Service {
	return &Service{engine: engine, exporter: exporter}
}

// Aggregate delega en el motor.
func (s *Service) Aggregate(ctx context.Context, viewer *entity.Profile, family Family, key Key, f Filters) (*Report, error) {
	return s.engine.Aggregate(ctx, viewer, family, key, f)
}

// Export ejecuta el reporte y lo serializa en el formato pedido (xlsx por defecto).
// Un fallo del procedimiento devuelve domain.ErrUnavailable con el texto del error;
// un reporte vacío devuelve domain.ErrNoData.
func (s *Service) Export(ctx context.Context, viewer *entity.Profile, family Family, key Key, f Filters, format string) (*File, error) {
	rep, err := s.engine.Aggregate(ctx, viewer, family, key, f)
	if err != nil {
		return nil, err
	}
	if rep.Alert != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnavailable, rep.Alert)
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatXLSX:
		return s.exporter.ToSpreadsheet(rep.Rows, family, key, rep.Plant.Code, rep.MaterialType)
	case FormatPDF:
		return s.exporter.ToPDF(ctx, rep.Rows, family, key, rep.Plant.Code, rep.MaterialType)
	}
	return nil, domain.ErrInvalidInput
}
