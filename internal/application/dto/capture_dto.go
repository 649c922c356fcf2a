package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CaptureLineRequest una línea de conteo. MaterialID en flujos vinculados al catálogo,
// MaterialName (texto libre) en flujos manuales.
type CaptureLineRequest struct {
	MaterialID   string           `json:"material_id"`
	MaterialName string           `json:"material_name"`
	MaterialType string           `json:"material_type"`
	EntryUOM     string           `json:"entry_uom"`
	CountedQty   decimal.Decimal  `json:"counted_qty"`
	PackCount    *decimal.Decimal `json:"pack_count"`
	TagNo        string           `json:"tag_no"`
	BatchNo      string           `json:"batch_no"`
	PONo         string           `json:"po_no"`
	Remarks      string           `json:"remarks"`
	Status       string           `json:"status"`
	IsZero       bool             `json:"is_zero"`
	IsCancel     bool             `json:"is_cancel"`
}

// CaptureRequest entrada de la captura de conteos para una ubicación.
type CaptureRequest struct {
	LocationCode string               `json:"location_code" validate:"required"`
	EntryDate    *time.Time           `json:"entry_date"`
	Lines        []CaptureLineRequest `json:"lines" validate:"required,min=1"`
}

// CaptureResponse resultado de la captura.
type CaptureResponse struct {
	Stream   string   `json:"stream"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	IDs      []string `json:"ids"`
}
