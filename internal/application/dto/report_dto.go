package dto

import "github.com/shopspring/decimal"

// ReportQuery filtros de la consulta de reportes.
type ReportQuery struct {
	PlantID      string `query:"plant_id"`
	MaterialType string `query:"material_type"`
	Search       string `query:"search"`
	Format       string `query:"format"`
}

// ReportRowResponse fila agregada. Los campos opcionales se omiten según la variante.
type ReportRowResponse struct {
	PlantCode    string           `json:"plant_code"`
	LocationCode *string          `json:"location_code,omitempty"`
	MaterialName string           `json:"material_name"`
	EntryUOM     string           `json:"entry_uom"`
	Status       *string          `json:"status,omitempty"`
	TotalQty     decimal.Decimal  `json:"total_qty"`
	TotalPack    *decimal.Decimal `json:"total_pack,omitempty"`
}

// ReportResponse resultado de la agregación.
type ReportResponse struct {
	Family       string              `json:"family"`
	Key          string              `json:"key"`
	Label        string              `json:"label"`
	Stream       string              `json:"stream"`
	Grain        string              `json:"grain"`
	PlantCode    string              `json:"plant_code"`
	MaterialType string              `json:"material_type,omitempty"`
	Rows         []ReportRowResponse `json:"rows"`
	Alert        string              `json:"alert,omitempty"`
}
