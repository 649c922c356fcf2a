package entity

import "github.com/shopspring/decimal"

// ReportRow fila agregada devuelta por el procedimiento remoto. Los campos opcionales
// dependen del tipo de reporte: ubicación solo en A/C, estado solo en la familia general,
// empaques solo en la familia FG.
type ReportRow struct {
	PlantCode    string
	LocationCode *string
	MaterialName string
	EntryUOM     string
	Status       *string
	TotalQty     decimal.Decimal
	TotalPack    *decimal.Decimal
}
