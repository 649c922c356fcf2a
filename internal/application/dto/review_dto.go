package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenSessionRequest apertura de una sesión de revisión.
type OpenSessionRequest struct {
	Surface string `json:"surface" validate:"required,oneof=GENERAL FINISHED_GOODS"`
}

// SelectStreamRequest cambio de flujo dentro de la sesión.
type SelectStreamRequest struct {
	Stream string `json:"stream" validate:"required"`
}

// SelectPlantRequest elección de planta (solo ADMIN).
type SelectPlantRequest struct {
	PlantCode string `json:"plant_code" validate:"required"`
}

// EntryPatchRequest edición local de una entrada. Solo se aplican los campos presentes.
type EntryPatchRequest struct {
	TagNo      *string          `json:"tag_no"`
	CountedQty *decimal.Decimal `json:"counted_qty"`
	PackCount  *decimal.Decimal `json:"pack_count"`
	Status     *string          `json:"status"`
	IsZero     *bool            `json:"is_zero"`
	IsCancel   *bool            `json:"is_cancel"`
}

// EntryResponse fila del conjunto de trabajo.
type EntryResponse struct {
	ID           string           `json:"id"`
	Stream       string           `json:"stream"`
	MaterialID   string           `json:"material_id,omitempty"`
	MaterialName string           `json:"material_name"`
	MaterialType string           `json:"material_type,omitempty"`
	EntryUOM     string           `json:"entry_uom,omitempty"`
	CountedQty   decimal.Decimal  `json:"counted_qty"`
	PackCount    *decimal.Decimal `json:"pack_count,omitempty"`
	TagNo        string           `json:"tag_no"`
	BatchNo      string           `json:"batch_no,omitempty"`
	PONo         string           `json:"po_no,omitempty"`
	Remarks      string           `json:"remarks,omitempty"`
	Status       string           `json:"status"`
	IsZero       bool             `json:"is_zero"`
	IsCancel     bool             `json:"is_cancel"`
	QtyLocked    bool             `json:"qty_locked"`
	EntryDate    *time.Time       `json:"entry_date,omitempty"`
	PlantCode    string           `json:"plant_code"`
	LocationCode string           `json:"location_code"`
	CreatedBy    string           `json:"created_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedBy    string           `json:"updated_by,omitempty"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`
}

// FeedMessageResponse mensaje efímero de la sesión.
type FeedMessageResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse estado visible de una sesión de revisión.
type SessionResponse struct {
	ID            string                `json:"id"`
	Surface       string                `json:"surface"`
	Stream        string                `json:"stream"`
	Mode          string                `json:"plant_selection_mode"`
	Writable      bool                  `json:"writable"`
	Plant         *PlantResponse        `json:"plant"`
	AllowedPlants []PlantResponse       `json:"allowed_plants"`
	Entries       []EntryResponse       `json:"entries"`
	Feed          []FeedMessageResponse `json:"feed"`
}

// PatchResultResponse campos aplicados y rechazados por la edición local.
type PatchResultResponse struct {
	Entry    EntryResponse `json:"entry"`
	Applied  []string      `json:"applied"`
	Rejected []string      `json:"rejected"`
}
