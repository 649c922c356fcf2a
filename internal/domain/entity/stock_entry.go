package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus clasificación de excepción de una entrada. No es un flujo progresivo:
// cualquier valor es alcanzable desde cualquier otro.
type EntryStatus string

// Estados válidos.
const (
	StatusNormal EntryStatus = "NORMAL"
	StatusQA     EntryStatus = "QA"
	StatusReject EntryStatus = "REJECT"
)

// Valid indica si el estado es conocido.
func (s EntryStatus) Valid() bool {
	switch s {
	case StatusNormal, StatusQA, StatusReject:
		return true
	}
	return false
}

// Stream forma física de la entrada: vinculada al catálogo o manual (texto libre),
// cada una en variante general o de producto terminado (FG).
type Stream string

// Flujos soportados.
const (
	StreamNormal   Stream = "NORMAL"
	StreamManual   Stream = "MANUAL"
	StreamFG       Stream = "FG"
	StreamFGManual Stream = "FG_MANUAL"
)

// ParseStream valida el texto recibido desde la API.
func ParseStream(s string) (Stream, bool) {
	st := Stream(s)
	switch st {
	case StreamNormal, StreamManual, StreamFG, StreamFGManual:
		return st, true
	}
	return "", false
}

// CatalogLinked true para los flujos que referencian materials por ID.
func (s Stream) CatalogLinked() bool { return s == StreamNormal || s == StreamFG }

// FinishedGoods true para los flujos con lote, PO y conteo de empaques.
func (s Stream) FinishedGoods() bool { return s == StreamFG || s == StreamFGManual }

// StockEntry una entrada de conteo físico. Los cuatro flujos comparten este modelo;
// PackCount solo existe (no nil) en flujos FG.
type StockEntry struct {
	ID     string
	Stream Stream

	MaterialID   string // solo flujos vinculados al catálogo
	MaterialName string // texto libre en manuales; resuelto desde el catálogo en los demás
	MaterialType string
	EntryUOM     string

	CountedQty decimal.Decimal
	PackCount  *decimal.Decimal

	TagNo   string
	BatchNo string
	PONo    string
	Remarks string

	Status   EntryStatus
	IsZero   bool
	IsCancel bool

	EntryDate    time.Time
	PlantCode    string
	LocationCode string

	CreatedBy string
	CreatedAt time.Time
	UpdatedBy string
	UpdatedAt *time.Time
}

// Clone copia profunda (PackCount y UpdatedAt son punteros).
func (e StockEntry) Clone() StockEntry {
	out := e
	if e.PackCount != nil {
		p := *e.PackCount
		out.PackCount = &p
	}
	if e.UpdatedAt != nil {
		u := *e.UpdatedAt
		out.UpdatedAt = &u
	}
	return out
}

// ReviewUpdate conjunto acotado de campos que persiste un guardado de revisión.
// Descriptores y alcance (material, planta, ubicación, lote, PO) nunca se sobrescriben.
type ReviewUpdate struct {
	TagNo      string
	CountedQty decimal.Decimal
	PackCount  *decimal.Decimal
	Status     EntryStatus
	IsZero     bool
	IsCancel   bool
	UpdatedBy  string
	UpdatedAt  time.Time
}
