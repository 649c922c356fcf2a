package entity

// Plant planta física (datos de referencia).
type Plant struct {
	ID     string
	Code   string
	Name   string
	Active bool
}

// Location ubicación de conteo; siempre pertenece a una planta.
type Location struct {
	ID        string
	Code      string
	PlantID   string
	PlantCode string
	Active    bool
}

// Material ítem del catálogo. Type particiona las entradas por flujo de negocio.
type Material struct {
	ID       string
	Name     string
	Type     string
	EntryUOM string
	Active   bool
}

// Tipos de material conocidos.
const (
	MaterialTypeRM  = "RM" // materia prima
	MaterialTypePM  = "PM" // material de empaque
	MaterialTypeP5  = "P5" // intermedio
	MaterialTypeFG  = "FG" // producto terminado
	MaterialTypeAll = "ALL"
)

// ValidMaterialType acepta los tipos conocidos (sin ALL).
func ValidMaterialType(t string) bool {
	switch t {
	case MaterialTypeRM, MaterialTypePM, MaterialTypeP5, MaterialTypeFG:
		return true
	}
	return false
}
