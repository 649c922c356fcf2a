package dto

// PlantResponse planta visible para el usuario.
type PlantResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// ScopeResponse alcance derivado del perfil.
type ScopeResponse struct {
	UserID        string          `json:"user_id"`
	Role          string          `json:"role"`
	Surface       string          `json:"surface"`
	Writable      bool            `json:"writable"`
	Mode          string          `json:"plant_selection_mode"`
	AllowedPlants []PlantResponse `json:"allowed_plants"`
}

// LocationResponse ubicación activa de una planta.
type LocationResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	PlantCode string `json:"plant_code"`
}

// MaterialResponse material del catálogo.
type MaterialResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	EntryUOM string `json:"entry_uom"`
}

// MaterialQuery filtros de la consulta de materiales.
type MaterialQuery struct {
	PlantCode    string `query:"plant"`
	LocationCode string `query:"location"`
	MaterialType string `query:"type"`
}
