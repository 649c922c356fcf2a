package dto

// UserProfileResponse usuario registrado con su perfil. HasProfile es false si aún no se le asignó rol.
type UserProfileResponse struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	HasProfile bool   `json:"has_profile"`
	Role       string `json:"role,omitempty"`
	PlantID    string `json:"plant_id,omitempty"`
	PlantCode  string `json:"plant_code,omitempty"`
	PlantName  string `json:"plant_name,omitempty"`
	Active     bool   `json:"is_active"`
}

// UpsertProfileRequest asignación de rol, planta y estado. is_active ausente equivale a true.
type UpsertProfileRequest struct {
	Role    string `json:"role"`
	PlantID string `json:"plant_id"`
	Active  *bool  `json:"is_active"`
}
