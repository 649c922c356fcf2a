package entity

// Role rol del usuario dentro del proceso de conteo.
type Role string

// Roles válidos.
const (
	RoleAdmin  Role = "ADMIN"  // cualquier planta activa, lectura y escritura
	RoleEditor Role = "EDITOR" // su planta, lectura y escritura
	RoleEntry  Role = "ENTRY"  // su planta, solo lectura en revisión
)

// Valid indica si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleEntry:
		return true
	}
	return false
}

// Profile perfil del usuario autenticado (tabla user_profile). Es de solo lectura para este servicio
// y se pasa por valor como contexto del visor.
type Profile struct {
	UserID    string
	Role      Role
	PlantID   string
	PlantCode string
	PlantName string
	Active    bool
}

// IsAdmin atajo para el rol ADMIN.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// UserAccount usuario registrado en el proveedor de identidad (tabla app_users) con su perfil.
// Profile es nil mientras el usuario no tenga perfil aprovisionado.
type UserAccount struct {
	UserID  string
	Email   string
	Profile *Profile
}

// ProfileAssignment cambio de perfil que hace un ADMIN. PlantID vacío deja el perfil sin planta.
type ProfileAssignment struct {
	UserID  string
	Role    Role
	PlantID string
	Active  bool
}
