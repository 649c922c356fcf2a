package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnavailable  = errors.New("servicio no disponible temporalmente")

	// Alcance (rol + planta)
	ErrScopeDenied      = errors.New("perfil sin alcance para esta operación")
	ErrNoPlantSelected  = errors.New("debe seleccionar una planta")
	ErrPlantSwitchFixed = errors.New("el rol no permite cambiar de planta")

	// Revisión
	ErrReadOnly        = errors.New("acceso de solo lectura")
	ErrQuantityLocked  = errors.New("cantidad bloqueada por cero o anulación")
	ErrSaveInProgress  = errors.New("ya hay un guardado en curso para esta entrada")
	ErrStreamNotInView = errors.New("flujo no disponible en esta vista")
	ErrSessionClosed   = errors.New("sesión de revisión cerrada")

	// Reportes
	ErrNoData = errors.New("no hay datos para exportar")
)
