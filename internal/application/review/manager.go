package review

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/pkg/clock"
)

// Manager registro de sesiones abiertas. Cada sesión pertenece a un único usuario.
type Manager struct {
	deps Deps
	idle time.Duration
	log  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager construye el registro. idle <= 0 desactiva el cierre por inactividad.
func NewManager(deps Deps, idle time.Duration) *Manager {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	return &Manager{
		deps:     deps,
		idle:     idle,
		log:      deps.Logger,
		sessions: make(map[string]*Session),
	}
}

// Open crea una sesión para el perfil y la registra.
func (m *Manager) Open(ctx context.Context, profile *entity.Profile, surface Surface) (*Session, error) {
	s, err := NewSession(ctx, m.deps, profile, surface)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	m.log.Info().Str("session_id", s.ID()).Str("user_id", s.UserID()).Str("surface", string(surface)).Msg("sesión abierta")
	return s, nil
}

// Get devuelve la sesión si existe y pertenece al usuario. Para otro usuario responde ErrNotFound.
func (m *Manager) Get(id, userID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || s.UserID() != userID || s.Closed() {
		return nil, domain.ErrNotFound
	}
	s.touch()
	return s, nil
}

// Close cierra y elimina la sesión del usuario.
func (m *Manager) Close(id, userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.UserID() != userID {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()
	s.Close()
	return nil
}

// Len cantidad de sesiones registradas.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep cierra las sesiones cerradas o inactivas desde antes de now-idle. Devuelve cuántas cerró.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.Closed() || (m.idle > 0 && now.Sub(s.idleSince()) > m.idle) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.log.Debug().Int("closed", len(stale)).Msg("sesiones inactivas cerradas")
	}
	return len(stale)
}

// Run ejecuta Sweep cada interval hasta que ctx termine; al salir cierra todas las sesiones.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			m.Sweep(m.deps.Clock.Now())
		}
	}
}

// CloseAll cierra todas las sesiones (apagado del servidor).
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
