// Package review implementa la sesión de revisión: carga el conjunto de trabajo de una planta y
// un flujo, aplica ediciones locales con las reglas de entrystate y guarda fila por fila.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/jhoicas/StockCount-api/internal/application/feed"
	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/access"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/entrystate"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
	"github.com/jhoicas/StockCount-api/pkg/clock"
)

// MissingMaterialName nombre mostrado cuando el catálogo no resuelve un material.
const MissingMaterialName = "—"

// Surface vista de revisión: general (NORMAL/MANUAL) o producto terminado (FG/FG_MANUAL).
type Surface string

const (
	SurfaceGeneral       Surface = "GENERAL"
	SurfaceFinishedGoods Surface = "FINISHED_GOODS"
)

// ParseSurface valida el texto recibido desde la API.
func ParseSurface(s string) (Surface, bool) {
	switch Surface(strings.ToUpper(s)) {
	case SurfaceGeneral:
		return SurfaceGeneral, true
	case SurfaceFinishedGoods, "FG":
		return SurfaceFinishedGoods, true
	}
	return "", false
}

// Streams flujos disponibles en la vista; el primero es el inicial.
func (s Surface) Streams() []entity.Stream {
	if s == SurfaceFinishedGoods {
		return []entity.Stream{entity.StreamFG, entity.StreamFGManual}
	}
	return []entity.Stream{entity.StreamNormal, entity.StreamManual}
}

// Allows indica si el flujo pertenece a la vista.
func (s Surface) Allows(stream entity.Stream) bool {
	for _, st := range s.Streams() {
		if st == stream {
			return true
		}
	}
	return false
}

// Deps colaboradores de una sesión.
type Deps struct {
	Entries   repository.StockEntryRepository
	Materials repository.MaterialRepository
	Resolver  access.ScopeResolver
	Clock     clock.Clock
	Logger    zerolog.Logger
	FeedTTL   time.Duration
	FeedSize  int
}

// Snapshot estado visible de la sesión.
type Snapshot struct {
	ID       string
	Surface  Surface
	Stream   entity.Stream
	Mode     access.PlantSelectionMode
	Writable bool
	Plant    *entity.Plant
	Allowed  []entity.Plant
	Rows     []entity.StockEntry
	Feed     []feed.Message
}

// Session conjunto de trabajo de un visor sobre un par (planta, flujo).
// Las llamadas remotas se hacen sin tener tomado el mutex.
type Session struct {
	id      string
	userID  string
	surface Surface
	deps    Deps
	log     zerolog.Logger
	feed    *feed.Feed

	mu       sync.Mutex
	scope    access.Scope
	stream   entity.Stream
	plant    *entity.Plant
	rows     []entity.StockEntry
	saving   map[string]struct{}
	gen      uint64
	closed   bool
	lastUsed time.Time
}

// NewSession abre una sesión para el perfil. Un alcance vacío se rechaza con ErrScopeDenied.
// Para roles de planta fija la planta queda asignada y se hace la primera carga.
func NewSession(ctx context.Context, deps Deps, profile *entity.Profile, surface Surface) (*Session, error) {
	if _, ok := ParseSurface(string(surface)); !ok {
		return nil, domain.ErrInvalidInput
	}
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	s := &Session{
		id:       uuid.New().String(),
		surface:  surface,
		deps:     deps,
		feed:     feed.New(deps.Clock, deps.FeedTTL, deps.FeedSize),
		stream:   surface.Streams()[0],
		saving:   make(map[string]struct{}),
		lastUsed: deps.Clock.Now(),
	}
	if profile != nil {
		s.userID = profile.UserID
	}
	s.log = deps.Logger.With().Str("session_id", s.id).Str("surface", string(surface)).Logger()

	if err := s.ResolvePlant(ctx, profile); err != nil {
		s.Close()
		return nil, err
	}
	if s.PlantBound() {
		if err := s.Load(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// ID identificador de la sesión.
func (s *Session) ID() string { return s.id }

// UserID dueño de la sesión.
func (s *Session) UserID() string { return s.userID }

// ResolvePlant deriva el alcance del perfil. FIXED asigna la planta propia; SELECTABLE deja la
// sesión sin planta hasta SelectPlant.
func (s *Session) ResolvePlant(ctx context.Context, profile *entity.Profile) error {
	scope, err := s.deps.Resolver.Resolve(ctx, profile, access.SurfaceReview)
	if err != nil {
		s.log.Error().Err(err).Msg("resolver alcance")
		return fmt.Errorf("review: resolver alcance: %w", err)
	}
	if scope.Empty() {
		return domain.ErrScopeDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.scope = scope
	if p, ok := scope.FixedPlant(); ok {
		s.plant = &p
	}
	return nil
}

// PlantBound true si ya hay planta asignada.
func (s *Session) PlantBound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plant != nil
}

// Writable false para ENTRY.
func (s *Session) Writable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope.Writable
}

// SelectPlant elección explícita de planta (solo alcance SELECTABLE). Recarga el conjunto de trabajo.
func (s *Session) SelectPlant(ctx context.Context, plantCode string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.scope.Mode != access.ModeSelectable {
		fixed := s.plant != nil && s.plant.Code == plantCode
		s.mu.Unlock()
		if fixed {
			return s.Load(ctx)
		}
		return domain.ErrPlantSwitchFixed
	}
	p, ok := s.scope.Allows(plantCode)
	if !ok {
		s.mu.Unlock()
		return domain.ErrScopeDenied
	}
	s.plant = &p
	s.resetLocked()
	s.mu.Unlock()

	return s.Load(ctx)
}

// SelectStream cambia de flujo: descarta el conjunto de trabajo y el feed, y recarga si hay planta.
func (s *Session) SelectStream(ctx context.Context, stream entity.Stream) error {
	if !s.surface.Allows(stream) {
		return domain.ErrStreamNotInView
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.stream = stream
	s.resetLocked()
	bound := s.plant != nil
	s.mu.Unlock()

	if !bound {
		return nil
	}
	return s.Load(ctx)
}

// resetLocked invalida cargas en vuelo y limpia filas y feed.
func (s *Session) resetLocked() {
	s.gen++
	s.rows = nil
	s.feed.Clear()
}

// Load trae las entradas de la planta y el flujo actuales. Un fallo remoto deja el conjunto vacío
// y agrega un mensaje de error al feed; solo devuelve error si la sesión no admite la carga.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.plant == nil {
		s.mu.Unlock()
		return domain.ErrNoPlantSelected
	}
	s.gen++
	gen := s.gen
	plantCode := s.plant.Code
	stream := s.stream
	s.lastUsed = s.deps.Clock.Now()
	s.mu.Unlock()

	rows, err := s.fetch(ctx, stream, plantCode)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// Otra selección o carga reemplazó a esta.
		return nil
	}
	if err != nil {
		s.log.Warn().Err(err).Str("plant", plantCode).Str("stream", string(stream)).Msg("cargar entradas")
		s.rows = nil
		s.feed.Push(feed.KindError, "Error al cargar: "+err.Error())
		return nil
	}
	s.rows = rows
	return nil
}

// fetch trae las filas y resuelve nombres de material en dos pasos (IDs distintos -> nombres -> merge).
func (s *Session) fetch(ctx context.Context, stream entity.Stream, plantCode string) ([]entity.StockEntry, error) {
	raw, err := s.deps.Entries.ListByPlant(ctx, stream, plantCode)
	if err != nil {
		return nil, err
	}

	rows := make([]entity.StockEntry, 0, len(raw))
	for _, e := range raw {
		if e.PlantCode != plantCode {
			continue
		}
		e.Stream = stream
		entrystate.Normalize(&e)
		rows = append(rows, e)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	if !stream.CatalogLinked() || len(rows) == 0 {
		return rows, nil
	}

	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, e := range rows {
		if e.MaterialID == "" {
			continue
		}
		if _, ok := seen[e.MaterialID]; ok {
			continue
		}
		seen[e.MaterialID] = struct{}{}
		ids = append(ids, e.MaterialID)
	}

	names := map[string]string{}
	if len(ids) > 0 {
		names, err = s.deps.Materials.NamesByIDs(ctx, ids)
		if err != nil {
			s.log.Warn().Err(err).Int("ids", len(ids)).Msg("resolver nombres de material")
			names = map[string]string{}
		}
	}
	for i := range rows {
		if name, ok := names[rows[i].MaterialID]; ok && name != "" {
			rows[i].MaterialName = name
		} else {
			rows[i].MaterialName = MissingMaterialName
		}
	}
	return rows, nil
}

// UpdateLocal aplica un patch a una fila del conjunto de trabajo.
func (s *Session) UpdateLocal(entryID string, patch entrystate.Patch) (entrystate.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entrystate.Outcome{}, domain.ErrSessionClosed
	}
	if !s.scope.Writable {
		return entrystate.Outcome{}, domain.ErrReadOnly
	}
	i := s.indexLocked(entryID)
	if i < 0 {
		return entrystate.Outcome{}, domain.ErrNotFound
	}
	s.lastUsed = s.deps.Clock.Now()
	return entrystate.Apply(&s.rows[i], patch)
}

// Save persiste los campos de revisión de una fila. El fallo remoto no revierte la edición local:
// se informa en el feed y la función devuelve nil. Dos guardados simultáneos de la misma fila
// no se permiten. Si entre tanto hubo recarga o cambio de flujo o planta, no se publica mensaje.
func (s *Session) Save(ctx context.Context, entryID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if !s.scope.Writable {
		s.mu.Unlock()
		return domain.ErrReadOnly
	}
	i := s.indexLocked(entryID)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	if _, busy := s.saving[entryID]; busy {
		s.mu.Unlock()
		return domain.ErrSaveInProgress
	}
	s.saving[entryID] = struct{}{}
	gen := s.gen
	entry := s.rows[i].Clone()
	now := s.deps.Clock.Now()
	s.lastUsed = now
	s.mu.Unlock()

	upd := entrystate.BuildReviewUpdate(entry, s.userID, now)
	err := s.deps.Entries.UpdateReview(ctx, entry.Stream, entry.ID, upd)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saving, entryID)
	if s.closed {
		return nil
	}
	stale := gen != s.gen
	if err != nil {
		s.log.Error().Err(err).Str("entry_id", entryID).Msg("guardar revisión")
		if !stale {
			s.feed.Push(feed.KindError, "Error al guardar: "+err.Error())
		}
		return nil
	}
	// El conjunto de trabajo cambió durante el guardado: el resultado ya no corresponde a lo visible.
	if stale {
		return nil
	}
	if j := s.indexLocked(entryID); j >= 0 {
		at := upd.UpdatedAt
		s.rows[j].UpdatedBy = upd.UpdatedBy
		s.rows[j].UpdatedAt = &at
	}
	s.feed.Push(feed.KindSuccess, fmt.Sprintf("Guardado: %s | Tag: %s | %s",
		entry.MaterialName, entry.TagNo, now.Format("15:04:05")))
	return nil
}

func (s *Session) indexLocked(entryID string) int {
	for i := range s.rows {
		if s.rows[i].ID == entryID {
			return i
		}
	}
	return -1
}

// Rows copia del conjunto de trabajo.
func (s *Session) Rows() []entity.StockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.rows)
}

// Search filtra el conjunto de trabajo por subcadena sobre la serialización completa de cada fila,
// sin distinguir mayúsculas. No consulta el almacén.
func (s *Session) Search(term string) []entity.StockEntry {
	rows := s.Rows()
	term = strings.TrimSpace(term)
	if term == "" {
		return rows
	}
	fold := cases.Fold()
	needle := fold.String(term)

	out := rows[:0]
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		if strings.Contains(fold.String(string(b)), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Feed mensajes vigentes.
func (s *Session) Feed() []feed.Message { return s.feed.Messages() }

// Snapshot estado completo; si search no está vacío las filas se filtran.
func (s *Session) Snapshot(search string) Snapshot {
	rows := s.Search(search)
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:       s.id,
		Surface:  s.surface,
		Stream:   s.stream,
		Mode:     s.scope.Mode,
		Writable: s.scope.Writable,
		Allowed:  append([]entity.Plant(nil), s.scope.AllowedPlants...),
		Rows:     rows,
		Feed:     s.feed.Messages(),
	}
	if s.plant != nil {
		p := *s.plant
		snap.Plant = &p
	}
	return snap
}

// ApplyViewer re-deriva el alcance tras un cambio de perfil. Un alcance vacío cierra la sesión;
// un cambio de planta fija reasigna y recarga; una planta elegida que ya no está permitida se suelta.
// Si la consulta del alcance falla, la sesión queda intacta y se devuelve el error envuelto.
func (s *Session) ApplyViewer(ctx context.Context, profile *entity.Profile) error {
	if profile != nil && profile.UserID != s.userID {
		return domain.ErrForbidden
	}
	scope, err := s.deps.Resolver.Resolve(ctx, profile, access.SurfaceReview)
	if err != nil {
		s.log.Warn().Err(err).Msg("re-derivar alcance")
		return fmt.Errorf("review: re-derivar alcance: %w", err)
	}
	if scope.Empty() {
		s.Close()
		return domain.ErrScopeDenied
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.scope = scope
	reload := false
	if p, ok := scope.FixedPlant(); ok {
		if s.plant == nil || s.plant.Code != p.Code {
			s.plant = &p
			s.resetLocked()
			reload = true
		}
	} else if s.plant != nil {
		if _, ok := scope.Allows(s.plant.Code); !ok {
			s.plant = nil
			s.resetLocked()
		}
	}
	s.mu.Unlock()

	if reload {
		return s.Load(ctx)
	}
	return nil
}

// Close cancela los temporizadores del feed. Las operaciones posteriores devuelven ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.rows = nil
	s.feed.Close()
}

// Closed true tras Close.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// idleSince momento de la última operación.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = s.deps.Clock.Now()
	s.mu.Unlock()
}

func cloneRows(rows []entity.StockEntry) []entity.StockEntry {
	out := make([]entity.StockEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].Clone()
	}
	return out
}
