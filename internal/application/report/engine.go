// Package report selecciona el procedimiento de agregación según familia y clave de reporte,
// resuelve la planta según el alcance del visor y da forma a las filas devueltas.
// La suma y el agrupamiento los hace la base de datos.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/access"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

// Family familia de reportes: general (con estado y tipo de material) o producto terminado (con empaques).
type Family string

const (
	FamilyGeneral       Family = "GENERAL"
	FamilyFinishedGoods Family = "FINISHED_GOODS"
)

// ParseFamily acepta el nombre completo o los alias de la ruta ("general", "fg").
func ParseFamily(s string) (Family, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GENERAL":
		return FamilyGeneral, true
	case "FINISHED_GOODS", "FG":
		return FamilyFinishedGoods, true
	}
	return "", false
}

// Grain nivel de agrupamiento.
type Grain string

const (
	GrainLocation Grain = "LOCATION" // ubicación × material
	GrainPlant    Grain = "PLANT"    // planta × material
)

// Kind variante de reporte: flujo de origen y nivel de agrupamiento.
type Kind struct {
	Stream entity.Stream // NORMAL o MANUAL
	Grain  Grain
}

// Key clave de reporte A..D.
type Key string

const (
	KeyA Key = "A"
	KeyB Key = "B"
	KeyC Key = "C"
	KeyD Key = "D"
)

var kinds = map[Key]Kind{
	KeyA: {Stream: entity.StreamNormal, Grain: GrainLocation},
	KeyB: {Stream: entity.StreamNormal, Grain: GrainPlant},
	KeyC: {Stream: entity.StreamManual, Grain: GrainLocation},
	KeyD: {Stream: entity.StreamManual, Grain: GrainPlant},
}

var labels = map[Key]string{
	KeyA: "Normal · Location × Material",
	KeyB: "Normal · Plant × Material",
	KeyC: "Manual · Location × Material",
	KeyD: "Manual · Plant × Material",
}

// ParseKey valida la clave (sin distinguir mayúsculas).
func ParseKey(s string) (Key, bool) {
	k := Key(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := kinds[k]
	return k, ok
}

// Kind variante asociada a la clave.
func (k Key) Kind() Kind { return kinds[k] }

// Label etiqueta legible de la pestaña.
func (k Key) Label() string { return labels[k] }

// ShowsLocation true para los reportes por ubicación (A y C).
func (k Key) ShowsLocation() bool { return kinds[k].Grain == GrainLocation }

// Procedure nombre del procedimiento remoto para familia y clave.
func Procedure(f Family, k Key) string {
	suffix := strings.ToLower(string(k))
	if f == FamilyFinishedGoods {
		return "report_admin_fg_tab_" + suffix
	}
	return "report_non_admin_tab_" + suffix
}

// Filters filtros de la consulta. PlantID solo lo usa ADMIN (acepta ID o código de planta);
// MaterialType vacío equivale a ALL y se ignora en la familia FG.
type Filters struct {
	PlantID      string
	MaterialType string
	Search       string
}

// Report resultado de una agregación. Alert no vacío indica que el procedimiento falló
// y Rows quedó vacío.
type Report struct {
	Family       Family
	Key          Key
	Kind         Kind
	Plant        entity.Plant
	MaterialType string
	Rows         []entity.ReportRow
	Alert        string
}

// Engine motor de agregación.
type Engine struct {
	resolver access.ScopeResolver
	reports  repository.ReportRepository
	log      zerolog.Logger
}

// NewEngine construye el motor.
func NewEngine(resolver access.ScopeResolver, reports repository.ReportRepository, log zerolog.Logger) *Engine {
	return &Engine{resolver: resolver, reports: reports, log: log}
}

// Aggregate ejecuta el reporte. Los errores de alcance y de filtros se devuelven antes de cualquier
// llamada remota; un fallo del procedimiento produce un reporte vacío con Alert.
func (e *Engine) Aggregate(ctx context.Context, viewer *entity.Profile, family Family, key Key, f Filters) (*Report, error) {
	if _, ok := kinds[key]; !ok {
		return nil, domain.ErrInvalidInput
	}
	if family != FamilyGeneral && family != FamilyFinishedGoods {
		return nil, domain.ErrInvalidInput
	}

	plant, err := e.resolvePlant(ctx, viewer, f.PlantID)
	if err != nil {
		return nil, err
	}

	params := repository.AggregateParams{PlantID: plant.ID}
	rep := &Report{Family: family, Key: key, Kind: key.Kind(), Plant: plant}

	if family == FamilyGeneral {
		mt := strings.ToUpper(strings.TrimSpace(f.MaterialType))
		if mt == "" {
			mt = entity.MaterialTypeAll
		}
		if mt != entity.MaterialTypeAll && !entity.ValidMaterialType(mt) {
			return nil, domain.ErrInvalidInput
		}
		params.MaterialType = &mt
		rep.MaterialType = mt
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		params.Search = &s
	}

	proc := Procedure(family, key)
	rows, err := e.reports.Aggregate(ctx, proc, params)
	if err != nil {
		e.log.Warn().Err(err).Str("procedure", proc).Str("plant", plant.Code).Msg("agregación fallida")
		rep.Rows = []entity.ReportRow{}
		rep.Alert = fmt.Sprintf("Error al generar el reporte: %v", err)
		return rep, nil
	}
	rep.Rows = shape(rows, family, key)
	return rep, nil
}

// resolvePlant ADMIN debe elegir una planta de su alcance; los demás roles usan siempre la propia.
func (e *Engine) resolvePlant(ctx context.Context, viewer *entity.Profile, requested string) (entity.Plant, error) {
	scope, err := e.resolver.Resolve(ctx, viewer, access.SurfaceReport)
	if err != nil {
		e.log.Error().Err(err).Msg("resolver alcance de reportes")
		return entity.Plant{}, fmt.Errorf("report: resolver alcance: %w", err)
	}
	if scope.Empty() {
		return entity.Plant{}, domain.ErrScopeDenied
	}
	if p, ok := scope.FixedPlant(); ok {
		return p, nil
	}

	requested = strings.TrimSpace(requested)
	if requested == "" {
		return entity.Plant{}, domain.ErrNoPlantSelected
	}
	if p, ok := scope.AllowsID(requested); ok {
		return p, nil
	}
	if p, ok := scope.Allows(requested); ok {
		return p, nil
	}
	return entity.Plant{}, domain.ErrScopeDenied
}

// shape deja en cada fila solo los campos que corresponden a la variante.
func shape(rows []entity.ReportRow, family Family, key Key) []entity.ReportRow {
	out := make([]entity.ReportRow, 0, len(rows))
	for _, r := range rows {
		if !key.ShowsLocation() {
			r.LocationCode = nil
		}
		if family == FamilyFinishedGoods {
			r.Status = nil
			if r.TotalPack == nil {
				zero := decimal.Zero
				r.TotalPack = &zero
			}
		} else {
			r.TotalPack = nil
		}
		out = append(out, r)
	}
	return out
}
