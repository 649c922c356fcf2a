// Package capture registra conteos nuevos en cualquiera de los cuatro flujos.
package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/entrystate"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
	"github.com/jhoicas/StockCount-api/pkg/clock"
)

// UseCase captura de conteos para la planta del perfil.
type UseCase struct {
	entries   repository.StockEntryRepository
	materials repository.MaterialRepository
	locations repository.LocationRepository
	clk       clock.Clock
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	entries repository.StockEntryRepository,
	materials repository.MaterialRepository,
	locations repository.LocationRepository,
	clk clock.Clock,
	log zerolog.Logger,
) *UseCase {
	if clk == nil {
		clk = clock.System()
	}
	return &UseCase{entries: entries, materials: materials, locations: locations, clk: clk, log: log}
}

// Submit valida y persiste las líneas en un solo lote. Las líneas sin material se omiten;
// si no queda ninguna válida devuelve domain.ErrInvalidInput.
func (uc *UseCase) Submit(ctx context.Context, viewer *entity.Profile, stream entity.Stream, in dto.CaptureRequest) (*dto.CaptureResponse, error) {
	if viewer == nil || !viewer.Active || !viewer.Role.Valid() || viewer.PlantCode == "" {
		return nil, domain.ErrScopeDenied
	}
	locCode := strings.TrimSpace(in.LocationCode)
	if locCode == "" {
		return nil, domain.ErrInvalidInput
	}
	loc, err := uc.locations.GetByCode(ctx, viewer.PlantCode, locCode)
	if err != nil {
		return nil, fmt.Errorf("capture: buscar ubicación: %w", err)
	}
	if loc == nil || !loc.Active {
		return nil, fmt.Errorf("%w: ubicación %s no pertenece a la planta %s", domain.ErrInvalidInput, locCode, viewer.PlantCode)
	}

	catalog := map[string]entity.Material{}
	if stream.CatalogLinked() {
		catalog, err = uc.lookupMaterials(ctx, in.Lines)
		if err != nil {
			return nil, err
		}
	}

	now := uc.clk.Now()
	entryDate := now
	if in.EntryDate != nil && !in.EntryDate.IsZero() {
		entryDate = *in.EntryDate
	}

	entries := make([]entity.StockEntry, 0, len(in.Lines))
	skipped := 0
	for i, line := range in.Lines {
		e, ok, err := uc.buildEntry(stream, line, catalog)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		if !ok {
			skipped++
			continue
		}
		e.ID = uuid.New().String()
		e.EntryDate = entryDate
		e.PlantCode = viewer.PlantCode
		e.LocationCode = loc.Code
		e.CreatedBy = viewer.UserID
		e.CreatedAt = now
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if err := uc.entries.Insert(ctx, stream, entries); err != nil {
		return nil, fmt.Errorf("capture: insertar entradas: %w", err)
	}
	uc.log.Info().Str("stream", string(stream)).Str("plant", viewer.PlantCode).
		Str("location", loc.Code).Int("inserted", len(entries)).Msg("conteos registrados")

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return &dto.CaptureResponse{Stream: string(stream), Inserted: len(entries), Skipped: skipped, IDs: ids}, nil
}

func (uc *UseCase) lookupMaterials(ctx context.Context, lines []dto.CaptureLineRequest) (map[string]entity.Material, error) {
	ids := make([]string, 0, len(lines))
	seen := map[string]struct{}{}
	for _, l := range lines {
		id := strings.TrimSpace(l.MaterialID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	out := make(map[string]entity.Material, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	mats, err := uc.materials.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("capture: buscar materiales: %w", err)
	}
	for _, m := range mats {
		out[m.ID] = m
	}
	return out, nil
}

// buildEntry arma la entrada de una línea. ok=false si la línea no trae material.
func (uc *UseCase) buildEntry(stream entity.Stream, l dto.CaptureLineRequest, catalog map[string]entity.Material) (entity.StockEntry, bool, error) {
	e := entity.StockEntry{
		Stream:   stream,
		TagNo:    strings.TrimSpace(l.TagNo),
		IsZero:   l.IsZero,
		IsCancel: l.IsCancel,
		Status:   entity.StatusNormal,
	}

	if stream.CatalogLinked() {
		id := strings.TrimSpace(l.MaterialID)
		if id == "" {
			return e, false, nil
		}
		m, ok := catalog[id]
		if !ok {
			return e, false, fmt.Errorf("%w: material %s no existe", domain.ErrInvalidInput, id)
		}
		e.MaterialID = m.ID
		e.MaterialName = m.Name
		e.MaterialType = m.Type
		e.EntryUOM = m.EntryUOM
	} else {
		name := strings.TrimSpace(l.MaterialName)
		if name == "" {
			return e, false, nil
		}
		e.MaterialName = name
		e.EntryUOM = strings.TrimSpace(l.EntryUOM)
		if stream == entity.StreamFGManual {
			e.MaterialType = entity.MaterialTypeFG
		} else {
			mt := strings.ToUpper(strings.TrimSpace(l.MaterialType))
			if !entity.ValidMaterialType(mt) {
				return e, false, fmt.Errorf("%w: tipo de material %q", domain.ErrInvalidInput, l.MaterialType)
			}
			e.MaterialType = mt
		}
	}

	if s := strings.ToUpper(strings.TrimSpace(l.Status)); s != "" {
		st := entity.EntryStatus(s)
		if !st.Valid() {
			return e, false, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, l.Status)
		}
		e.Status = st
	}
	if l.CountedQty.IsNegative() {
		return e, false, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	e.CountedQty = l.CountedQty

	if stream.FinishedGoods() {
		e.BatchNo = strings.TrimSpace(l.BatchNo)
		e.PONo = strings.TrimSpace(l.PONo)
		pack := decimal.Zero
		if l.PackCount != nil {
			if l.PackCount.IsNegative() {
				return e, false, fmt.Errorf("%w: empaques negativos", domain.ErrInvalidInput)
			}
			pack = *l.PackCount
		}
		e.PackCount = &pack
	} else if stream == entity.StreamManual {
		e.Remarks = strings.TrimSpace(l.Remarks)
	}

	if stream.FinishedGoods() && e.IsCancel {
		// En FG una línea anulada se registra sin cantidades.
		e.CountedQty = decimal.Zero
		zero := decimal.Zero
		e.PackCount = &zero
	}
	entrystate.Normalize(&e)
	return e, true, nil
}
