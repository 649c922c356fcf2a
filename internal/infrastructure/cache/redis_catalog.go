// Package cache decora los repositorios de datos de referencia con Redis.
// Un fallo de Redis nunca interrumpe la lectura: se registra y se consulta el repositorio.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

const (
	materialNamePrefix = "stockcount:material:name:"
	activePlantsKey    = "stockcount:plants:active"
)

var (
	_ repository.MaterialRepository = (*MaterialRepo)(nil)
	_ repository.PlantRepository    = (*PlantRepo)(nil)
)

// MaterialRepo cachea NamesByIDs por ID. El resto de consultas pasa directo.
type MaterialRepo struct {
	next repository.MaterialRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewMaterialRepo construye el decorador.
func NewMaterialRepo(next repository.MaterialRepository, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *MaterialRepo {
	return &MaterialRepo{next: next, rdb: rdb, ttl: ttl, log: log}
}

// NamesByIDs lee con MGET y solo consulta al repositorio los IDs que faltan.
func (r *MaterialRepo) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = materialNamePrefix + id
	}
	missing := ids
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		r.log.Warn().Err(err).Msg("cache: mget nombres de material")
	} else {
		missing = make([]string, 0, len(ids))
		for i, v := range vals {
			if s, ok := v.(string); ok {
				out[ids[i]] = s
				continue
			}
			missing = append(missing, ids[i])
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := r.next.NamesByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return out, nil
	}
	pipe := r.rdb.Pipeline()
	for id, name := range found {
		out[id] = name
		pipe.Set(ctx, materialNamePrefix+id, name, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Warn().Err(err).Msg("cache: guardar nombres de material")
	}
	return out, nil
}

func (r *MaterialRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Material, error) {
	return r.next.GetByIDs(ctx, ids)
}

func (r *MaterialRepo) ListForLocation(ctx context.Context, plantCode, locationCode, materialType string) ([]entity.Material, error) {
	return r.next.ListForLocation(ctx, plantCode, locationCode, materialType)
}

// PlantRepo cachea la lista de plantas activas como JSON.
type PlantRepo struct {
	next repository.PlantRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewPlantRepo construye el decorador.
func NewPlantRepo(next repository.PlantRepository, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *PlantRepo {
	return &PlantRepo{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (r *PlantRepo) ListActive(ctx context.Context) ([]entity.Plant, error) {
	raw, err := r.rdb.Get(ctx, activePlantsKey).Bytes()
	switch {
	case err == nil:
		var plants []entity.Plant
		if jerr := json.Unmarshal(raw, &plants); jerr == nil {
			return plants, nil
		}
		r.log.Warn().Msg("cache: lista de plantas corrupta, se descarta")
	case !errors.Is(err, redis.Nil):
		r.log.Warn().Err(err).Msg("cache: leer plantas activas")
	}

	plants, err := r.next.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(plants); err == nil {
		if err := r.rdb.Set(ctx, activePlantsKey, raw, r.ttl).Err(); err != nil {
			r.log.Warn().Err(err).Msg("cache: guardar plantas activas")
		}
	}
	return plants, nil
}

// Invalidate borra la lista de plantas cacheada.
func (r *PlantRepo) Invalidate(ctx context.Context) error {
	return r.rdb.Del(ctx, activePlantsKey).Err()
}
