package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/infrastructure/cache"
)

type countingMaterials struct {
	names map[string]string
	asked [][]string
	err   error
}

func (m *countingMaterials) NamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	m.asked = append(m.asked, append([]string(nil), ids...))
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]string{}
	for _, id := range ids {
		if n, ok := m.names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (m *countingMaterials) GetByIDs(context.Context, []string) ([]entity.Material, error) {
	return nil, nil
}

func (m *countingMaterials) ListForLocation(context.Context, string, string, string) ([]entity.Material, error) {
	return nil, nil
}

type countingPlants struct {
	plants []entity.Plant
	calls  int
}

func (p *countingPlants) ListActive(context.Context) ([]entity.Plant, error) {
	p.calls++
	return p.plants, nil
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestMaterialRepo_SoloConsultaLosFaltantes(t *testing.T) {
	_, rdb := newRedis(t)
	next := &countingMaterials{names: map[string]string{"M1": "Caja", "M2": "Bolsa"}}
	repo := cache.NewMaterialRepo(next, rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()

	got, err := repo.NamesByIDs(ctx, []string{"M1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"M1": "Caja"}, got)

	got, err = repo.NamesByIDs(ctx, []string{"M1", "M2", "M9"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"M1": "Caja", "M2": "Bolsa"}, got)

	require.Len(t, next.asked, 2)
	assert.Equal(t, []string{"M2", "M9"}, next.asked[1], "M1 debe salir de la caché")
}

func TestMaterialRepo_ExpiraConTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	next := &countingMaterials{names: map[string]string{"M1": "Caja"}}
	repo := cache.NewMaterialRepo(next, rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := repo.NamesByIDs(ctx, []string{"M1"})
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = repo.NamesByIDs(ctx, []string{"M1"})
	require.NoError(t, err)
	assert.Len(t, next.asked, 2)
}

func TestMaterialRepo_RedisCaidoConsultaElRepositorio(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	next := &countingMaterials{names: map[string]string{"M1": "Caja"}}
	repo := cache.NewMaterialRepo(next, rdb, time.Minute, zerolog.Nop())

	got, err := repo.NamesByIDs(context.Background(), []string{"M1"})
	require.NoError(t, err)
	assert.Equal(t, "Caja", got["M1"])
}

func TestMaterialRepo_PropagaErrorDelRepositorio(t *testing.T) {
	_, rdb := newRedis(t)
	next := &countingMaterials{err: errors.New("db caída")}
	repo := cache.NewMaterialRepo(next, rdb, time.Minute, zerolog.Nop())

	_, err := repo.NamesByIDs(context.Background(), []string{"M1"})
	assert.Error(t, err)
}

func TestPlantRepo_CacheaYInvalida(t *testing.T) {
	_, rdb := newRedis(t)
	next := &countingPlants{plants: []entity.Plant{{ID: "p1", Code: "P1", Name: "Norte", Active: true}}}
	repo := cache.NewPlantRepo(next, rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := repo.ListActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, next.plants, got)
	}
	assert.Equal(t, 1, next.calls)

	require.NoError(t, repo.Invalidate(ctx))
	_, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
