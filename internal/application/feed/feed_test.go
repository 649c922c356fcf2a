package feed_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockCount-api/internal/application/feed"
	"github.com/jhoicas/StockCount-api/pkg/clock"
)

func newFeed() (*feed.Feed, *clock.Manual) {
	clk := clock.NewManual(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	return feed.New(clk, feed.DefaultTTL, feed.DefaultSize), clk
}

func TestFeed_MasRecientePrimeroYMaximoCinco(t *testing.T) {
	f, _ := newFeed()
	for i := 1; i <= 7; i++ {
		f.Push(feed.KindSuccess, fmt.Sprintf("m%d", i))
	}

	msgs := f.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, "m7", msgs[0].Text)
	assert.Equal(t, "m3", msgs[4].Text)
}

func TestFeed_ExpiraCadaMensajePorSuCuenta(t *testing.T) {
	f, clk := newFeed()
	f.Push(feed.KindSuccess, "primero")
	clk.Advance(2 * time.Second)
	f.Push(feed.KindError, "segundo")

	clk.Advance(2500 * time.Millisecond)
	msgs := f.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "segundo", msgs[0].Text)

	clk.Advance(2 * time.Second)
	assert.Empty(t, f.Messages())
}

func TestFeed_DescartadosNoDejanTemporizadores(t *testing.T) {
	f, clk := newFeed()
	for i := 0; i < 8; i++ {
		f.Push(feed.KindSuccess, "x")
	}
	assert.Equal(t, 5, clk.Pending())
}

func TestFeed_CloseCancelaTemporizadores(t *testing.T) {
	f, clk := newFeed()
	f.Push(feed.KindSuccess, "a")
	f.Push(feed.KindSuccess, "b")

	f.Close()
	assert.Zero(t, clk.Pending())
	assert.Empty(t, f.Messages())

	f.Push(feed.KindSuccess, "después de cerrar")
	assert.Empty(t, f.Messages())
	assert.NotPanics(t, func() { clk.Advance(time.Minute) })
}

func TestFeed_Clear(t *testing.T) {
	f, clk := newFeed()
	f.Push(feed.KindError, "a")
	f.Clear()
	assert.Empty(t, f.Messages())
	assert.Zero(t, clk.Pending())

	f.Push(feed.KindSuccess, "b")
	assert.Len(t, f.Messages(), 1)
}
