// Package feed mantiene la lista acotada de mensajes efímeros que acompaña a una sesión de revisión.
package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/StockCount-api/pkg/clock"
)

// Kind tipo de mensaje.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Valores por defecto (4.5 s, 5 mensajes).
const (
	DefaultTTL  = 4500 * time.Millisecond
	DefaultSize = 5
)

// Message entrada del feed.
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type item struct {
	msg   Message
	timer clock.Timer
}

// Feed lista de mensajes, más reciente primero. Cada mensaje expira por su cuenta.
// Es seguro para uso concurrente.
type Feed struct {
	mu     sync.Mutex
	clk    clock.Clock
	ttl    time.Duration
	size   int
	items  []item
	closed bool
}

// New crea un feed. ttl o size no positivos toman los valores por defecto.
func New(clk clock.Clock, ttl time.Duration, size int) *Feed {
	if clk == nil {
		clk = clock.System()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Feed{clk: clk, ttl: ttl, size: size}
}

// Push agrega un mensaje al frente y descarta los que excedan el tamaño.
// En un feed cerrado no hace nada.
func (f *Feed) Push(kind Kind, text string) Message {
	msg := Message{ID: uuid.New().String(), Kind: kind, Text: text, CreatedAt: f.clk.Now()}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return msg
	}

	it := item{msg: msg}
	it.timer = f.clk.AfterFunc(f.ttl, func() { f.expire(msg.ID) })
	f.items = append([]item{it}, f.items...)
	for len(f.items) > f.size {
		last := f.items[len(f.items)-1]
		last.timer.Stop()
		f.items = f.items[:len(f.items)-1]
	}
	return msg
}

func (f *Feed) expire(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for i, it := range f.items {
		if it.msg.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return
		}
	}
}

// Messages copia de los mensajes vigentes.
func (f *Feed) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.items))
	for i, it := range f.items {
		out[i] = it.msg
	}
	return out
}

// Clear descarta todos los mensajes y sus temporizadores.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopAll()
}

// Close cancela los temporizadores pendientes; los callbacks que ya estén en vuelo no tienen efecto.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopAll()
	f.closed = true
}

func (f *Feed) stopAll() {
	for _, it := range f.items {
		it.timer.Stop()
	}
	f.items = nil
}
