// internal/testutil/mocks.go
package testutil

import (
	"sync"
	"time"
)

// Nota: Los mocks específicos de domain/ports están en sus respectivos paquetes
// Este archivo contiene solo utilidades genéricas sin dependencias circulares

// ManualClock es un reloj controlable para tests de TTL.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock crea un reloj fijado en start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now retorna la hora actual del reloj.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance adelanta el reloj d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SleepRecorder registra las esperas pedidas sin dormir realmente.
type SleepRecorder struct {
	mu     sync.Mutex
	Delays []time.Duration
}

// Record guarda d y retorna inmediatamente.
func (r *SleepRecorder) Record(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Delays = append(r.Delays, d)
}

// Snapshot retorna una copia de las esperas registradas.
func (r *SleepRecorder) Snapshot() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.Delays...)
}
