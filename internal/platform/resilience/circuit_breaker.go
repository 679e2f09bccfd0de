// internal/platform/resilience/circuit_breaker.go
package resilience

import (
	"sync"
	"time"
)

// State representa el estado del circuit breaker.
type State int

const (
	StateClosed   State = iota // invocaciones normales
	StateOpen                  // analyzer fallando, se rechaza sin invocar
	StateHalfOpen              // probando si el analyzer se recuperó
)

// String retorna una representación legible del estado.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig parametriza los breakers de un BreakerSet.
type BreakerConfig struct {
	FailureThreshold int           // fallos consecutivos para abrir
	Cooldown         time.Duration // espera antes de pasar a half-open
	HalfOpenProbes   int           // éxitos en half-open para cerrar
}

// DefaultBreakerConfig retorna la configuración por defecto.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Cooldown:         60 * time.Second,
		HalfOpenProbes:   2,
	}
}

func (c BreakerConfig) normalized() BreakerConfig {
	def := DefaultBreakerConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = def.Cooldown
	}
	if c.HalfOpenProbes <= 0 {
		c.HalfOpenProbes = def.HalfOpenProbes
	}
	return c
}

// CircuitBreaker evita invocar un analyzer que viene fallando de forma
// reintentable en runs consecutivos.
type CircuitBreaker struct {
	mu          sync.Mutex
	cfg         BreakerConfig
	now         func() time.Time
	state       State
	failures    int
	probes      int
	inFlight    int
	openedAt    time.Time
	lastFailure time.Time
	lastSuccess time.Time
}

// NewCircuitBreaker crea un nuevo circuit breaker.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	return newCircuitBreaker(cfg, time.Now)
}

func newCircuitBreaker(cfg BreakerConfig, now func() time.Time) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   cfg.normalized(),
		now:   now,
		state: StateClosed,
	}
}

// Allow verifica si una invocación puede pasar.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.Cooldown {
			return false
		}
		cb.state = StateHalfOpen
		cb.probes = 0
		cb.inFlight = 1
		return true

	case StateHalfOpen:
		// Una sonda a la vez
		if cb.inFlight > 0 {
			return false
		}
		cb.inFlight = 1
		return true

	default:
		return false
	}
}

// RecordSuccess registra una invocación exitosa.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastSuccess = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures = 0

	case StateHalfOpen:
		cb.inFlight = 0
		cb.probes++
		if cb.probes >= cb.cfg.HalfOpenProbes {
			cb.state = StateClosed
			cb.failures = 0
			cb.probes = 0
		}
	}
}

// RecordFailure registra una invocación fallida.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	cb.lastFailure = now

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.trip(now)
		}

	case StateHalfOpen:
		cb.trip(now)
	}
}

func (cb *CircuitBreaker) trip(now time.Time) {
	cb.state = StateOpen
	cb.openedAt = now
	cb.failures = 0
	cb.probes = 0
	cb.inFlight = 0
}

// State retorna el estado actual del circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset resetea el circuit breaker al estado cerrado.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.probes = 0
	cb.inFlight = 0
}

// Stats retorna estadísticas del circuit breaker.
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerStats{
		State:       cb.state,
		Failures:    cb.failures,
		Probes:      cb.probes,
		LastFailure: cb.lastFailure,
		LastSuccess: cb.lastSuccess,
	}
}

// CircuitBreakerStats contiene estadísticas del circuit breaker.
type CircuitBreakerStats struct {
	State       State
	Failures    int
	Probes      int
	LastFailure time.Time
	LastSuccess time.Time
}

// BreakerSet mantiene un CircuitBreaker por analyzer, creado bajo demanda.
type BreakerSet struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	now      func() time.Time
	breakers map[string]*CircuitBreaker
}

// NewBreakerSet crea un set vacío con la configuración dada.
func NewBreakerSet(cfg BreakerConfig) *BreakerSet {
	return &BreakerSet{
		cfg:      cfg.normalized(),
		now:      time.Now,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// WithClock reemplaza el reloj de los breakers creados a partir de ahora.
func (s *BreakerSet) WithClock(now func() time.Time) *BreakerSet {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

// Get retorna el breaker del analyzer, creándolo si no existe.
func (s *BreakerSet) Get(name string) *CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.breakers[name]
	if !ok {
		cb = newCircuitBreaker(s.cfg, s.now)
		s.breakers[name] = cb
	}
	return cb
}

// States retorna el estado de cada breaker conocido.
func (s *BreakerSet) States() map[string]State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]State, len(s.breakers))
	for name, cb := range s.breakers {
		out[name] = cb.State()
	}
	return out
}
