// internal/platform/workerpool/schedulers.go
package workerpool

import (
	"fmt"
	"sort"
	"strings"
)

// Nombres de los schedulers disponibles.
const (
	SchedulerPriority = "priority"
	SchedulerCost     = "cost"
	SchedulerHybrid   = "hybrid"
	SchedulerFIFO     = "fifo"
)

// NewScheduler construye un scheduler por nombre.
func NewScheduler(name string) (Scheduler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SchedulerPriority:
		return NewPriorityScheduler(), nil
	case SchedulerCost:
		return NewCostScheduler(), nil
	case SchedulerHybrid:
		return NewHybridScheduler(0.5), nil
	case SchedulerFIFO:
		return NewFIFOScheduler(), nil
	default:
		return nil, fmt.Errorf("unknown scheduler %q", name)
	}
}

// PriorityScheduler ordena tareas por prioridad (mayor primero).
type PriorityScheduler struct{}

// NewPriorityScheduler crea un scheduler basado en prioridad.
func NewPriorityScheduler() *PriorityScheduler {
	return &PriorityScheduler{}
}

// Schedule ordena por prioridad descendente; a igual prioridad, menor costo primero.
func (s *PriorityScheduler) Schedule(tasks []Task) []Task {
	scheduled := clone(tasks)

	sort.SliceStable(scheduled, func(i, j int) bool {
		if scheduled[i].Priority() != scheduled[j].Priority() {
			return scheduled[i].Priority() > scheduled[j].Priority()
		}
		return scheduled[i].Cost() < scheduled[j].Cost()
	})

	return scheduled
}

// Name retorna el nombre del scheduler.
func (s *PriorityScheduler) Name() string {
	return SchedulerPriority
}

// CostScheduler ejecuta primero las tareas baratas.
type CostScheduler struct{}

// NewCostScheduler crea un scheduler basado en costo.
func NewCostScheduler() *CostScheduler {
	return &CostScheduler{}
}

// Schedule ordena por costo ascendente; a igual costo, mayor prioridad primero.
func (s *CostScheduler) Schedule(tasks []Task) []Task {
	scheduled := clone(tasks)

	sort.SliceStable(scheduled, func(i, j int) bool {
		if scheduled[i].Cost() != scheduled[j].Cost() {
			return scheduled[i].Cost() < scheduled[j].Cost()
		}
		return scheduled[i].Priority() > scheduled[j].Priority()
	})

	return scheduled
}

// Name retorna el nombre del scheduler.
func (s *CostScheduler) Name() string {
	return SchedulerCost
}

// HybridScheduler combina prioridad y costo con un factor de balance.
// BalanceFactor [0.0-1.0]: 0.0 = solo prioridad, 1.0 = solo costo
type HybridScheduler struct {
	BalanceFactor float64
}

// NewHybridScheduler crea un scheduler híbrido.
func NewHybridScheduler(balanceFactor float64) *HybridScheduler {
	if balanceFactor < 0.0 {
		balanceFactor = 0.0
	}
	if balanceFactor > 1.0 {
		balanceFactor = 1.0
	}

	return &HybridScheduler{
		BalanceFactor: balanceFactor,
	}
}

// Schedule ordena por score = priority*(1-balance) - cost*balance, descendente.
func (s *HybridScheduler) Schedule(tasks []Task) []Task {
	type scored struct {
		task  Task
		score float64
	}

	items := make([]scored, len(tasks))
	for i, task := range tasks {
		items[i] = scored{
			task:  task,
			score: float64(task.Priority())*(1.0-s.BalanceFactor) - float64(task.Cost())*s.BalanceFactor,
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	scheduled := make([]Task, len(items))
	for i, it := range items {
		scheduled[i] = it.task
	}
	return scheduled
}

// Name retorna el nombre del scheduler.
func (s *HybridScheduler) Name() string {
	return SchedulerHybrid
}

// FIFOScheduler no reordena.
type FIFOScheduler struct{}

// NewFIFOScheduler crea un scheduler FIFO.
func NewFIFOScheduler() *FIFOScheduler {
	return &FIFOScheduler{}
}

// Schedule retorna las tareas en el orden original.
func (s *FIFOScheduler) Schedule(tasks []Task) []Task {
	return clone(tasks)
}

// Name retorna el nombre del scheduler.
func (s *FIFOScheduler) Name() string {
	return SchedulerFIFO
}

func clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
