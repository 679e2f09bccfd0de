// internal/platform/workerpool/worker_pool.go
package workerpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"trustlens/internal/platform/logx"
)

// ErrPoolStopped se retorna al enviar tareas a un pool detenido.
var ErrPoolStopped = errors.New("worker pool stopped")

// Task representa una tarea a ejecutar en el worker pool.
type Task interface {
	// Execute ejecuta la tarea
	Execute(ctx context.Context) error

	// Priority retorna la prioridad de la tarea (mayor = más prioritario)
	Priority() int

	// Cost retorna el costo estimado de la tarea (menor = más rápida)
	Cost() int

	// Name retorna el nombre de la tarea
	Name() string
}

// Scheduler define la estrategia de scheduling.
type Scheduler interface {
	// Schedule ordena las tareas según la estrategia
	Schedule(tasks []Task) []Task

	// Name retorna el nombre del scheduler
	Name() string
}

// TaskResult representa el resultado de una tarea.
type TaskResult struct {
	Task     Task
	Error    error
	Duration time.Duration
}

// job es una tarea encolada junto con el canal de su Submit.
type job struct {
	ctx     context.Context
	task    Task
	results chan<- TaskResult
}

// WorkerPool ejecuta tareas con un número fijo de workers persistentes.
// Varios Submit concurrentes comparten los mismos workers.
type WorkerPool struct {
	workers   int
	scheduler Scheduler
	logger    logx.Logger

	queue chan job
	done  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// WorkerPoolConfig configura el worker pool.
type WorkerPoolConfig struct {
	Workers   int
	Scheduler Scheduler
	Logger    logx.Logger
}

// NewWorkerPool crea un nuevo worker pool.
func NewWorkerPool(cfg WorkerPoolConfig) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewPriorityScheduler()
	}
	if cfg.Logger == nil {
		cfg.Logger = logx.NewNop()
	}

	return &WorkerPool{
		workers:   cfg.Workers,
		scheduler: cfg.Scheduler,
		logger:    cfg.Logger.With("component", "worker-pool"),
		queue:     make(chan job),
		done:      make(chan struct{}),
	}
}

// Start inicia los workers. Llamadas repetidas no tienen efecto.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		wp.logger.Debug("starting worker pool", "workers", wp.workers, "scheduler", wp.scheduler.Name())
		for i := 0; i < wp.workers; i++ {
			wp.wg.Add(1)
			go wp.worker(i)
		}
	})
}

// worker es el goroutine que procesa tareas.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.done:
			return
		case j := <-wp.queue:
			wp.execute(id, j)
		}
	}
}

// execute ejecuta una tarea y entrega su resultado.
func (wp *WorkerPool) execute(workerID int, j job) {
	// Una tarea encolada cuyo Submit ya venció no se inicia
	if err := j.ctx.Err(); err != nil {
		j.results <- TaskResult{Task: j.task, Error: err}
		return
	}

	start := time.Now()
	err := j.task.Execute(j.ctx)
	duration := time.Since(start)

	wp.logger.Debug("task completed",
		"worker_id", workerID,
		"task", j.task.Name(),
		"duration_ms", duration.Milliseconds(),
		"error", err != nil,
	)

	// El canal tiene capacidad para todas las tareas del Submit: nunca bloquea
	j.results <- TaskResult{Task: j.task, Error: err, Duration: duration}
}

// Submit ordena las tareas con el scheduler, las ejecuta y espera sus
// resultados. Si ctx termina antes, retorna los resultados recibidos hasta
// ese momento; las tareas pendientes no se inician y las que están en curso
// reciben ctx cancelado.
func (wp *WorkerPool) Submit(ctx context.Context, tasks []Task) ([]TaskResult, error) {
	if len(tasks) == 0 {
		return []TaskResult{}, nil
	}
	select {
	case <-wp.done:
		return nil, ErrPoolStopped
	default:
	}
	wp.Start()

	scheduled := wp.scheduler.Schedule(tasks)
	results := make(chan TaskResult, len(scheduled))

	fed := make(chan int, 1)
	go func() {
		n := 0
		defer func() { fed <- n }()
		for _, task := range scheduled {
			select {
			case wp.queue <- job{ctx: ctx, task: task, results: results}:
				n++
			case <-ctx.Done():
				return
			case <-wp.done:
				return
			}
		}
	}()

	collected := make([]TaskResult, 0, len(scheduled))
	for len(collected) < len(scheduled) {
		select {
		case res := <-results:
			collected = append(collected, res)

		case <-ctx.Done():
			wp.logger.Debug("submit deadline reached",
				"completed", len(collected),
				"total", len(scheduled),
			)
			return drain(collected, results), ctx.Err()

		case <-wp.done:
			return drain(collected, results), ErrPoolStopped
		}
	}

	<-fed
	return collected, nil
}

// drain agrega los resultados que ya estaban listos sin esperar más.
func drain(collected []TaskResult, results <-chan TaskResult) []TaskResult {
	for {
		select {
		case res := <-results:
			collected = append(collected, res)
		default:
			return collected
		}
	}
}

// Stop detiene los workers y espera a que terminen las tareas en curso.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.done)
		wp.wg.Wait()
		wp.logger.Debug("worker pool stopped")
	})
}

// Stats retorna estadísticas del worker pool.
func (wp *WorkerPool) Stats() WorkerPoolStats {
	return WorkerPoolStats{
		Workers:       wp.workers,
		SchedulerName: wp.scheduler.Name(),
	}
}

// WorkerPoolStats contiene estadísticas del worker pool.
type WorkerPoolStats struct {
	Workers       int
	SchedulerName string
}
