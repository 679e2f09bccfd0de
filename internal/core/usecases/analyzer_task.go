// internal/core/usecases/analyzer_task.go
package usecases

import (
	"context"
	"fmt"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
)

// defaultAnalyzerCost costo usado cuando el analyzer no declara uno.
const defaultAnalyzerCost = 50

// AnalyzerTask adapta una invocación envuelta de analyzer a workerpool.Task.
type AnalyzerTask struct {
	cfg    ports.AnalyzerConfig
	cost   int
	invoke func(ctx context.Context) domain.AnalyzerResult
	result domain.AnalyzerResult
	done   bool
}

// NewAnalyzerTask crea una nueva AnalyzerTask.
func NewAnalyzerTask(cfg ports.AnalyzerConfig, cost int, invoke func(ctx context.Context) domain.AnalyzerResult) *AnalyzerTask {
	if cost <= 0 {
		cost = defaultAnalyzerCost
	}
	return &AnalyzerTask{
		cfg:    cfg,
		cost:   cost,
		invoke: invoke,
	}
}

// Execute ejecuta la invocación. El error solo informa al pool; el resultado
// degradado queda en Result.
func (t *AnalyzerTask) Execute(ctx context.Context) error {
	t.result = t.invoke(ctx)
	t.done = true
	if !t.result.Success {
		return fmt.Errorf("%s: %s", t.result.ErrorKind, t.result.Error)
	}
	return nil
}

// Priority retorna la prioridad configurada.
func (t *AnalyzerTask) Priority() int {
	return t.cfg.Priority
}

// Cost retorna el costo estimado.
func (t *AnalyzerTask) Cost() int {
	return t.cost
}

// Name retorna el nombre del analyzer.
func (t *AnalyzerTask) Name() string {
	return t.cfg.Name
}

// Done indica si la invocación llegó a ejecutarse. El pool puede reportar
// una tarea que descartó sin iniciar porque su deadline ya había vencido.
func (t *AnalyzerTask) Done() bool {
	return t.done
}

// Result retorna el resultado. Solo es válido después de que el pool
// reportó la tarea como terminada y Done es true.
func (t *AnalyzerTask) Result() domain.AnalyzerResult {
	return t.result
}
