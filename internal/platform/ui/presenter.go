// internal/platform/ui/presenter.go
package ui

import (
	"fmt"
	"io"
	"time"

	"trustlens/internal/core/domain"
)

// UIMode define el modo de visualización del progreso
type UIMode string

const (
	UIModeProgress UIMode = "progress" // Líneas de progreso con pterm (default)
	UIModeRaw      UIMode = "raw"      // Logs logfmt sin formato visual
	UIModeJSON     UIMode = "json"     // Logs JSON estructurados
	UIModeQuiet    UIMode = "quiet"    // Sin UI visual
)

// Presenter define la interfaz para presentar el progreso de una
// ejecución del pipeline de análisis.
type Presenter interface {
	// Start inicia la presentación con información de la ejecución
	Start(info RunInfo)

	// StartAnalyzer notifica que un analyzer comenzó a ejecutarse
	StartAnalyzer(name string)

	// FinishAnalyzer notifica el resultado final de un analyzer
	FinishAnalyzer(name string, status Status, result domain.AnalyzerResult)

	// Info muestra un mensaje informativo
	Info(msg string)

	// Warning muestra una advertencia
	Warning(msg string)

	// Error muestra un error
	Error(msg string)

	// Finish finaliza la presentación con estadísticas finales
	Finish(stats RunStats)

	// Close limpia recursos del presenter
	Close() error
}

// RunInfo contiene información inicial de una ejecución
type RunInfo struct {
	RunID     string
	PayloadID string
	Analyzers []string
}

// RunStats contiene estadísticas finales de una ejecución
type RunStats struct {
	RunID          string
	Duration       time.Duration
	Succeeded      int
	Failed         int
	Cached         int
	Score          *int
	Level          domain.Level
	SufficientData bool
}

// StatsFromOutcome resume un outcome para la presentación.
func StatsFromOutcome(outcome *domain.PipelineOutcome) RunStats {
	if outcome == nil {
		return RunStats{}
	}

	stats := RunStats{
		RunID:          outcome.RunID,
		Duration:       outcome.Duration,
		Succeeded:      outcome.AnalyzersSucceeded,
		Failed:         outcome.AnalyzersRun - outcome.AnalyzersSucceeded,
		Score:          outcome.OverallScore,
		Level:          outcome.Level,
		SufficientData: outcome.SufficientData,
	}
	for _, res := range outcome.PerAnalyzer {
		if res.FromCache {
			stats.Cached++
		}
	}
	return stats
}

// NewPresenter crea el presenter correspondiente al modo.
func NewPresenter(mode UIMode, w io.Writer) (Presenter, error) {
	switch mode {
	case UIModeProgress, "":
		return NewPTermPresenter(w), nil
	case UIModeRaw:
		return NewRawPresenter(w, LogFormatText), nil
	case UIModeJSON:
		return NewRawPresenter(w, LogFormatJSON), nil
	case UIModeQuiet:
		return NewNoopPresenter(), nil
	default:
		return nil, fmt.Errorf("unknown UI mode %q", mode)
	}
}
