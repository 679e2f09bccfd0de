// internal/core/domain/outcome.go
package domain

import (
	"sort"
	"time"
)

// PipelineOutcome es el resultado inmutable de una ejecución del pipeline.
type PipelineOutcome struct {
	RunID     string `json:"run_id"`
	PayloadID string `json:"payload_id,omitempty"`

	// OverallScore es nil cuando ningún analyzer produjo un score utilizable
	OverallScore *int  `json:"overall_score"`
	Level        Level `json:"level"`

	PerAnalyzer        map[string]AnalyzerResult `json:"per_analyzer"`
	AnalyzersRun       int                       `json:"analyzers_run"`
	AnalyzersSucceeded int                       `json:"analyzers_succeeded"`
	SufficientData     bool                      `json:"sufficient_data"`

	// ErrorKind es ErrorKindInsufficientData cuando SufficientData es false
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// TotalWeight suma de pesos de los analyzers que tuvieron éxito
	TotalWeight float64 `json:"total_weight"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// AnalyzerFailure resume un analyzer que no aportó score.
type AnalyzerFailure struct {
	Analyzer string    `json:"analyzer"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message,omitempty"`
	Attempts int       `json:"attempts"`
}

// HasScore indica si el outcome tiene un score numérico.
func (o *PipelineOutcome) HasScore() bool {
	return o != nil && o.OverallScore != nil
}

// Score retorna el score y si existe.
func (o *PipelineOutcome) Score() (int, bool) {
	if !o.HasScore() {
		return 0, false
	}
	return *o.OverallScore, true
}

// AnalyzerNames retorna los nombres de analyzers ordenados.
func (o *PipelineOutcome) AnalyzerNames() []string {
	names := make([]string, 0, len(o.PerAnalyzer))
	for name := range o.PerAnalyzer {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failures lista los analyzers que no tuvieron éxito, ordenados por nombre.
func (o *PipelineOutcome) Failures() []AnalyzerFailure {
	var failures []AnalyzerFailure
	for _, name := range o.AnalyzerNames() {
		res := o.PerAnalyzer[name]
		if res.Success {
			continue
		}
		failures = append(failures, AnalyzerFailure{
			Analyzer: name,
			Kind:     res.ErrorKind,
			Message:  res.Error,
			Attempts: res.Attempts,
		})
	}
	return failures
}
