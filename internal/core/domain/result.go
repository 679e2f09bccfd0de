// internal/core/domain/result.go
package domain

import (
	"time"
)

// Findings datos estructurados que produce un analyzer junto a su score.
type Findings map[string]any

// Clone devuelve una copia profunda de mapas y slices anidados.
func (f Findings) Clone() Findings {
	if f == nil {
		return nil
	}
	out := make(Findings, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(Findings(val).Clone())
	case Findings:
		return val.Clone()
	case []any:
		cp := make([]any, len(val))
		for i, item := range val {
			cp[i] = cloneValue(item)
		}
		return cp
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// AnalyzerResult es el resultado final de un analyzer en una ejecución.
// Siempre existe, incluso cuando el analyzer falló o excedió su tiempo.
type AnalyzerResult struct {
	AnalyzerName string        `json:"analyzer"`
	Score        int           `json:"score"`
	Success      bool          `json:"success"`
	ErrorKind    ErrorKind     `json:"error_kind,omitempty"`
	Error        string        `json:"error,omitempty"`
	Findings     Findings      `json:"findings,omitempty"`
	FromCache    bool          `json:"from_cache"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	Attempts     int           `json:"attempts"`
	Degraded     bool          `json:"degraded,omitempty"`
}

// NewSuccessResult crea un resultado exitoso con el score acotado a [0,100].
func NewSuccessResult(name string, score int, findings Findings) AnalyzerResult {
	return AnalyzerResult{
		AnalyzerName: name,
		Score:        ClampScore(score),
		Success:      true,
		ErrorKind:    ErrorKindNone,
		Findings:     findings,
		Attempts:     1,
	}
}

// NewFailureResult crea un resultado degradado.
func NewFailureResult(name string, kind ErrorKind, err error) AnalyzerResult {
	res := AnalyzerResult{
		AnalyzerName: name,
		Success:      false,
		ErrorKind:    kind,
		Attempts:     1,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// Clone copia el resultado sin compartir Findings.
func (r AnalyzerResult) Clone() AnalyzerResult {
	r.Findings = r.Findings.Clone()
	return r
}

// ClampScore acota un score a [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
