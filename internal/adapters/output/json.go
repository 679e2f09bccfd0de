// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"trustlens/internal/core/domain"
)

// Report es el documento JSON emitido por la CLI.
type Report struct {
	Version  string                   `json:"version,omitempty"`
	Outcome  *domain.PipelineOutcome  `json:"outcome"`
	Failures []domain.AnalyzerFailure `json:"failures,omitempty"`
}

// BuildReport construye el reporte desde un outcome.
func BuildReport(version string, outcome *domain.PipelineOutcome) Report {
	return Report{
		Version:  version,
		Outcome:  outcome,
		Failures: outcome.Failures(),
	}
}

// WriteJSON codifica el reporte con indentación en w.
func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// OutputJSON escribe el reporte en path, creando los directorios necesarios.
// Con path vacío escribe en stdout.
func OutputJSON(path string, report Report) error {
	if path == "" {
		return WriteJSON(os.Stdout, report)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return WriteJSON(f, report)
}
