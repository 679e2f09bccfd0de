// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"trustlens/internal/core/domain"
)

// PTermPresenter implementa Presenter usando pterm para colores,
// símbolos y paneles. Escribe líneas completas en w, por lo que
// eventos concurrentes nunca se intercalan dentro de una línea.
type PTermPresenter struct {
	mu sync.Mutex
	w  io.Writer

	runStart time.Time
	started  map[string]time.Time
	total    int
	finished int
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter(w io.Writer) *PTermPresenter {
	return &PTermPresenter{
		w:       w,
		started: make(map[string]time.Time),
	}
}

// Start inicia la presentación mostrando la cabecera de la ejecución
func (p *PTermPresenter) Start(info RunInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.runStart = time.Now()
	p.total = len(info.Analyzers)
	p.finished = 0

	var b strings.Builder
	b.WriteString(pterm.DefaultSection.Sprint("Trust analysis"))

	content := fmt.Sprintf("Run: %s\n", pterm.Cyan(info.RunID))
	if info.PayloadID != "" {
		content += fmt.Sprintf("Payload: %s\n", pterm.Cyan(info.PayloadID))
	}
	content += fmt.Sprintf("Analyzers (%d): %s", len(info.Analyzers), strings.Join(info.Analyzers, ", "))

	b.WriteString(pterm.DefaultBox.
		WithTitle("Run").
		WithTitleTopCenter().
		WithRightPadding(2).
		WithLeftPadding(2).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Sprint(content))
	b.WriteString("\n")

	p.write(b.String())
}

// StartAnalyzer muestra la línea de inicio de un analyzer
func (p *PTermPresenter) StartAnalyzer(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started[name] = time.Now()
	p.write(p.line(name, StatusRunning, "running..."))
}

// FinishAnalyzer muestra el resultado final de un analyzer
func (p *PTermPresenter) FinishAnalyzer(name string, status Status, result domain.AnalyzerResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.finished++
	delete(p.started, name)

	detail := resultDetail(status, result)
	if result.Elapsed > 0 {
		detail += fmt.Sprintf(" (%s)", formatDuration(result.Elapsed))
	}
	if result.Attempts > 1 {
		detail += fmt.Sprintf(" after %d attempts", result.Attempts)
	}
	if p.total > 0 {
		detail += pterm.Gray(fmt.Sprintf(" [%d/%d]", p.finished, p.total))
	}

	p.write(p.line(name, status, detail))
}

// Info muestra un mensaje informativo
func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.write(pterm.Info.Sprintln(msg))
}

// Warning muestra una advertencia
func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.write(pterm.Warning.Sprintln(msg))
}

// Error muestra un error
func (p *PTermPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.write(pterm.Error.Sprintln(msg))
}

// Finish finaliza la presentación con estadísticas finales
func (p *PTermPresenter) Finish(stats RunStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	duration := stats.Duration
	if duration == 0 && !p.runStart.IsZero() {
		duration = time.Since(p.runStart)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(pterm.LightBlue(SeparatorHeavy))
	b.WriteString("\n")

	content := fmt.Sprintf("Score: %s (%s)\n", pterm.Bold.Sprint(formatScore(stats.Score)), stats.Level)
	content += fmt.Sprintf("Succeeded: %s\n", pterm.Green(fmt.Sprintf("%d", stats.Succeeded)))
	if stats.Failed > 0 {
		content += fmt.Sprintf("Failed: %s\n", pterm.Red(fmt.Sprintf("%d", stats.Failed)))
	}
	if stats.Cached > 0 {
		content += fmt.Sprintf("Cached: %d\n", stats.Cached)
	}
	content += fmt.Sprintf("Duration: %s", formatDuration(duration))

	boxStyle := pterm.NewStyle(pterm.FgGreen)
	if !stats.SufficientData {
		boxStyle = pterm.NewStyle(pterm.FgYellow)
	}
	b.WriteString(pterm.DefaultBox.
		WithTitle("Run completed").
		WithTitleTopCenter().
		WithRightPadding(2).
		WithLeftPadding(2).
		WithBoxStyle(boxStyle).
		Sprint(content))
	b.WriteString("\n")

	p.write(b.String())
}

// Close limpia recursos del presenter
func (p *PTermPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = make(map[string]time.Time)
	return nil
}

// line renderiza una línea con el estado de un analyzer
func (p *PTermPresenter) line(name string, status Status, detail string) string {
	return fmt.Sprintf("  %s %s %s\n",
		status.Style().Sprint(status.Symbol()),
		status.Style().Sprint(name),
		detail,
	)
}

func (p *PTermPresenter) write(s string) {
	_, _ = io.WriteString(p.w, s)
}
