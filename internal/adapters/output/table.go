// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"trustlens/internal/core/domain"
)

// WriteTable imprime un resumen legible del outcome en w.
func WriteTable(w io.Writer, outcome *domain.PipelineOutcome) error {
	var b strings.Builder

	b.WriteString(pterm.DefaultSection.Sprint("TrustLens Results"))

	summary := pterm.TableData{{"Run", outcome.RunID}}
	if outcome.PayloadID != "" {
		summary = append(summary, []string{"Payload", outcome.PayloadID})
	}
	summary = append(summary,
		[]string{"Overall score", formatOverall(outcome)},
		[]string{"Level", levelStyle(outcome.Level).Sprint(outcome.Level.String())},
		[]string{"Analyzers", fmt.Sprintf("%d succeeded / %d run", outcome.AnalyzersSucceeded, outcome.AnalyzersRun)},
		[]string{"Sufficient data", fmt.Sprintf("%t", outcome.SufficientData)},
		[]string{"Duration", outcome.Duration.Round(time.Millisecond).String()},
	)
	rendered, err := pterm.DefaultTable.WithData(summary).Srender()
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	b.WriteString(rendered)
	b.WriteString("\n\n")

	if len(outcome.PerAnalyzer) > 0 {
		rows := pterm.TableData{{"ANALYZER", "STATUS", "SCORE", "ATTEMPTS", "CACHED", "ELAPSED"}}
		for _, name := range outcome.AnalyzerNames() {
			res := outcome.PerAnalyzer[name]
			rows = append(rows, []string{
				name,
				statusLabel(res),
				scoreLabel(res),
				fmt.Sprintf("%d", res.Attempts),
				fmt.Sprintf("%t", res.FromCache),
				res.Elapsed.Round(time.Millisecond).String(),
			})
		}
		rendered, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(rows).Srender()
		if err != nil {
			return fmt.Errorf("failed to render analyzers: %w", err)
		}
		b.WriteString(rendered)
		b.WriteString("\n")
	} else {
		b.WriteString("No analyzers enabled.\n")
	}

	if failures := outcome.Failures(); len(failures) > 0 {
		b.WriteString(fmt.Sprintf("\nFailures (%d):\n", len(failures)))
		for i, f := range failures {
			msg := f.Message
			if msg == "" {
				msg = f.Kind.String()
			}
			b.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, f.Analyzer, f.Kind, msg))
		}
	}

	if !outcome.SufficientData {
		b.WriteString("\n")
		b.WriteString(pterm.Warning.Sprint("Too few analyzers succeeded; treat the score as indicative only."))
		b.WriteString("\n")
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// OutputTable imprime la tabla en stdout.
func OutputTable(outcome *domain.PipelineOutcome) error {
	return WriteTable(os.Stdout, outcome)
}

func formatOverall(o *domain.PipelineOutcome) string {
	score, ok := o.Score()
	if !ok {
		return "n/a"
	}
	return levelStyle(o.Level).Sprintf("%d/100", score)
}

func statusLabel(res domain.AnalyzerResult) string {
	if res.Success {
		return pterm.Green("ok")
	}
	switch res.ErrorKind {
	case domain.ErrorKindTimeout:
		return pterm.Yellow(res.ErrorKind.String())
	case domain.ErrorKindTransient:
		return pterm.LightRed(res.ErrorKind.String())
	default:
		return pterm.Red(res.ErrorKind.String())
	}
}

func scoreLabel(res domain.AnalyzerResult) string {
	if !res.Success {
		return "-"
	}
	return fmt.Sprintf("%d", res.Score)
}

func levelStyle(level domain.Level) *pterm.Style {
	switch level {
	case domain.LevelExcellent:
		return pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	case domain.LevelGood:
		return pterm.NewStyle(pterm.FgLightGreen)
	case domain.LevelFair:
		return pterm.NewStyle(pterm.FgYellow)
	case domain.LevelPoor:
		return pterm.NewStyle(pterm.FgRed)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}
