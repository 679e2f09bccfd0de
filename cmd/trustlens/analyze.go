// cmd/trustlens/analyze.go
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trustlens/internal/adapters/output"
	"trustlens/internal/core/domain"
	"trustlens/internal/platform/config"
	"trustlens/internal/platform/logx"
)

var (
	analyzeFlags *config.Flags
	analyzeInput inputOptions
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze <file|->",
	Short:   "Analyze a text or HTML document and print its trust score",
	Example: config.Examples,
	Args:    cobra.ExactArgs(1),
	RunE:    runAnalyze,
}

func init() {
	fs := analyzeCmd.Flags()
	analyzeFlags = config.BindFlags(fs)

	fs.StringVar(&analyzeInput.ID, "id", "", "Identificador del contenido")
	fs.StringVarP(&analyzeInput.Kind, "kind", "k", string(domain.ContentKindArticle), "Tipo de contenido: article|transcript")
	fs.StringVar(&analyzeInput.Title, "title", "", "Título (con --html se toma de <title> si falta)")
	fs.StringVarP(&analyzeInput.URL, "url", "u", "", "URL original del contenido")
	fs.StringVarP(&analyzeInput.Domain, "domain", "d", "", "Dominio del publicador (se deriva de --url si falta)")
	fs.StringVarP(&analyzeInput.Author, "author", "a", "", "Autor o presentador")
	fs.StringVar(&analyzeInput.Published, "published", "", "Fecha de publicación (YYYY-MM-DD o RFC3339)")
	fs.BoolVar(&analyzeInput.HTML, "html", false, "La entrada es HTML")

	analyzeCmd.SetUsageTemplate(analyzeCmd.UsageTemplate() + "\n" + config.EnvHelp + "\n")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(analyzeFlags)
	if err != nil {
		return configError(err)
	}

	logger := logx.NewWithLevel(logx.ParseLevel(cfg.LogLevel))
	logger.Debug("trustlens starting",
		"version", version,
		"commit", commit,
		"enabled", cfg.EnabledAnalyzers(),
		"workers", cfg.Workers,
	)

	raw, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return configError(err)
	}
	payload, err := buildPayload(raw, analyzeInput)
	if err != nil {
		return configError(err)
	}

	p, err := buildPipeline(cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer p.Close()

	start := time.Now()
	outcome, err := p.orch.RunEnabled(cmd.Context(), payload)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := writeOutputs(cmd, cfg, outcome); err != nil {
		logger.Err(err, "phase", "output")
		return err
	}

	logger.Info("trustlens finished",
		"run", outcome.RunID,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"succeeded", outcome.AnalyzersSucceeded,
		"run_count", outcome.AnalyzersRun,
		"sufficient", outcome.SufficientData,
	)
	return nil
}

// writeOutputs escribe la tabla y/o el JSON según la configuración.
func writeOutputs(cmd *cobra.Command, cfg config.Config, outcome *domain.PipelineOutcome) error {
	format := cfg.Output.Format

	if format == "table" || format == "both" {
		if err := output.WriteTable(cmd.OutOrStdout(), outcome); err != nil {
			return fmt.Errorf("table output: %w", err)
		}
	}

	if format == "json" || format == "both" {
		report := output.BuildReport(version, outcome)
		if cfg.Output.JSONPath == "" {
			if err := output.WriteJSON(cmd.OutOrStdout(), report); err != nil {
				return fmt.Errorf("json output: %w", err)
			}
			return nil
		}
		if err := output.OutputJSON(cfg.Output.JSONPath, report); err != nil {
			return fmt.Errorf("json output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "JSON report written to %s\n", cfg.Output.JSONPath)
	}

	return nil
}
