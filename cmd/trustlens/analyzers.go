// cmd/trustlens/analyzers.go
package main

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"trustlens/internal/platform/config"
	"trustlens/internal/platform/registry"
)

var analyzersFlags *config.Flags

var analyzersCmd = &cobra.Command{
	Use:   "analyzers",
	Short: "List available analyzers and their effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(analyzersFlags)
		if err != nil {
			return configError(err)
		}
		return writeAnalyzers(cmd.OutOrStdout(), cfg)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFlags)
		if err != nil {
			return configError(err)
		}
		out, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	},
}

var configFlags *config.Flags

func init() {
	analyzersFlags = config.BindFlags(analyzersCmd.Flags())
	configFlags = config.BindFlags(configCmd.Flags())

	rootCmd.AddCommand(analyzersCmd)
	rootCmd.AddCommand(configCmd)
}

// writeAnalyzers imprime el catálogo de analyzers registrados cruzado con
// la configuración efectiva.
func writeAnalyzers(w io.Writer, cfg config.Config) error {
	byName := make(map[string]int, len(cfg.Analyzers))
	for i, a := range cfg.Analyzers {
		byName[a.Name] = i
	}

	rows := pterm.TableData{{"NAME", "ENABLED", "WEIGHT", "TIMEOUT", "RETRIES", "NETWORK", "DESCRIPTION"}}
	for _, name := range registry.Global().List() {
		meta, _ := registry.Global().GetMetadata(name)

		enabled, weight, timeout, retries := "no", "-", "-", "-"
		if i, ok := byName[name]; ok {
			a := cfg.Analyzers[i]
			if a.Enabled {
				enabled = "yes"
			}
			weight = fmt.Sprintf("%.2f", a.Weight)
			timeout = a.Timeout.String()
			retries = fmt.Sprintf("%d", a.MaxRetries)
		}

		network := ""
		if meta.RequiresNetwork {
			network = "yes"
		}

		rows = append(rows, []string{name, enabled, weight, timeout, retries, network, meta.Description})
	}

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return fmt.Errorf("failed to render analyzers: %w", err)
	}
	_, err = fmt.Fprintln(w, rendered)
	return err
}
