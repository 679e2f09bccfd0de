package sourcing

import (
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/registry"
)

// Auto-registro al importar el paquete
func init() {
	if err := registry.Global().Register(
		analyzerName,
		factory,
		ports.AnalyzerMetadata{
			Name:          analyzerName,
			Description:   "External links, quotations, citations and attributions",
			Version:       "1.0.0",
			Dimension:     "evidence",
			DefaultWeight: 0.20,
			Cost:          30,
		},
	); err != nil {
		logx.New().Warn("failed to register sourcing analyzer", "error", err.Error())
	}
}

func factory(cfg ports.AnalyzerConfig, logger logx.Logger) (ports.Analyzer, error) {
	return New(logger), nil
}
