package bias

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
			Description:   "Loaded language, absolutes and opinion markers",
			Version:       "1.0.0",
			Dimension:     "neutrality",
			DefaultWeight: 0.15,
			Cost:          20,
		},
	); err != nil {
		logx.New().Warn("failed to register bias analyzer", "error", err.Error())
	}
}

func factory(cfg ports.AnalyzerConfig, logger logx.Logger) (ports.Analyzer, error) {
	return New(logger), nil
}
