package credibility

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
			Description:   "Publisher reputation from domain, public suffix and authorship",
			Version:       "1.0.0",
			Dimension:     "source",
			DefaultWeight: 0.30,
			Cost:          10,
		},
	); err != nil {
		logx.New().Warn("failed to register credibility analyzer", "error", err.Error())
	}
}

func factory(cfg ports.AnalyzerConfig, logger logx.Logger) (ports.Analyzer, error) {
	return New(logger), nil
}
