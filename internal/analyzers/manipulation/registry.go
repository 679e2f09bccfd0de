package manipulation

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
			Description:   "Sensationalism: shouting, exclamations, clickbait and urgency cues",
			Version:       "1.0.0",
			Dimension:     "manipulation",
			DefaultWeight: 0.10,
			Cost:          20,
		},
	); err != nil {
		logx.New().Warn("failed to register manipulation analyzer", "error", err.Error())
	}
}

// factory lee la lista opcional "extra_clickbait" de las opciones.
func factory(cfg ports.AnalyzerConfig, logger logx.Logger) (ports.Analyzer, error) {
	extra := registry.GetSliceConfig(cfg.Options, "extra_clickbait", nil)
	return New(logger, extra), nil
}
