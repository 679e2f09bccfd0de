package factcheck

import (
	"time"

	"trustlens/internal/core/ports"
	"trustlens/internal/platform/httpclient"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/registry"
)

// Auto-registro al importar el paquete
func init() {
	if err := registry.Global().Register(
		analyzerName,
		factory,
		ports.AnalyzerMetadata{
			Name:            analyzerName,
			Description:     "Claim verification through a remote fact-checking service",
			Version:         "1.0.0",
			Dimension:       "accuracy",
			DefaultWeight:   0.25,
			RequiresNetwork: true,
			Cost:            80,
		},
	); err != nil {
		logx.New().Warn("failed to register factcheck analyzer", "error", err.Error())
	}
}

// factory valida las opciones antes de construir el cliente: sin endpoint el
// analyzer no se construye y el orquestador lo reporta como fallo definitivo.
func factory(cfg ports.AnalyzerConfig, logger logx.Logger) (ports.Analyzer, error) {
	if _, err := parseSettings(cfg.Options); err != nil {
		return nil, err
	}

	// El timeout real lo impone el TimeoutGuard; este es solo un techo.
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := httpclient.New(httpclient.Config{
		Timeout:   timeout,
		UserAgent: "TrustLens/1.0 (factcheck)",
	}, logger)

	return New(client, logger), nil
}
