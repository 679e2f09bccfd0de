// Package enhance compone una segunda pasada de scoring sobre cualquier
// analyzer. El score final mezcla ambos según "blend"; si la segunda pasada
// falla, se conserva el resultado base marcado como degradado.
package enhance

import (
	"context"
	"fmt"
	"math"
	"os"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/errors"
	"trustlens/internal/platform/httpclient"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/registry"
)

// Claves de opciones que activan la mejora sobre un analyzer.
const (
	OptionEndpoint  = "enhance_endpoint"
	OptionBlend     = "enhance_blend"
	OptionAPIKeyEnv = "enhance_api_key_env"

	DefaultBlend = 0.5
)

// Scorer produce un score secundario a partir del contenido y del análisis base.
type Scorer interface {
	Score(ctx context.Context, payload *domain.ContentPayload, base ports.Analysis) (int, error)
}

// Analyzer decora un analyzer base con un Scorer secundario.
type Analyzer struct {
	base   ports.Analyzer
	scorer Scorer
	blend  float64
	logger logx.Logger
}

// Wrap construye el decorador. blend es el peso del score secundario en [0,1].
func Wrap(base ports.Analyzer, scorer Scorer, blend float64, logger logx.Logger) (*Analyzer, error) {
	if base == nil || scorer == nil {
		return nil, fmt.Errorf("%w: enhance requires a base analyzer and a scorer", domain.ErrInvalidConfig)
	}
	if err := registry.ValidateFloatRange(OptionBlend, blend, 0, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if logger == nil {
		logger = logx.NewNop()
	}
	return &Analyzer{
		base:   base,
		scorer: scorer,
		blend:  blend,
		logger: logger.With("analyzer", base.Name(), "decorator", "enhance"),
	}, nil
}

// Name conserva la identidad del analyzer base.
func (a *Analyzer) Name() string {
	return a.base.Name()
}

// InputKey combina la clave del analyzer base con lo que lee el Scorer.
// Sin clave propia del base, la clave del payload ya cubre ambos.
func (a *Analyzer) InputKey(payload *domain.ContentPayload) string {
	keyer, ok := a.base.(ports.InputKeyer)
	if !ok {
		return payload.CacheKey()
	}
	return keyer.InputKey(payload) + "\n" + payload.Title + "\n" + payload.Text
}

// Analyze ejecuta el analyzer base y luego la pasada secundaria.
func (a *Analyzer) Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
	base, err := a.base.Analyze(ctx, payload, options)
	if err != nil {
		return base, err
	}

	findings := base.Findings.Clone()
	if findings == nil {
		findings = domain.Findings{}
	}

	secondary, err := a.scorer.Score(ctx, payload, base)
	if err != nil {
		a.logger.Warn("enhancement failed, keeping base result", "error", err.Error())
		findings["enhancement"] = map[string]any{
			"applied": false,
			"error":   err.Error(),
		}
		// Un fallo transitorio deja el resultado degradado: se reintenta y no se cachea
		return ports.Analysis{Score: base.Score, Findings: findings, Degraded: !errors.IsPermanent(err)}, nil
	}

	baseScore := domain.ClampScore(base.Score)
	secondary = domain.ClampScore(secondary)
	final := int(math.Round((1-a.blend)*float64(baseScore) + a.blend*float64(secondary)))

	findings["enhancement"] = map[string]any{
		"applied":    true,
		"base_score": baseScore,
		"score":      secondary,
		"blend":      a.blend,
	}
	return ports.Analysis{Score: final, Findings: findings}, nil
}

// RemoteScorer obtiene el score secundario de un servicio JSON.
type RemoteScorer struct {
	client   *httpclient.Client
	analyzer string
	endpoint string
	apiKey   string
}

// NewRemoteScorer crea un scorer remoto para el analyzer indicado.
func NewRemoteScorer(client *httpclient.Client, analyzer, endpoint, apiKey string) *RemoteScorer {
	return &RemoteScorer{client: client, analyzer: analyzer, endpoint: endpoint, apiKey: apiKey}
}

type scoreRequest struct {
	Analyzer  string          `json:"analyzer"`
	Text      string          `json:"text"`
	Title     string          `json:"title,omitempty"`
	BaseScore int             `json:"base_score"`
	Findings  domain.Findings `json:"findings,omitempty"`
}

type scoreResponse struct {
	Score *int `json:"score"`
}

// Score envía el contenido y el análisis base al servicio.
func (s *RemoteScorer) Score(ctx context.Context, payload *domain.ContentPayload, base ports.Analysis) (int, error) {
	headers := map[string]string{}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	var resp scoreResponse
	err := s.client.PostJSON(ctx, s.endpoint, scoreRequest{
		Analyzer:  s.analyzer,
		Text:      payload.Text,
		Title:     payload.Title,
		BaseScore: base.Score,
		Findings:  base.Findings,
	}, headers, &resp)
	if err != nil {
		return 0, err
	}
	if resp.Score == nil {
		return 0, errors.Wrap(errors.ErrInvalidResponse, "enhancement response has no score")
	}
	return *resp.Score, nil
}

// Apply envuelve los analyzers cuya configuración define OptionEndpoint.
// Los analyzers sin esa opción se devuelven sin cambios.
func Apply(analyzers map[string]ports.Analyzer, configs []ports.AnalyzerConfig, client *httpclient.Client, logger logx.Logger) (map[string]ports.Analyzer, error) {
	out := make(map[string]ports.Analyzer, len(analyzers))
	for name, a := range analyzers {
		out[name] = a
	}

	var errs []error
	for _, cfg := range configs {
		endpoint := registry.GetStringConfig(cfg.Options, OptionEndpoint, "")
		base, ok := out[cfg.Name]
		if endpoint == "" || !ok {
			continue
		}

		apiKey := ""
		if env := registry.GetStringConfig(cfg.Options, OptionAPIKeyEnv, ""); env != "" {
			apiKey = os.Getenv(env)
		}
		blend := registry.GetFloat64Config(cfg.Options, OptionBlend, DefaultBlend)

		wrapped, err := Wrap(base, NewRemoteScorer(client, cfg.Name, endpoint, apiKey), blend, logger)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cfg.Name, err))
			continue
		}
		out[cfg.Name] = wrapped
	}

	if len(errs) > 0 {
		return out, errors.Join(errs...)
	}
	return out, nil
}
