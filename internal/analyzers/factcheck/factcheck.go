// Package factcheck delega la verificación de afirmaciones en un servicio
// remoto que responde JSON. El score sale del servicio o, si este solo
// devuelve veredictos por afirmación, de la proporción de afirmaciones
// verificadas.
package factcheck

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/errors"
	"trustlens/internal/platform/httpclient"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/registry"
	"trustlens/internal/platform/validator"
)

const (
	analyzerName      = "factcheck"
	defaultAPIKeyEnv  = "TRUSTLENS_FACTCHECK_API_KEY"
	defaultLanguage   = "en"
	defaultMaxChars   = 20000
	verdictSupported  = "supported"
	verdictRefuted    = "refuted"
	verdictMixed      = "mixed"
	verdictUnverified = "unverified"
)

// checkRequest es el cuerpo enviado al servicio.
type checkRequest struct {
	Kind     string `json:"kind"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text"`
	URL      string `json:"url,omitempty"`
	Language string `json:"language"`
}

// Claim una afirmación evaluada por el servicio.
type Claim struct {
	Text    string `json:"text"`
	Verdict string `json:"verdict"`
	Source  string `json:"source,omitempty"`
}

// checkResponse respuesta del servicio. Score es opcional.
type checkResponse struct {
	Score  *int    `json:"score"`
	Claims []Claim `json:"claims"`
}

type settings struct {
	endpoint string
	apiKey   string
	language string
	maxChars int
}

func parseSettings(options map[string]any) (settings, error) {
	s := settings{
		endpoint: registry.GetStringConfig(options, "endpoint", ""),
		language: registry.GetStringConfig(options, "language", defaultLanguage),
		maxChars: registry.GetIntConfig(options, "max_chars", defaultMaxChars),
	}
	if s.endpoint == "" {
		return s, fmt.Errorf("%w: factcheck requires the \"endpoint\" option", domain.ErrInvalidConfig)
	}
	if !validator.IsURL(s.endpoint) {
		return s, fmt.Errorf("%w: factcheck endpoint %q is not a URL", domain.ErrInvalidConfig, s.endpoint)
	}
	if s.maxChars <= 0 {
		s.maxChars = defaultMaxChars
	}
	s.apiKey = os.Getenv(registry.GetStringConfig(options, "api_key_env", defaultAPIKeyEnv))
	return s, nil
}

// Analyzer consulta el servicio de fact-checking.
type Analyzer struct {
	client *httpclient.Client
	logger logx.Logger
}

// New crea el analyzer sobre un cliente HTTP ya configurado.
func New(client *httpclient.Client, logger logx.Logger) *Analyzer {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &Analyzer{
		client: client,
		logger: logger.With("analyzer", analyzerName),
	}
}

// Name retorna el nombre del analyzer.
func (a *Analyzer) Name() string {
	return analyzerName
}

// Analyze envía el contenido al servicio y traduce su respuesta.
func (a *Analyzer) Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
	s, err := parseSettings(options)
	if err != nil {
		return ports.Analysis{}, domain.Definitive(err.Error())
	}

	req := checkRequest{
		Kind:     payload.Kind.String(),
		Title:    payload.Title,
		Text:     truncate(payload.Text, s.maxChars),
		URL:      payload.URL,
		Language: s.language,
	}

	headers := map[string]string{}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	var resp checkResponse
	if err := a.client.PostJSON(ctx, s.endpoint, req, headers, &resp); err != nil {
		if code, ok := errors.StatusCode(err); ok {
			a.logger.Debug("factcheck request rejected", "status", code, "error", err.Error())
		} else {
			a.logger.Debug("factcheck request failed", "error", err.Error())
		}
		if errors.IsPermanent(err) {
			return ports.Analysis{}, domain.Definitive(err.Error())
		}
		return ports.Analysis{}, err
	}

	counts := countVerdicts(resp.Claims)
	score, ok := scoreFrom(resp, counts)
	if !ok {
		return ports.Analysis{}, domain.Definitive("no checkable claims")
	}

	return ports.Analysis{
		Score: score,
		Findings: domain.Findings{
			"claims":   claimFindings(resp.Claims),
			"verdicts": verdictFindings(counts),
		},
	}, nil
}

func countVerdicts(claims []Claim) map[string]int {
	counts := map[string]int{}
	for _, c := range claims {
		counts[normalizeVerdict(c.Verdict)]++
	}
	return counts
}

// scoreFrom prioriza el score del servicio; si falta, lo calcula a partir de
// los veredictos (mixed cuenta como medio punto, unverified no cuenta).
func scoreFrom(resp checkResponse, counts map[string]int) (int, bool) {
	if resp.Score != nil {
		return *resp.Score, true
	}
	rated := counts[verdictSupported] + counts[verdictRefuted] + counts[verdictMixed]
	if rated == 0 {
		return 0, false
	}
	value := (float64(counts[verdictSupported]) + 0.5*float64(counts[verdictMixed])) / float64(rated) * 100
	return int(math.Round(value)), true
}

func verdictFindings(counts map[string]int) map[string]any {
	out := make(map[string]any, len(counts))
	for verdict, n := range counts {
		out[verdict] = n
	}
	return out
}

func normalizeVerdict(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "supported", "true", "correct", "accurate":
		return verdictSupported
	case "refuted", "false", "incorrect", "inaccurate":
		return verdictRefuted
	case "mixed", "partly true", "partially true", "misleading":
		return verdictMixed
	default:
		return verdictUnverified
	}
}

func claimFindings(claims []Claim) []any {
	out := make([]any, 0, len(claims))
	for _, c := range claims {
		out = append(out, map[string]any{
			"text":    c.Text,
			"verdict": normalizeVerdict(c.Verdict),
			"source":  c.Source,
		})
	}
	return out
}

// truncate corta en límite de runa.
func truncate(text string, maxChars int) string {
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars])
}
