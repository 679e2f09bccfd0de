// Package credibility puntúa la reputación de la fuente: dominio del
// publicador, sufijo público, autoría y metadatos de publicación.
package credibility

import (
	"context"
	"strings"

	"golang.org/x/net/publicsuffix"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/registry"
	"trustlens/internal/platform/validator"
)

const (
	analyzerName = "credibility"
	baseScore    = 50
)

// Dominios con trayectoria editorial verificable (ampliable vía "trusted_domains").
var defaultTrusted = []string{
	"reuters.com", "apnews.com", "bbc.co.uk", "npr.org", "nature.com",
	"science.org", "who.int", "europa.eu",
}

// Sufijos de organismos públicos y académicos.
var defaultInstitutional = []string{
	"gov", "edu", "mil", "int", "gov.uk", "ac.uk", "gob.es", "gouv.fr", "gov.au", "edu.au",
}

type settings struct {
	trusted       map[string]struct{}
	untrusted     map[string]struct{}
	institutional map[string]struct{}
}

func parseSettings(options map[string]any) settings {
	return settings{
		trusted:       domainSet(append(append([]string(nil), defaultTrusted...), registry.GetSliceConfig(options, "trusted_domains", nil)...)),
		untrusted:     domainSet(registry.GetSliceConfig(options, "untrusted_domains", nil)),
		institutional: domainSet(registry.GetSliceConfig(options, "institutional_suffixes", defaultInstitutional)),
	}
}

func domainSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, d := range list {
		d = validator.NormalizeDomain(d)
		if d == "" {
			continue
		}
		set[d] = struct{}{}
		if registrable := validator.RegistrableDomain(d); registrable != "" {
			set[registrable] = struct{}{}
		}
	}
	return set
}

func (s settings) matches(set map[string]struct{}, host, registrable string) bool {
	if _, ok := set[host]; ok {
		return true
	}
	_, ok := set[registrable]
	return ok
}

// Analyzer evalúa la credibilidad del publicador.
type Analyzer struct {
	logger logx.Logger
}

// New crea el analyzer de credibilidad.
func New(logger logx.Logger) *Analyzer {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &Analyzer{logger: logger.With("analyzer", analyzerName)}
}

// Name retorna el nombre del analyzer.
func (a *Analyzer) Name() string {
	return analyzerName
}

// InputKey solo depende de los metadatos de la fuente, no del texto.
func (a *Analyzer) InputKey(payload *domain.ContentPayload) string {
	published := ""
	if !payload.PublishedAt.IsZero() {
		published = payload.PublishedAt.UTC().Format("2006-01-02")
	}
	return strings.Join([]string{payload.SourceDomain, payload.Author, payload.URL, published}, "|")
}

// Analyze calcula el score de credibilidad.
func (a *Analyzer) Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return ports.Analysis{}, err
	}

	host := validator.NormalizeDomain(payload.SourceDomain)
	if host == "" {
		host = validator.NormalizeDomain(validator.HostFromURL(payload.URL))
	}
	if host == "" || !validator.IsDomain(host) {
		return ports.Analysis{}, domain.Definitive("source domain unknown")
	}

	s := parseSettings(options)
	registrable := validator.RegistrableDomain(host)
	suffix, icann := publicsuffix.PublicSuffix(host)

	score := baseScore
	var signals []string
	add := func(delta int, signal string) {
		score += delta
		signals = append(signals, signal)
	}

	switch {
	case s.matches(s.untrusted, host, registrable):
		add(-40, "untrusted_domain")
	case s.matches(s.trusted, host, registrable):
		add(25, "trusted_domain")
	}

	if _, ok := s.institutional[suffix]; ok {
		add(20, "institutional_suffix")
	} else if !icann {
		// Sufijo privado: subdominio de una plataforma de alojamiento (blogspot.com, github.io).
		add(-10, "hosted_platform")
	}

	if payload.Author != "" {
		add(10, "author_present")
	} else {
		add(-5, "author_missing")
	}

	switch {
	case strings.HasPrefix(strings.ToLower(payload.URL), "https://"):
		add(5, "https")
	case strings.HasPrefix(strings.ToLower(payload.URL), "http://"):
		add(-5, "plain_http")
	}

	if !payload.PublishedAt.IsZero() {
		add(5, "publication_date")
	}

	a.logger.Debug("credibility analysis",
		"domain", host,
		"suffix", suffix,
		"icann", icann,
		"score", score,
	)

	return ports.Analysis{
		Score: score,
		Findings: domain.Findings{
			"domain":        host,
			"registrable":   registrable,
			"public_suffix": suffix,
			"icann":         icann,
			"signals":       signals,
		},
	}, nil
}
