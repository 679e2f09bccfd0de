// Package sourcing puntúa cuán documentado está el contenido: enlaces a
// fuentes externas, citas textuales, referencias y atribuciones explícitas.
//
// Cuando el payload conserva el HTML original se inspecciona con goquery;
// si no, se usan los contadores del extractor y el texto plano.
package sourcing

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trustlens/internal/analyzers/textstat"
	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/validator"
)

const analyzerName = "sourcing"

var attributionPhrases = []string{
	"according to", "said", "says", "told", "reported", "stated", "cited", "wrote",
}

var quotedSpan = regexp.MustCompile(`["“][^"“”]{12,}["”]`)

// Evidence es lo que el analyzer encontró en el contenido.
type Evidence struct {
	Links           int
	ExternalLinks   int
	ExternalDomains []string
	Quotes          int
	Citations       int
	Attributions    int
	FromHTML        bool
}

// Analyzer evalúa el respaldo documental del contenido.
type Analyzer struct {
	logger       logx.Logger
	attributions *textstat.PhraseMatcher
}

// New crea el analyzer de sourcing.
func New(logger logx.Logger) *Analyzer {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &Analyzer{
		logger:       logger.With("analyzer", analyzerName),
		attributions: textstat.NewPhraseMatcher(attributionPhrases),
	}
}

// Name retorna el nombre del analyzer.
func (a *Analyzer) Name() string {
	return analyzerName
}

// InputKey incluye el HTML y los contadores del extractor.
func (a *Analyzer) InputKey(payload *domain.ContentPayload) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s|%s",
		payload.SourceDomain, payload.URL, payload.LinkCount, payload.QuoteCount, payload.HTML, payload.Text)
}

// Analyze calcula el score de sourcing.
func (a *Analyzer) Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return ports.Analysis{}, err
	}

	var (
		ev  Evidence
		err error
	)
	if strings.TrimSpace(payload.HTML) != "" {
		ev, err = a.inspectHTML(payload)
		if err != nil {
			return ports.Analysis{}, domain.Definitive(fmt.Sprintf("unparseable html: %v", err))
		}
	} else {
		ev = a.inspectText(payload)
	}

	score := Score(ev)

	a.logger.Debug("sourcing analysis",
		"external_links", ev.ExternalLinks,
		"quotes", ev.Quotes,
		"citations", ev.Citations,
		"attributions", ev.Attributions,
		"score", score,
	)

	return ports.Analysis{
		Score: score,
		Findings: domain.Findings{
			"links":            ev.Links,
			"external_links":   ev.ExternalLinks,
			"external_domains": ev.ExternalDomains,
			"quotes":           ev.Quotes,
			"citations":        ev.Citations,
			"attributions":     ev.Attributions,
			"from_html":        ev.FromHTML,
		},
	}, nil
}

// Score convierte la evidencia en un score 0-100.
func Score(ev Evidence) int {
	score := 15.0
	score += textstat.Penalty(float64(ev.ExternalLinks), 10, 30)
	score += textstat.Penalty(float64(len(ev.ExternalDomains)), 5, 10)
	score += textstat.Penalty(float64(ev.Quotes), 10, 20)
	score += textstat.Penalty(float64(ev.Citations), 10, 10)
	score += textstat.Penalty(float64(ev.Attributions), 5, 15)
	return int(score)
}

func (a *Analyzer) inspectHTML(payload *domain.ContentPayload) (Evidence, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload.HTML))
	if err != nil {
		return Evidence{}, err
	}

	base, _ := url.Parse(payload.URL)
	own := ownDomain(payload)
	domains := make(map[string]struct{})

	ev := Evidence{FromHTML: true}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ev.Links++

		host := resolveHost(base, href)
		if host == "" {
			return
		}
		registrable := validator.RegistrableDomain(host)
		if registrable == "" || validator.SameOrganization(registrable, own) {
			return
		}
		ev.ExternalLinks++
		domains[registrable] = struct{}{}
	})

	ev.Quotes = doc.Find("blockquote, q").Length()
	ev.Citations = doc.Find("cite").Length()
	ev.Attributions, _ = a.attributions.Count(doc.Text())
	ev.ExternalDomains = sortedDomains(domains)
	return ev, nil
}

func (a *Analyzer) inspectText(payload *domain.ContentPayload) Evidence {
	quotes := len(quotedSpan.FindAllString(payload.Text, -1))
	if payload.QuoteCount > quotes {
		quotes = payload.QuoteCount
	}
	attributions, _ := a.attributions.Count(payload.Text)
	return Evidence{
		Links:         payload.LinkCount,
		ExternalLinks: payload.LinkCount,
		Quotes:        quotes,
		Attributions:  attributions,
	}
}

func ownDomain(payload *domain.ContentPayload) string {
	if payload.SourceDomain != "" {
		if d := validator.RegistrableDomain(payload.SourceDomain); d != "" {
			return d
		}
	}
	return validator.RegistrableDomain(validator.HostFromURL(payload.URL))
}

// resolveHost retorna el host de href resuelto contra base ("" si no es http(s)).
func resolveHost(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base != nil && base.IsAbs() {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return strings.ToLower(ref.Hostname())
}

func sortedDomains(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
