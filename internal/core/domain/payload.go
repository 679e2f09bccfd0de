// internal/core/domain/payload.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"trustlens/internal/platform/validator"
)

// ContentPayload es la unidad de trabajo que recorre el pipeline.
// Pertenece al llamador durante toda la ejecución; los analyzers solo la leen.
type ContentPayload struct {
	// ID identificador opcional asignado por el llamador
	ID string `json:"id,omitempty"`

	// Kind tipo de contenido (article, transcript)
	Kind ContentKind `json:"kind"`

	// Title título del artículo o episodio
	Title string `json:"title,omitempty"`

	// Text texto plano ya extraído
	Text string `json:"text"`

	// HTML marcado original, si el extractor lo conserva
	HTML string `json:"html,omitempty"`

	// URL ubicación original del contenido
	URL string `json:"url,omitempty"`

	// SourceDomain dominio registrable del publicador (ej: "example.co.uk")
	SourceDomain string `json:"source_domain,omitempty"`

	// Author autor o presentador
	Author string `json:"author,omitempty"`

	// PublishedAt fecha de publicación (zero = desconocida)
	PublishedAt time.Time `json:"published_at,omitempty"`

	// LinkCount y QuoteCount los calcula el extractor
	LinkCount  int `json:"link_count"`
	QuoteCount int `json:"quote_count"`

	// Metadata información adicional libre
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewContentPayload crea un payload con valores por defecto.
func NewContentPayload(kind ContentKind, text string) *ContentPayload {
	return &ContentPayload{
		Kind:     kind,
		Text:     text,
		Metadata: make(map[string]string),
	}
}

// WithURL asigna la URL y deriva SourceDomain si todavía no está definido.
func (p *ContentPayload) WithURL(rawURL string) *ContentPayload {
	p.URL = strings.TrimSpace(rawURL)
	if p.SourceDomain == "" {
		if d := validator.RegistrableDomain(validator.HostFromURL(p.URL)); d != "" {
			p.SourceDomain = d
		}
	}
	return p
}

// WithSourceDomain normaliza y asigna el dominio del publicador.
func (p *ContentPayload) WithSourceDomain(domain string) *ContentPayload {
	normalized := validator.NormalizeDomain(domain)
	if registrable := validator.RegistrableDomain(normalized); registrable != "" {
		normalized = registrable
	}
	p.SourceDomain = normalized
	return p
}

// WithAuthor asigna el autor.
func (p *ContentPayload) WithAuthor(author string) *ContentPayload {
	p.Author = strings.TrimSpace(author)
	return p
}

// Validate verifica que el payload sea analizable.
func (p *ContentPayload) Validate() error {
	if p == nil {
		return ErrNilPayload
	}
	if strings.TrimSpace(p.Text) == "" {
		return ErrEmptyContent
	}
	if !p.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidContentKind, p.Kind)
	}
	if p.SourceDomain != "" && !validator.IsDomain(p.SourceDomain) {
		return fmt.Errorf("%w: %q", ErrInvalidSourceDomain, p.SourceDomain)
	}
	return nil
}

// WordCount cuenta palabras del texto plano.
func (p *ContentPayload) WordCount() int {
	return len(strings.Fields(p.Text))
}

// CacheKey es la entrada por defecto que identifica este contenido para un
// analyzer que no define la suya propia.
func (p *ContentPayload) CacheKey() string {
	var b strings.Builder
	b.WriteString(string(p.Kind))
	b.WriteByte('|')
	b.WriteString(p.SourceDomain)
	b.WriteByte('|')
	b.WriteString(p.Author)
	b.WriteByte('|')
	b.WriteString(p.Title)
	b.WriteByte('|')
	b.WriteString(p.Text)
	return b.String()
}
