// cmd/trustlens/input.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trustlens/internal/core/domain"
)

// inputOptions metadatos del contenido recibidos por flags.
type inputOptions struct {
	ID        string
	Kind      string
	Title     string
	URL       string
	Domain    string
	Author    string
	Published string
	HTML      bool
}

// readInput lee el contenido de path, o de stdin si path es "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// buildPayload construye el payload a partir del contenido y los flags.
// Con HTML el texto plano y el título se extraen del documento.
func buildPayload(raw []byte, opts inputOptions) (*domain.ContentPayload, error) {
	kind := domain.ContentKind(strings.ToLower(strings.TrimSpace(opts.Kind)))
	if kind == "" {
		kind = domain.ContentKindArticle
	}

	text := string(raw)
	title := strings.TrimSpace(opts.Title)
	html := ""

	if opts.HTML {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		if title == "" {
			title = strings.TrimSpace(doc.Find("title").First().Text())
		}
		doc.Find("script, style, noscript").Remove()
		body := doc.Find("body")
		if body.Length() == 0 {
			body = doc.Selection
		}
		html = text
		text = collapseSpace(body.Text())
	}

	payload := domain.NewContentPayload(kind, text)
	payload.ID = strings.TrimSpace(opts.ID)
	payload.Title = title
	payload.HTML = html

	// El dominio explícito tiene prioridad sobre el derivado de la URL
	if opts.Domain != "" {
		payload.WithSourceDomain(opts.Domain)
	}
	if opts.URL != "" {
		payload.WithURL(opts.URL)
	}
	payload.WithAuthor(opts.Author)

	if opts.Published != "" {
		published, err := parsePublished(opts.Published)
		if err != nil {
			return nil, err
		}
		payload.PublishedAt = published
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

func parsePublished(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --published value %q (want YYYY-MM-DD or RFC3339)", v)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
