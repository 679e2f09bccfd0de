// Package manipulation detecta técnicas de persuasión sensacionalista:
// mayúsculas, exclamaciones, frases clickbait y llamadas a la urgencia.
package manipulation

import (
	"context"
	"math"
	"strings"

	"trustlens/internal/analyzers/textstat"
	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/registry"
)

const analyzerName = "manipulation"

var clickbaitPhrases = []string{
	"you won't believe", "shocking", "what they are hiding", "what happens next",
	"doctors hate", "this one trick", "the truth about", "exposed", "jaw-dropping",
	"mind-blowing", "gone wrong",
}

var urgencyPhrases = []string{
	"act now", "before it's too late", "share this", "before they delete",
	"don't wait", "last chance", "limited time", "urgent", "wake up",
}

// Analyzer puntúa el contenido según señales de manipulación.
type Analyzer struct {
	logger    logx.Logger
	clickbait *textstat.PhraseMatcher
	urgency   *textstat.PhraseMatcher
}

// New crea el analyzer. extraClickbait amplía la lista de frases por defecto.
func New(logger logx.Logger, extraClickbait []string) *Analyzer {
	if logger == nil {
		logger = logx.NewNop()
	}
	phrases := append(append([]string(nil), clickbaitPhrases...), extraClickbait...)
	return &Analyzer{
		logger:    logger.With("analyzer", analyzerName),
		clickbait: textstat.NewPhraseMatcher(phrases),
		urgency:   textstat.NewPhraseMatcher(urgencyPhrases),
	}
}

// Name retorna el nombre del analyzer.
func (a *Analyzer) Name() string {
	return analyzerName
}

// InputKey depende del título y el texto.
func (a *Analyzer) InputKey(payload *domain.ContentPayload) string {
	return payload.Title + "\n" + payload.Text
}

// Analyze calcula el score (100 = sin señales de manipulación).
func (a *Analyzer) Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return ports.Analysis{}, err
	}

	text := strings.TrimSpace(a.InputKey(payload))
	words := textstat.Words(text)
	if len(words) == 0 {
		return ports.Analysis{}, domain.Definitive("no words to analyze")
	}

	minShout := registry.GetIntConfig(options, "shouting_min_letters", 3)
	shouting := 0
	for _, w := range words {
		if textstat.IsShouting(w, minShout) {
			shouting++
		}
	}
	exclamations := strings.Count(text, "!")
	clickbait, clickbaitMatched := a.clickbait.Count(text)
	urgency, urgencyMatched := a.urgency.Count(text)

	penalty := textstat.Penalty(textstat.Percent(shouting, len(words)), 3, 30) +
		textstat.Penalty(float64(exclamations), 3, 20) +
		textstat.Penalty(float64(clickbait), 12, 36) +
		textstat.Penalty(float64(urgency), 10, 30)
	score := int(math.Round(100 - penalty))

	a.logger.Debug("manipulation analysis",
		"shouting", shouting,
		"exclamations", exclamations,
		"clickbait", clickbait,
		"urgency", urgency,
		"score", score,
	)

	return ports.Analysis{
		Score: score,
		Findings: domain.Findings{
			"shouting_words": shouting,
			"exclamations":   exclamations,
			"clickbait":      clickbaitMatched,
			"urgency":        urgencyMatched,
		},
	}, nil
}
