// Package bias puntúa la neutralidad del lenguaje: proporción de términos
// cargados, absolutos y marcadores de opinión sobre el total de palabras.
package bias

import (
	"context"
	"math"

	"trustlens/internal/analyzers/textstat"
	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/registry"
)

const (
	analyzerName    = "bias"
	defaultMinWords = 20
)

var loadedTerms = []string{
	"disgraceful", "corrupt", "radical", "disaster", "outrageous", "evil",
	"shameful", "catastrophic", "treacherous", "pathetic", "idiotic", "elites",
	"regime", "propaganda", "scheme", "lie", "lies", "hoax", "traitor", "traitors",
	"disgusting", "insane", "ridiculous", "thugs", "puppet", "destroy", "destroying",
}

var absoluteTerms = []string{
	"always", "never", "everyone", "everybody", "nobody", "nothing",
	"totally", "completely", "undeniably", "obviously", "unquestionably",
}

var opinionPhrases = []string{
	"i think", "i believe", "in my opinion", "we all know", "everyone knows",
	"it is clear that", "make no mistake", "the truth is",
}

// settings opciones efectivas del analyzer.
type settings struct {
	minWords int
	lexicon  textstat.Lexicon
}

func parseSettings(options map[string]any) settings {
	minWords := registry.GetIntConfig(options, "min_words", defaultMinWords)
	if minWords < 1 {
		minWords = 1
	}
	extra := registry.GetSliceConfig(options, "extra_terms", nil)
	return settings{
		minWords: minWords,
		lexicon:  textstat.NewLexicon(loadedTerms, extra),
	}
}

// Analyzer evalúa sesgo léxico del texto.
type Analyzer struct {
	logger    logx.Logger
	absolutes textstat.Lexicon
	opinions  *textstat.PhraseMatcher
}

// New crea el analyzer de sesgo.
func New(logger logx.Logger) *Analyzer {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &Analyzer{
		logger:    logger.With("analyzer", analyzerName),
		absolutes: textstat.NewLexicon(absoluteTerms),
		opinions:  textstat.NewPhraseMatcher(opinionPhrases),
	}
}

// Name retorna el nombre del analyzer.
func (a *Analyzer) Name() string {
	return analyzerName
}

// InputKey solo depende del texto.
func (a *Analyzer) InputKey(payload *domain.ContentPayload) string {
	return payload.Text
}

// Analyze calcula el score de neutralidad.
func (a *Analyzer) Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return ports.Analysis{}, err
	}

	s := parseSettings(options)
	words := textstat.Words(payload.Text)
	if len(words) < s.minWords {
		return ports.Analysis{}, domain.Definitive("text too short for bias analysis")
	}

	loaded, loadedMatched := s.lexicon.Hits(words)
	absolutes, _ := a.absolutes.Hits(words)
	opinions, opinionMatched := a.opinions.Count(payload.Text)

	loadedPct := textstat.Percent(loaded, len(words))
	absolutePct := textstat.Percent(absolutes, len(words))

	penalty := textstat.Penalty(loadedPct, 6, 60) +
		textstat.Penalty(absolutePct, 4, 25) +
		textstat.Penalty(float64(opinions), 5, 15)
	score := int(math.Round(100 - penalty))

	a.logger.Debug("bias analysis",
		"words", len(words),
		"loaded", loaded,
		"absolutes", absolutes,
		"opinions", opinions,
		"score", score,
	)

	return ports.Analysis{
		Score: score,
		Findings: domain.Findings{
			"words":           len(words),
			"loaded_terms":    loadedMatched,
			"loaded_percent":  math.Round(loadedPct*10) / 10,
			"absolutes":       absolutes,
			"opinion_markers": opinionMatched,
		},
	}, nil
}
