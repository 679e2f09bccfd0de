// internal/core/usecases/aggregator.go
package usecases

import (
	"math"
	"sort"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
)

// LevelThresholds define los cortes mínimos de cada nivel.
// Un score por debajo de Fair es Poor.
type LevelThresholds struct {
	Excellent int `yaml:"excellent" json:"excellent"`
	Good      int `yaml:"good" json:"good"`
	Fair      int `yaml:"fair" json:"fair"`
}

// DefaultLevelThresholds retorna los cortes 80/60/40.
func DefaultLevelThresholds() LevelThresholds {
	return LevelThresholds{Excellent: 80, Good: 60, Fair: 40}
}

// Valid verifica que los cortes sean crecientes y estén en [0,100].
func (t LevelThresholds) Valid() bool {
	return t.Fair >= 0 && t.Fair <= t.Good && t.Good <= t.Excellent && t.Excellent <= 100
}

// Classify asigna el nivel de un score.
func (t LevelThresholds) Classify(score int) domain.Level {
	switch {
	case score >= t.Excellent:
		return domain.LevelExcellent
	case score >= t.Good:
		return domain.LevelGood
	case score >= t.Fair:
		return domain.LevelFair
	default:
		return domain.LevelPoor
	}
}

// Aggregate es el resultado de combinar los scores de una ejecución.
type Aggregate struct {
	// Score nil cuando ningún analyzer con peso > 0 tuvo éxito
	Score          *int
	Level          domain.Level
	SufficientData bool
	Succeeded      int
	TotalWeight    float64
}

// ScoreAggregator combina scores por analyzer en un score global.
//
// Solo cuentan los analyzers con Success=true. Los pesos se renormalizan
// sobre ese subconjunto: un analyzer ausente o fallido no arrastra el score
// hacia cero ni cuenta como score 0.
type ScoreAggregator struct {
	thresholds      LevelThresholds
	minimumRequired int
}

// NewScoreAggregator crea un aggregator. Cortes inválidos se reemplazan por
// los por defecto y un mínimo negativo se toma como 0.
func NewScoreAggregator(thresholds LevelThresholds, minimumRequired int) *ScoreAggregator {
	if !thresholds.Valid() || thresholds == (LevelThresholds{}) {
		thresholds = DefaultLevelThresholds()
	}
	if minimumRequired < 0 {
		minimumRequired = 0
	}
	return &ScoreAggregator{
		thresholds:      thresholds,
		minimumRequired: minimumRequired,
	}
}

// Thresholds retorna los cortes en uso.
func (a *ScoreAggregator) Thresholds() LevelThresholds {
	return a.thresholds
}

// MinimumRequired retorna el mínimo de analyzers exitosos para SufficientData.
func (a *ScoreAggregator) MinimumRequired() int {
	return a.minimumRequired
}

// Aggregate calcula round(Σ score·peso / W) sobre los analyzers exitosos,
// con W = Σ peso de esos analyzers. Si W == 0 no hay score.
func (a *ScoreAggregator) Aggregate(results map[string]domain.AnalyzerResult, configs []ports.AnalyzerConfig) Aggregate {
	weights := make(map[string]float64, len(configs))
	for _, cfg := range configs {
		if _, seen := weights[cfg.Name]; !seen {
			weights[cfg.Name] = cfg.Weight
		}
	}

	// Orden fijo para que la suma en punto flotante sea determinista
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		succeeded   int
		totalWeight float64
		weighted    float64
	)
	for _, name := range names {
		res := results[name]
		if !res.Success {
			continue
		}
		succeeded++

		w := weights[name]
		if w <= 0 {
			continue
		}
		totalWeight += w
		weighted += float64(domain.ClampScore(res.Score)) * w
	}

	agg := Aggregate{
		Level:       domain.LevelUnknown,
		Succeeded:   succeeded,
		TotalWeight: totalWeight,
	}
	if totalWeight <= 0 {
		return agg
	}

	score := domain.ClampScore(int(math.Round(weighted / totalWeight)))
	agg.Score = &score
	agg.Level = a.thresholds.Classify(score)
	agg.SufficientData = succeeded >= a.minimumRequired
	return agg
}
