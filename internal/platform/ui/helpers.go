// internal/platform/ui/helpers.go
package ui

import (
	"fmt"
	"time"

	"trustlens/internal/core/domain"
)

// formatDuration formatea una duración de manera legible
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
}

// formatScore formatea un score opcional
func formatScore(score *int) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d/100", *score)
}

// resultDetail resume el resultado de un analyzer en una línea
func resultDetail(status Status, res domain.AnalyzerResult) string {
	switch status {
	case StatusSuccess, StatusCached:
		return fmt.Sprintf("score %d", res.Score)
	default:
		if res.Error != "" {
			return res.Error
		}
		return res.ErrorKind.String()
	}
}
