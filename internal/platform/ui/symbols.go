// internal/platform/ui/symbols.go
package ui

import (
	"strings"

	"github.com/pterm/pterm"
)

// Status es el estado de un analyzer dentro de una ejecución.
// El orden importa: a partir de StatusSuccess todos son finales.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusCached
	StatusTimeout
	StatusError
)

type statusLook struct {
	name   string
	symbol string
	color  pterm.Color
}

var statusLooks = [...]statusLook{
	StatusPending: {"pending", "⏸", pterm.FgGray},
	StatusRunning: {"running", "⣾", pterm.FgCyan},
	StatusSuccess: {"success", "✓", pterm.FgGreen},
	StatusCached:  {"cached", "↺", pterm.FgLightGreen},
	StatusTimeout: {"timeout", "⏱", pterm.FgYellow},
	StatusError:   {"error", "✗", pterm.FgRed},
}

func (s Status) look() statusLook {
	if s < 0 || int(s) >= len(statusLooks) {
		return statusLook{"unknown", "?", pterm.FgDefault}
	}
	return statusLooks[s]
}

func (s Status) String() string { return s.look().name }
func (s Status) Symbol() string { return s.look().symbol }
func (s Status) Color() pterm.Color { return s.look().color }
func (s Status) Style() *pterm.Style { return pterm.NewStyle(s.Color()) }

// Terminal indica si el analyzer ya no cambiará de estado.
func (s Status) Terminal() bool {
	return s >= StatusSuccess && s <= StatusError
}

// SeparatorHeavy cierra el encabezado de la ejecución.
var SeparatorHeavy = strings.Repeat("━", 44)
