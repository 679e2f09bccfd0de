package resilience

import (
	"trustlens/internal/core/domain"
	"trustlens/internal/platform/errors"
)

// Classify asigna un ErrorKind a un error de analyzer.
//
//   - veredicto explícito del analyzer o error permanente -> DefinitiveFailure
//   - deadlines y timeouts de red                           -> Timeout
//   - todo lo demás                                         -> TransientFailure
func Classify(err error) domain.ErrorKind {
	switch {
	case err == nil:
		return domain.ErrorKindNone
	case domain.IsDefinitive(err), errors.IsPermanent(err):
		return domain.ErrorKindDefinitive
	case errors.IsTimeout(err), errors.Is(err, domain.ErrAnalyzerTimeout):
		return domain.ErrorKindTimeout
	default:
		return domain.ErrorKindTransient
	}
}
