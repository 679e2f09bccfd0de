// internal/core/domain/enums.go
package domain

// ContentKind define el tipo de contenido analizado.
type ContentKind string

const (
	// ContentKindArticle artículo periodístico o post
	ContentKindArticle ContentKind = "article"

	// ContentKindTranscript transcripción de audio o video
	ContentKindTranscript ContentKind = "transcript"
)

// IsValid verifica si el tipo de contenido es válido.
func (k ContentKind) IsValid() bool {
	switch k {
	case ContentKindArticle, ContentKindTranscript:
		return true
	default:
		return false
	}
}

// String retorna la representación string del tipo.
func (k ContentKind) String() string {
	return string(k)
}

// ErrorKind clasifica por qué un analyzer no produjo un score utilizable.
type ErrorKind string

const (
	// ErrorKindNone el analyzer terminó correctamente
	ErrorKindNone ErrorKind = ""

	// ErrorKindTimeout el analyzer excedió su presupuesto de tiempo
	ErrorKindTimeout ErrorKind = "timeout"

	// ErrorKindTransient fallo que un reintento podría resolver (red, 5xx, etc.)
	ErrorKindTransient ErrorKind = "transient_failure"

	// ErrorKindDefinitive el analyzer devolvió un veredicto de fallo explícito
	ErrorKindDefinitive ErrorKind = "definitive_failure"

	// ErrorKindInsufficientData nivel pipeline: muy pocos analyzers con éxito
	ErrorKindInsufficientData ErrorKind = "insufficient_data"
)

// IsValid verifica si el tipo de error es conocido.
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorKindNone, ErrorKindTimeout, ErrorKindTransient, ErrorKindDefinitive, ErrorKindInsufficientData:
		return true
	default:
		return false
	}
}

// Retryable indica si un fallo de este tipo justifica otro intento.
func (k ErrorKind) Retryable() bool {
	return k == ErrorKindTimeout || k == ErrorKindTransient
}

// String retorna la representación string del tipo.
func (k ErrorKind) String() string {
	if k == ErrorKindNone {
		return "none"
	}
	return string(k)
}

// Level es la clasificación cualitativa del score global.
type Level string

const (
	LevelUnknown   Level = "unknown"
	LevelPoor      Level = "poor"
	LevelFair      Level = "fair"
	LevelGood      Level = "good"
	LevelExcellent Level = "excellent"
)

// IsValid verifica si el nivel es válido.
func (l Level) IsValid() bool {
	switch l {
	case LevelUnknown, LevelPoor, LevelFair, LevelGood, LevelExcellent:
		return true
	default:
		return false
	}
}

// String retorna la representación string del nivel.
func (l Level) String() string {
	return string(l)
}
