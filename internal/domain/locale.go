package domain

// Locale identifica el idioma de respuesta. El set es cerrado: ingles por
// defecto y español como secundario.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
)
