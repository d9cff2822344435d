package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "attendee_lang"
)

var supportedTags = []language.Tag{
	language.Spanish,
	language.English,
}

var tagMatcher = language.NewMatcher(supportedTags)

var messages = map[language.Tag]map[string]string{
	language.Spanish: {
		"page.title":               "Perfil",
		"pin.header":               "Ingresa el PIN",
		"pin.placeholder":          "PIN de 4 dígitos",
		"pin.submit":               "Enviar",
		"profile.prompt":           "Ingresa el PIN para ver este perfil.",
		"profile.download":         "Descargar tarjeta de contacto",
		"field.company":            "Empresa",
		"field.email":              "Email",
		"notice.error_title":       "Error",
		"notice.invalid_pin_title": "PIN inválido",
		"notice.invalid_pin":       "Por favor ingresa un PIN de 4 dígitos.",
		"notice.fetch_failed":      "No se pudo obtener el perfil. Revisa tu PIN e inténtalo de nuevo.",
		"notice.in_flight":         "El perfil ya se está cargando.",
		"error.internal":           "Algo salió mal. Inténtalo más tarde.",
		"error.missing_short_id":   "Al enlace del perfil le falta el identificador.",
	},
	language.English: {
		"page.title":               "Profile",
		"pin.header":               "Enter PIN",
		"pin.placeholder":          "Enter 4-digit PIN",
		"pin.submit":               "Submit",
		"profile.prompt":           "Enter the PIN to view this profile.",
		"profile.download":         "Download contact card",
		"field.company":            "Company",
		"field.email":              "Email",
		"notice.error_title":       "Error",
		"notice.invalid_pin_title": "Invalid PIN",
		"notice.invalid_pin":       "Please enter a 4-digit PIN.",
		"notice.fetch_failed":      "Failed to fetch profile. Please check your PIN and try again.",
		"notice.in_flight":         "The profile is already loading.",
		"error.internal":           "Something went wrong. Please try again later.",
		"error.missing_short_id":   "The profile link is missing its identifier.",
	},
}

var messageCatalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for tag, entries := range messages {
		for key, msg := range entries {
			// SetString only fails for malformed messages; the table above is static.
			_ = builder.SetString(tag, key, msg)
		}
	}
	return builder
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.Spanish
}

// Localizer translates catalog keys for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer returns a Localizer for tag, matched against the supported set.
func NewLocalizer(tag language.Tag) *Localizer {
	matched := Match(tag)
	return &Localizer{
		tag:     matched,
		printer: message.NewPrinter(matched, message.Catalog(messageCatalog)),
	}
}

// T translates key. Unknown keys are returned unchanged.
func (l *Localizer) T(key string) string {
	return l.printer.Sprintf(key)
}

// Lang returns the BCP 47 tag used for the html lang attribute.
func (l *Localizer) Lang() string {
	base, _ := l.tag.Base()
	return base.String()
}

// Match maps any tag onto the closest supported language.
func Match(tag language.Tag) language.Tag {
	_, idx, _ := tagMatcher.Match(tag)
	return supportedTags[idx]
}

// ParseTag parses and matches value. ok is false for unparsable input.
func ParseTag(value string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Und, false
	}
	return Match(tag), true
}

// ResolveTag determines the best language tag for the request: ?lang=, then
// the language cookie, then Accept-Language, then fallback.
// The bool indicates whether the lang query param should be persisted as a cookie.
func ResolveTag(r *http.Request, fallback language.Tag) (language.Tag, bool) {
	if r == nil {
		return fallback, false
	}

	if langValue := strings.TrimSpace(r.URL.Query().Get(LangParam)); langValue != "" {
		if tag, ok := ParseTag(langValue); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := ParseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, _ := tagMatcher.Match(tags...)
			return supportedTags[idx], false
		}
	}

	return fallback, false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
