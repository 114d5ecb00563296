// Package i18n holds the static translation tables and locale helpers used by
// the lead-intake pipeline. Catalogs are embedded YAML, one file per language.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Supported languages, in matcher priority order. The first entry is the
// fallback for visitors we cannot classify.
var Supported = []string{"en", "es", "pt-BR", "pt-PT"}

// DefaultLanguage is served when nothing better can be negotiated.
const DefaultLanguage = "en"

// OperatorLanguage is the language the site operator reads notifications in.
const OperatorLanguage = "pt-BR"

// Translator resolves message keys against the embedded catalogs.
type Translator struct {
	catalogs map[string]map[string]string
	matcher  language.Matcher
}

// New loads the embedded catalogs. It fails if any catalog is missing or
// malformed, so a broken translation table is caught at startup.
func New() (*Translator, error) {
	catalogs := make(map[string]map[string]string, len(Supported))
	tags := make([]language.Tag, 0, len(Supported))

	for _, lang := range Supported {
		data, err := localeFS.ReadFile("locales/" + lang + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("i18n: read catalog %s: %w", lang, err)
		}
		var messages map[string]string
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("i18n: parse catalog %s: %w", lang, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("i18n: empty catalog %s", lang)
		}
		catalogs[lang] = messages
		tags = append(tags, language.Make(lang))
	}

	return &Translator{
		catalogs: catalogs,
		matcher:  language.NewMatcher(tags),
	}, nil
}

// T returns the message for key in the given language, falling back to the
// default language and finally to the key itself.
func (t *Translator) T(lang, key string) string {
	if catalog, ok := t.catalogs[t.normalize(lang)]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := t.catalogs[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Tf returns the message for key formatted with args.
func (t *Translator) Tf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(t.T(lang, key), args...)
}

// Negotiate picks the best supported language for an Accept-Language header.
func (t *Translator) Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, index, _ := t.matcher.Match(tags...)
	return Supported[index]
}

// normalize maps arbitrary locale strings onto a supported catalog key.
func (t *Translator) normalize(lang string) string {
	if _, ok := t.catalogs[lang]; ok {
		return lang
	}
	return FromLocale(lang)
}

// FromLocale maps a raw browser locale string to a supported language.
// Exact "pt" and "pt-PT" variants map to European Portuguese, any other
// "pt-*" to Brazilian Portuguese, "es-*" to Spanish, everything else to
// English.
func FromLocale(locale string) string {
	normalized := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case normalized == "pt" || normalized == "pt-pt":
		return "pt-PT"
	case strings.HasPrefix(normalized, "pt-") || strings.HasPrefix(normalized, "pt_"):
		return "pt-BR"
	case normalized == "es" || strings.HasPrefix(normalized, "es-") || strings.HasPrefix(normalized, "es_"):
		return "es"
	default:
		return DefaultLanguage
	}
}

// CountryName renders an ISO 3166-1 alpha-2 code as a display name in the
// given language. Unknown codes are returned unchanged.
func CountryName(code, lang string) string {
	region, err := language.ParseRegion(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return code
	}
	name := display.Regions(language.Make(lang)).Name(region)
	if name == "" {
		return code
	}
	return name
}
