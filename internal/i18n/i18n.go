// Package i18n looks up display strings for the supported languages.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Default is the fallback language.
const Default = "en"

var supported = []language.Tag{language.English, language.Finnish}

var matcher = language.NewMatcher(supported)

// Translator resolves dotted keys such as "works.noProjects".
type Translator struct {
	bundle *goi18n.Bundle

	mu         sync.Mutex
	localizers map[string]*goi18n.Localizer
}

var (
	defaultOnce sync.Once
	defaultT    *Translator
	defaultErr  error
)

// Load returns the translator built from the embedded dictionaries. It is
// parsed once per process.
func Load() (*Translator, error) {
	defaultOnce.Do(func() {
		defaultT, defaultErr = New(localeFS)
	})
	return defaultT, defaultErr
}

// New builds a translator from every locales/*.yaml file in fsys. The file
// name is the language tag.
func New(fsys fs.FS) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("i18n: no dictionaries found")
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(fsys, f); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", path.Base(f), err)
		}
	}
	return &Translator{bundle: bundle, localizers: make(map[string]*goi18n.Localizer)}, nil
}

// T returns the string for key in lang. Unknown languages and keys missing
// from a dictionary fall back to English; keys missing everywhere return the
// key itself.
func (t *Translator) T(lang, key string) string {
	if s, ok := t.lookup(lang, key); ok {
		return s
	}
	return key
}

// Has reports whether key exists in lang or the fallback.
func (t *Translator) Has(lang, key string) bool {
	_, ok := t.lookup(lang, key)
	return ok
}

// lookup localizes key. go-i18n reports a MessageNotFoundErr alongside the
// default-language string when only the fallback has the key, so that case
// counts as found.
func (t *Translator) lookup(lang, key string) (string, bool) {
	lang = Normalize(lang)
	s, err := t.localizer(lang).Localize(&goi18n.LocalizeConfig{MessageID: key})
	if s != "" {
		var notFound *goi18n.MessageNotFoundErr
		if err == nil || errors.As(err, &notFound) {
			return s, true
		}
	}
	if lang == Default {
		return "", false
	}
	s, err = t.localizer(Default).Localize(&goi18n.LocalizeConfig{MessageID: key})
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// For binds the translator to one language, for templates.
func (t *Translator) For(lang string) func(string) string {
	return func(key string) string { return t.T(lang, key) }
}

func (t *Translator) localizer(lang string) *goi18n.Localizer {
	lang = Normalize(lang)
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.localizers[lang]
	if !ok {
		l = goi18n.NewLocalizer(t.bundle, lang)
		t.localizers[lang] = l
	}
	return l
}

// Supported lists the language codes with a dictionary.
func Supported() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		out[i] = tag.String()
	}
	return out
}

// IsSupported reports whether lang is one of Supported.
func IsSupported(lang string) bool {
	for _, s := range Supported() {
		if s == lang {
			return true
		}
	}
	return false
}

// Normalize maps lang to a supported code, defaulting to English.
func Normalize(lang string) string {
	if IsSupported(lang) {
		return lang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return Default
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default
	}
	return supported[idx].String()
}

// Match negotiates an Accept-Language header value.
func Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return supported[idx].String()
}
