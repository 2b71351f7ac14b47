// Package prefs stores a visitor's theme and language choices.
package prefs

import (
	"context"
	"fmt"

	"github.com/Zachkp/folio/internal/i18n"
	"github.com/Zachkp/folio/internal/kv"
)

const (
	ThemeKey    = "theme"
	LanguageKey = "language"

	Light = "light"
	Dark  = "dark"
)

// Prefs is what the page renders with.
type Prefs struct {
	Theme    string
	Language string
}

// Hints are the request-derived defaults used when nothing is stored.
type Hints struct {
	// PrefersColorScheme is the Sec-CH-Prefers-Color-Scheme header value.
	PrefersColorScheme string
	AcceptLanguage     string
}

// Load reads the stored preferences, filling gaps from hints. Invalid stored
// values are ignored.
func Load(ctx context.Context, store kv.Store, h Hints) (Prefs, error) {
	p := Prefs{Theme: Light, Language: i18n.Match(h.AcceptLanguage)}
	if h.PrefersColorScheme == Dark || h.PrefersColorScheme == `"dark"` {
		p.Theme = Dark
	}

	theme, ok, err := store.Get(ctx, ThemeKey)
	if err != nil {
		return p, fmt.Errorf("load theme: %w", err)
	}
	if ok && validTheme(theme) {
		p.Theme = theme
	}
	lang, ok, err := store.Get(ctx, LanguageKey)
	if err != nil {
		return p, fmt.Errorf("load language: %w", err)
	}
	if ok && i18n.IsSupported(lang) {
		p.Language = lang
	}
	return p, nil
}

// ToggleTheme flips between light and dark and stores the result.
func ToggleTheme(ctx context.Context, store kv.Store, current string) (string, error) {
	next := Dark
	if current == Dark {
		next = Light
	}
	if err := store.Set(ctx, ThemeKey, next); err != nil {
		return current, fmt.Errorf("save theme: %w", err)
	}
	return next, nil
}

// SetLanguage stores lang after normalizing it to a supported code.
func SetLanguage(ctx context.Context, store kv.Store, lang string) (string, error) {
	lang = i18n.Normalize(lang)
	if err := store.Set(ctx, LanguageKey, lang); err != nil {
		return lang, fmt.Errorf("save language: %w", err)
	}
	return lang, nil
}

func validTheme(s string) bool { return s == Light || s == Dark }
