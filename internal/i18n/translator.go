// Package i18n renders user-facing messages from the embedded TOML catalogs.
//
// Message IDs double as the codes carried by domain.ValidationError, so a
// validation failure can be localized without the domain knowing about
// languages. English is the source language; every other catalog may be
// partial and falls back to English per message.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var catalogFS embed.FS

const catalogDir = "locales"

// Message IDs used outside the domain validation codes.
const (
	MsgNotFound           = "error.not_found"
	MsgInvalidPage        = "error.invalid_page"
	MsgUnauthorized       = "error.unauthorized"
	MsgInvalidCredentials = "error.invalid_credentials"
	MsgInvalidToken       = "error.invalid_token"
	MsgInternal           = "error.internal"
	MsgMethodNotAllowed   = "error.method_not_allowed"
	MsgInvalidBody        = "request.body.invalid"
	MsgReminderSubject    = "reminder.subject"
	MsgReminderBody       = "reminder.body"
)

// Translator resolves message IDs for a language.
type Translator struct {
	bundle    *goi18n.Bundle
	supported []language.Tag
	matcher   language.Matcher
	fallback  language.Tag
	logger    *slog.Logger
}

// New loads the embedded catalogs. defaultLang is used when a request names
// no supported language; it must itself have a catalog.
func New(defaultLang string, logger *slog.Logger) (*Translator, error) {
	return newTranslator(catalogFS, defaultLang, logger)
}

func newTranslator(fsys fs.FS, defaultLang string, logger *slog.Logger) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(fsys, catalogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list message catalogs: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(fsys, path.Join(catalogDir, entry.Name())); err != nil {
			return nil, fmt.Errorf("failed to load message catalog %s: %w", entry.Name(), err)
		}
	}

	fallback, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", defaultLang, err)
	}

	// The matcher falls back to its first entry, so the default goes first.
	supported := []language.Tag{}
	found := false
	for _, tag := range bundle.LanguageTags() {
		if tag == fallback {
			found = true
			continue
		}
		supported = append(supported, tag)
	}
	if !found {
		return nil, fmt.Errorf("no message catalog for default language %q", defaultLang)
	}
	supported = append([]language.Tag{fallback}, supported...)

	return &Translator{
		bundle:    bundle,
		supported: supported,
		matcher:   language.NewMatcher(supported),
		fallback:  fallback,
		logger:    logger.With("component", "i18n"),
	}, nil
}

// Default returns the configured default language.
func (t *Translator) Default() language.Tag {
	return t.fallback
}

// Match picks the best supported language for an Accept-Language header value.
// An empty or unparseable header yields the default language.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return t.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.fallback
	}
	_, index, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return t.fallback
	}
	return t.supported[index]
}

// Supported lists the languages with a catalog, default first.
func (t *Translator) Supported() []language.Tag {
	return append([]language.Tag(nil), t.supported...)
}

// Localize renders id in lang with data as template input. When no catalog
// has the message, defaultText is returned, or id itself if that is empty.
func (t *Translator) Localize(lang language.Tag, id, defaultText string, data map[string]any) string {
	localizer := goi18n.NewLocalizer(t.bundle, lang.String(), t.fallback.String())
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		t.logger.Warn("translation not found",
			"lang", lang.String(),
			"message_id", id,
			"error", err)
		if defaultText != "" {
			return defaultText
		}
		return id
	}
	return msg
}

type languageKey struct{}

// WithLanguage stores the request language in ctx.
func WithLanguage(ctx context.Context, lang language.Tag) context.Context {
	return context.WithValue(ctx, languageKey{}, lang)
}

// LanguageFromContext returns the request language, or English if none was stored.
func LanguageFromContext(ctx context.Context) language.Tag {
	if ctx == nil {
		return language.English
	}
	if lang, ok := ctx.Value(languageKey{}).(language.Tag); ok {
		return lang
	}
	return language.English
}
