package i18n

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTranslator(t *testing.T, defaultLang string) *Translator {
	t.Helper()
	tr, err := New(defaultLang, testLogger())
	require.NoError(t, err)
	return tr
}

func TestNew(t *testing.T) {
	t.Run("loads embedded catalogs", func(t *testing.T) {
		tr := newTestTranslator(t, "en")
		assert.Equal(t, language.English, tr.Default())
		assert.ElementsMatch(t, []language.Tag{language.English, language.Spanish}, tr.Supported())
	})

	t.Run("default language goes first", func(t *testing.T) {
		tr := newTestTranslator(t, "es")
		assert.Equal(t, language.Spanish, tr.Supported()[0])
	})

	t.Run("default language without catalog", func(t *testing.T) {
		_, err := New("de", testLogger())
		assert.ErrorContains(t, err, "no message catalog")
	})

	t.Run("unparseable default language", func(t *testing.T) {
		_, err := New("not a language!", testLogger())
		assert.ErrorContains(t, err, "invalid default language")
	})

	t.Run("malformed catalog", func(t *testing.T) {
		fsys := fstest.MapFS{
			"locales/active.en.toml": {Data: []byte("this is = = not toml")},
		}
		_, err := newTranslator(fsys, "en", testLogger())
		assert.ErrorContains(t, err, "failed to load message catalog")
	})
}

func TestTranslator_Match(t *testing.T) {
	tr := newTestTranslator(t, "en")

	tests := []struct {
		header string
		want   language.Tag
	}{
		{"", language.English},
		{"es", language.Spanish},
		{"es-MX,es;q=0.9", language.Spanish},
		{"fr-FR,es;q=0.5", language.Spanish},
		{"de", language.English},
		{"en-GB", language.English},
		{";;;garbage", language.English},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Match(tt.header))
		})
	}
}

func TestTranslator_Localize(t *testing.T) {
	tr := newTestTranslator(t, "en")

	t.Run("validation codes resolve in both languages", func(t *testing.T) {
		assert.Equal(t, "Task must have a title.",
			tr.Localize(language.English, domain.MsgTitleRequired, "", nil))
		assert.Equal(t, "La tarea debe tener un título.",
			tr.Localize(language.Spanish, domain.MsgTitleRequired, "", nil))
		assert.Equal(t, "Estado no válido.",
			tr.Localize(language.Spanish, domain.MsgStateInvalid, "", nil))
	})

	t.Run("every domain code has an English message", func(t *testing.T) {
		codes := []string{
			domain.MsgTitleRequired, domain.MsgTitleLength, domain.MsgStateInvalid,
			domain.MsgExpirationFormat, domain.MsgParentInvalid, domain.MsgParentNotFound, domain.MsgParentCycle,
			domain.MsgTaskTagNameLength, domain.MsgTagNameRequired, domain.MsgTagNameLength,
			domain.MsgTagNameExists, domain.MsgUsernameRequired, domain.MsgUsernameInvalid,
			domain.MsgUsernameExists, domain.MsgPasswordRequired, domain.MsgPasswordTooLong,
			domain.MsgEmailInvalid, domain.MsgInvalidField,
		}
		for _, code := range codes {
			assert.NotEqual(t, code, tr.Localize(language.English, code, "", nil), code)
		}
	})

	t.Run("template data", func(t *testing.T) {
		body := tr.Localize(language.Spanish, MsgReminderBody, "", map[string]any{
			"Username": "ana",
			"Title":    "Pagar la luz",
		})
		assert.Equal(t, "Hola ana, recuerda completar tu tarea: Pagar la luz.", body)
	})

	t.Run("unknown id falls back to default text", func(t *testing.T) {
		assert.Equal(t, "fallback", tr.Localize(language.Spanish, "no.such.message", "fallback", nil))
		assert.Equal(t, "no.such.message", tr.Localize(language.Spanish, "no.such.message", "", nil))
	})
}

func TestLanguageContext(t *testing.T) {
	assert.Equal(t, language.English, LanguageFromContext(context.Background()))

	ctx := WithLanguage(context.Background(), language.Spanish)
	assert.Equal(t, language.Spanish, LanguageFromContext(ctx))
}
