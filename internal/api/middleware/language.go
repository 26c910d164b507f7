package middleware

import (
	"net/http"

	"github.com/phrazzld/tasktracker/internal/i18n"
)

// NewLanguageMiddleware picks the response language from Accept-Language
// and stores it in the request context.
func NewLanguageMiddleware(translator *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := translator.Match(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", lang.String())
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(i18n.WithLanguage(r.Context(), lang)))
		})
	}
}
