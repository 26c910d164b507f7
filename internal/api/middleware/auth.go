package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/phrazzld/tasktracker/internal/i18n"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	translator *i18n.Translator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
// A nil translator leaves error messages in English.
func NewAuthMiddleware(jwtService auth.JWTService, translator *i18n.Translator) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		translator: translator,
	}
}

// Authenticate validates the Bearer access token and adds the user ID to the
// request context. Requests without a valid access token get 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				m.message(r, i18n.MsgUnauthorized, "Authentication credentials were not provided."))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				m.message(r, i18n.MsgInvalidToken, "Token is invalid or expired."))
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken),
				errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
					m.message(r, i18n.MsgInvalidToken, "Token is invalid or expired."), err)
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					m.message(r, i18n.MsgInternal, "An unexpected error occurred."), err)
			}
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		log := logger.FromContextOrDefault(ctx, slog.Default()).With("user_id", claims.UserID.String())
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) message(r *http.Request, id, fallback string) string {
	if m.translator == nil {
		return fallback
	}
	return m.translator.Localize(i18n.LanguageFromContext(r.Context()), id, fallback, nil)
}
