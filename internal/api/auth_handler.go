package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/service"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/phrazzld/tasktracker/internal/store"
)

var credentialCodes = shared.FieldCodes{
	"username.required": domain.MsgUsernameRequired,
	"password.required": domain.MsgPasswordRequired,
}

// AuthHandler handles signup and token endpoints.
type AuthHandler struct {
	userService service.UserService
	jwtService  auth.JWTService
	errors      *ErrorResponder
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	errors *ErrorResponder,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		errors:      errors,
		logger:      logger.With("component", "auth_handler"),
	}
}

// Signup handles POST /api/signup/.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalidBody(w, r, h.errors, err)
		return
	}
	if err := shared.ValidateRequest(req, credentialCodes); err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	h.log(r).Info("user signed up", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, SignupResponse{
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login handles POST /api/login/ and issues an access and refresh token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalidBody(w, r, h.errors, err)
		return
	}
	if err := shared.ValidateRequest(req, credentialCodes); err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	access, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}
	refresh, err := h.jwtService.GenerateRefreshToken(r.Context(), user.ID)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenPairResponse{
		Access:  access,
		Refresh: refresh,
	})
}

// Refresh handles POST /api/token/refresh/ and exchanges a refresh token
// for a new access token. Tokens of deleted accounts are rejected.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalidBody(w, r, h.errors, err)
		return
	}
	if err := shared.ValidateRequest(req, nil); err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.Refresh)
	if err != nil {
		h.log(r).Debug("refresh token rejected", slog.Any("error", err))
		h.errors.HandleAPIError(w, r, err)
		return
	}

	if _, err := h.userService.GetUser(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.log(r).Info("refresh token for missing user", slog.String("user_id", claims.UserID.String()))
			err = auth.ErrInvalidRefreshToken
		}
		h.errors.HandleAPIError(w, r, err)
		return
	}

	access, err := h.jwtService.GenerateToken(r.Context(), claims.UserID)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AccessTokenResponse{Access: access})
}

func (h *AuthHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
