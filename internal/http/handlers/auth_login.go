package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"store-admin-service/internal/auth"
	"store-admin-service/internal/catalog"
	"store-admin-service/pkg/response"
)

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresAt   string `json:"expiresAt"`
	SessionID   string `json:"sessionId"`
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(r, &body); err != nil {
		writeInvalid(w, err)
		return
	}
	if err := catalog.Validate(body); err != nil {
		writeInvalid(w, err)
		return
	}

	checker := auth.PasswordChecker{Hash: h.Config.AdminPasswordHash, Plain: h.Config.AdminPassword}
	if err := checker.Check(body.Password); err != nil {
		if errors.Is(err, auth.ErrLoginDisabled) {
			response.Error(w, http.StatusServiceUnavailable, "LOGIN_DISABLED", "Admin login is not configured")
			return
		}
		h.Logger.Info("admin login rejected", zap.String("remote", r.RemoteAddr))
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid password")
		return
	}

	token, claims, err := auth.IssueAccessToken(h.Config.JWTSecret, h.Config.JWTExpiry(), h.now())
	if err != nil {
		h.Logger.Error("issue admin token failed", zapError(err))
		response.Error(w, http.StatusServiceUnavailable, "LOGIN_DISABLED", "Admin login is not configured")
		return
	}

	response.Success(w, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		SessionID:   claims.SessionID,
	})
}
