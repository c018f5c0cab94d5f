package handler

import (
	"encoding/json"
	"net/http"

	"ecommerce-auth/internal/metrics"
	"ecommerce-auth/internal/middleware"
	"ecommerce-auth/internal/model"
	"ecommerce-auth/internal/service"
	"ecommerce-auth/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
	cookies CookiePolicy
	metrics *metrics.Metrics
	verbose bool
}

// NewAuthHandler wires the session lifecycle to HTTP. verbose exposes
// server error causes in responses and must be off in production.
func NewAuthHandler(service *service.AuthService, cookies CookiePolicy, m *metrics.Metrics, verbose bool) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies, metrics: m, verbose: verbose}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.fail(w, "signup", invalidBody())
		return
	}

	result, err := h.service.Signup(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		h.fail(w, "signup", err)
		return
	}

	h.metrics.ObserveAuth("signup", nil)
	h.cookies.setTokenCookies(w, result.Tokens.AccessToken, result.Tokens.RefreshToken)
	writeJSON(w, http.StatusCreated, model.AuthResponse{User: result.User, Message: "User created successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.fail(w, "login", invalidBody())
		return
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.fail(w, "login", err)
		return
	}

	h.metrics.ObserveAuth("login", nil)
	h.cookies.setTokenCookies(w, result.Tokens.AccessToken, result.Tokens.RefreshToken)
	writeJSON(w, http.StatusOK, model.AuthResponse{User: result.User, Message: "Logged in successfully"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), refreshCookie(r)); err != nil {
		h.fail(w, "logout", err)
		return
	}

	h.metrics.ObserveAuth("logout", nil)
	h.cookies.clearTokenCookies(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	accessToken, _, err := h.service.Refresh(r.Context(), refreshCookie(r))
	if err != nil {
		h.fail(w, "refresh", err)
		return
	}

	h.metrics.ObserveAuth("refresh", nil)
	h.cookies.setAccessCookie(w, accessToken)
	writeMessage(w, http.StatusOK, "Token refreshed successfully")
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.Profile(r.Context(), claims.UserID())
	if err != nil {
		writeError(w, err, h.verbose)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) fail(w http.ResponseWriter, operation string, err error) {
	h.metrics.ObserveAuth(operation, err)
	writeError(w, err, h.verbose)
}

func refreshCookie(r *http.Request) string {
	cookie, err := r.Cookie(model.RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func invalidBody() error {
	return apierror.Wrap(apierror.KindValidation, "invalid JSON body", http.StatusBadRequest, model.ErrInvalidInput)
}
