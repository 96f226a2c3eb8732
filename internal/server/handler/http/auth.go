package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/config"
	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"go.uber.org/zap"
)

// refreshCookie is the cookie slot holding the refresh token.
const refreshCookie = "refresh"

// AccountService defines the account operations required by AuthHandler.
type AccountService interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// TokenIssuer defines the token operations required by AuthHandler.
type TokenIssuer interface {
	GeneratePair(userID string) (access, refresh string, err error)
	Refresh(ctx context.Context, refreshToken string) (access, newRefresh string, err error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// AuthHandler handles registration, login, token refresh, logout and profile.
type AuthHandler struct {
	// Accounts performs the underlying account operations.
	Accounts AccountService
	// Tokens issues and refreshes the cookie-borne tokens.
	Tokens TokenIssuer
	// Cookie holds the transport options applied to both token cookies.
	Cookie config.CookieOptions
	// Log is used for unhandled errors only.
	Log *zap.Logger
}

// registerRequest represents the JSON payload for user registration.
type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// loginRequest represents the JSON payload for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: h.Cookie.HTTPOnly,
		Secure:   h.Cookie.Secure,
		SameSite: h.Cookie.SameSiteMode(),
		Domain:   h.Cookie.Domain,
	})
}

func (h *AuthHandler) clearTokenCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: h.Cookie.HTTPOnly,
		Secure:   h.Cookie.Secure,
		SameSite: h.Cookie.SameSiteMode(),
		Domain:   h.Cookie.Domain,
	})
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed", map[string][]string{
			"body": {"Invalid JSON."},
		})
		return
	}

	user, err := h.Accounts.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}

	respondData(w, http.StatusCreated, "User registered successfully", user)
}

// Login handles POST /login. On success it stores the access and refresh
// tokens in cookies; on any credential failure it answers a generic 401 and
// sets nothing.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	user, err := h.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}

	access, refresh, err := h.Tokens.GeneratePair(user.ID)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}

	h.setTokenCookie(w, middleware.AccessCookie, access, h.Tokens.AccessTTL())
	h.setTokenCookie(w, refreshCookie, refresh, h.Tokens.RefreshTTL())
	respondData(w, http.StatusOK, "Logged in successfully", nil)
}

// Refresh handles POST /token/refresh. It reads the refresh token from its
// cookie, never from the body, and distinguishes a missing token from an
// invalid one in the response message.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Refresh token missing", nil)
		return
	}

	access, newRefresh, err := h.Tokens.Refresh(r.Context(), cookie.Value)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}

	h.setTokenCookie(w, middleware.AccessCookie, access, h.Tokens.AccessTTL())
	if newRefresh != "" {
		h.setTokenCookie(w, refreshCookie, newRefresh, h.Tokens.RefreshTTL())
	}
	respondData(w, http.StatusOK, "Token refreshed", map[string]string{"access": access})
}

// Logout handles POST /logout. It clears both cookies and always succeeds,
// session or not; the tokens themselves simply age out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w, middleware.AccessCookie)
	h.clearTokenCookie(w, refreshCookie)
	respondData(w, http.StatusOK, "Logged out", nil)
}

// Profile handles GET /profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	user, err := h.Accounts.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}
	respondData(w, http.StatusOK, "Profile", user)
}
