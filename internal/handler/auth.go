package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/studysync/studysync/internal/config"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type AuthHandler struct {
	authService       *service.AuthService
	googleOAuthConfig *oauth2.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(req.FullName, req.Email, req.Password)
	if errors.Is(err, service.ErrEmailAlreadyExists) {
		fail(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondWithToken(w, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		fail(w, http.StatusBadRequest, "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondWithToken(w, user)
}

// GoogleAuth redirects to the Google consent screen with a state nonce bound
// to a short-lived cookie.
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to start Google authentication")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		MaxAge:   600,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.googleOAuthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		slog.Warn("google oauth state validation failed")
		fail(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("google oauth callback missing code")
		fail(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := h.googleOAuthConfig.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("google oauth token exchange failed", "error", err)
		fail(w, http.StatusInternalServerError, "Google authentication failed")
		return
	}

	client := h.googleOAuthConfig.Client(r.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		slog.Error("failed to get google user info", "error", err)
		fail(w, http.StatusInternalServerError, "Google authentication failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	var userInfo struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	err = json.NewDecoder(resp.Body).Decode(&userInfo)
	if err != nil {
		slog.Error("failed to decode google user info", "error", err)
		fail(w, http.StatusInternalServerError, "Google authentication failed")
		return
	}

	user, err := h.authService.AuthenticateOAuth(userInfo.Email, userInfo.Name)
	if err != nil {
		slog.Error("google auth failed", "error", err)
		fail(w, http.StatusInternalServerError, "Google authentication failed")
		return
	}

	h.respondWithToken(w, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, user *model.User) {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		fail(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	ok(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func randomState() (string, error) {
	bytes := make([]byte, 16)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
