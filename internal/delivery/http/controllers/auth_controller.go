package controllers

import (
	"log/slog"
	"net/http"
	"time"

	h "sidevault/internal/delivery/http/helpers"
	"sidevault/internal/domain"
)

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /auth/login.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// tokenSubject is the fixed subject of vault tokens. The vault has a single
// owner credential, not user accounts.
const tokenSubject = "vault"

type AuthController struct {
	Logger       *slog.Logger
	Hasher       domain.PasswordHasher
	Issuer       domain.TokenIssuer
	PasswordHash string
	TokenExpiry  time.Duration
}

func NewAuthController(logger *slog.Logger, hasher domain.PasswordHasher, issuer domain.TokenIssuer, passwordHash string, tokenExpiry time.Duration) *AuthController {
	return &AuthController{
		Logger:       logger,
		Hasher:       hasher,
		Issuer:       issuer,
		PasswordHash: passwordHash,
		TokenExpiry:  tokenExpiry,
	}
}

// Login godoc
// @Summary Log in to the vault
// @Description Authenticate with the vault password. Returns a Bearer JWT for all other endpoints.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Vault password"
// @Success 200 {object} helpers.APIResponse "data contains token, token_type, and expires_in seconds"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Hasher.Compare(c.PasswordHash, req.Password); err != nil {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid credentials")
		return
	}
	token, err := c.Issuer.Issue(tokenSubject, c.TokenExpiry)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(c.TokenExpiry.Seconds()),
	})
}
