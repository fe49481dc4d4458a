package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/common"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/tokengenerator"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned alongside the session cookie.
type LoginResponse struct {
	Message    string    `json:"message"`
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Handle serves login and logout.
type Handle struct {
	service *login.LoginService
	cookies tokengenerator.CookieSetter
}

func NewHandle(service *login.LoginService, cookies tokengenerator.CookieSetter) *Handle {
	return &Handle{service: service, cookies: cookies}
}

func (h *Handle) Routes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)
}

// Login handles POST /login
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}

	h.cookies.SetCookie(w, result.Token, result.ExpiresAt)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, LoginResponse{
		Message:    "Login successful",
		ID:         result.Account.ID,
		Username:   result.Account.Username,
		Email:      result.Account.Email,
		IsVerified: result.Account.IsVerified,
		ExpiresAt:  result.ExpiresAt,
	})
}

// Logout handles GET/POST /logout
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearCookie(w)
	common.RenderMessage(w, r, http.StatusOK, "Logout successful")
}
