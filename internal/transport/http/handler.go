package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
	"aquapulse/internal/httpx"
	"aquapulse/internal/service"
)

type Handler struct {
	Auth    service.AuthService
	Tokens  service.TokenService
	Cookies CookieConfig
}

func NewHandler(auth service.AuthService, tokens service.TokenService, cookies CookieConfig) *Handler {
	return &Handler{Auth: auth, Tokens: tokens, Cookies: cookies}
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.Auth.RegisterUser(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) RegisterSupplier(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterSupplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.Auth.RegisterSupplier(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.Auth.VerifyEmail(r.Context(), req.Email, req.Token)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// Login returns tokens in the body for customers; every other role gets them as cookies only.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.Auth.ValidateCredentials(r.Context(), req.Email, req.Password)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		httpx.WriteError(w, r, err)
		return
	}
	if p == nil {
		httpx.WriteError(w, r, domain.ErrInvalidCredentials)
		return
	}

	res, err := h.Auth.Login(r.Context(), p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if res.Principal != nil && res.Principal.Role() != domain.RoleCustomer {
		h.Cookies.SetAccess(w, res.AccessToken)
		h.Cookies.SetRefresh(w, res.RefreshToken)
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": res.User})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), credentialsFrom(r)); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.Cookies.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

type refreshResponse struct {
	Success bool `json:"success"`
	dto.RefreshResponse
}

// RefreshToken accepts the refresh token from the body, the refresh header or the refresh cookie.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	tok := req.RefreshToken
	if tok == "" {
		tok = credentialsFrom(r).RefreshToken
	}
	if tok == "" {
		httpx.WriteError(w, r, domain.Unauthorized("No refresh token provided"))
		return
	}
	res, err := h.Tokens.Refresh(r.Context(), tok)
	if err != nil {
		httpx.WriteError(w, r, domain.Unauthorized("Invalid or expired refresh token"))
		return
	}
	h.Cookies.SetAccess(w, res.AccessToken)
	httpx.WriteJSON(w, http.StatusOK, refreshResponse{Success: true, RefreshResponse: *res})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	res, ok := AuthResultFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, domain.Unauthorized("User not authenticated"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res.Principal)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	res, ok := AuthResultFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, domain.Unauthorized("User not authenticated"))
		return
	}
	var req dto.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out, err := h.Auth.ChangePassword(r.Context(), res.PrincipalID, req.OldPassword, req.NewPassword)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.Auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// VerifyResetCode always answers 200; the outcome is in the body.
func (h *Handler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyResetCodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Auth.VerifyResetCode(r.Context(), req.Email, req.Code))
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.Auth.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) GetPrincipal(w http.ResponseWriter, r *http.Request) {
	p, err := h.Auth.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}
