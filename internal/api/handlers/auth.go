package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/evencat/server/internal/api/middleware"
	"github.com/evencat/server/internal/api/problem"
	"github.com/evencat/server/internal/auth"
	"github.com/evencat/server/internal/domain/users"
	"github.com/evencat/server/internal/uploads"
)

// AuthHandler serves registration, login, and the identity-scoped
// profile routes.
type AuthHandler struct {
	Users       *users.Service
	Tokens      *auth.TokenIssuer
	Uploads     *uploads.Store
	RegisterTTL time.Duration
	LoginTTL    time.Duration
	Env         string

	validate *validator.Validate
}

func NewAuthHandler(usersSvc *users.Service, tokens *auth.TokenIssuer, uploadsStore *uploads.Store, registerTTL, loginTTL time.Duration, env string) *AuthHandler {
	return &AuthHandler{
		Users:       usersSvc,
		Tokens:      tokens,
		Uploads:     uploadsStore,
		RegisterTTL: registerTTL,
		LoginTTL:    loginTTL,
		Env:         env,
		validate:    validator.New(),
	}
}

type registerRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Users.Register(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeConflict, "Username already exists", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Username, h.RegisterTTL)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Users.VerifyCredential(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid credentials", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Username, h.LoginTTL)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, h.Env)
		return
	}

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	if err := h.Users.UpdatePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "User not found", err, h.Env)
		case errors.Is(err, users.ErrInvalidCredentials):
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Current password is incorrect", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	Subtitle    *string `json:"subtitle"`
	Description *string `json:"description"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, h.Env)
		return
	}

	patch, err := h.profilePatch(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Users.UpdateProfile(r.Context(), claims.Subject, patch)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "User not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user.Profile()))
}

// profilePatch accepts a JSON body or a multipart form with an
// optional profileImage part.
func (h *AuthHandler) profilePatch(r *http.Request) (users.ProfilePatch, error) {
	if !isMultipart(r) {
		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return users.ProfilePatch{}, err
		}
		return users.ProfilePatch{
			DisplayName: req.DisplayName,
			Subtitle:    req.Subtitle,
			Description: req.Description,
		}, nil
	}

	if err := r.ParseMultipartForm(middleware.DefaultMaxBodySize); err != nil {
		return users.ProfilePatch{}, err
	}

	patch := users.ProfilePatch{
		DisplayName: formString(r.MultipartForm, "displayName"),
		Subtitle:    formString(r.MultipartForm, "subtitle"),
		Description: formString(r.MultipartForm, "description"),
	}

	file, header, err := r.FormFile("profileImage")
	if err == nil {
		defer file.Close()
		url, saveErr := h.Uploads.Save(file, header)
		if saveErr != nil {
			return users.ProfilePatch{}, saveErr
		}
		patch.ImageURL = &url
	} else if !errors.Is(err, http.ErrMissingFile) {
		return users.ProfilePatch{}, err
	}

	return patch, nil
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, h.Env)
		return
	}

	profile, err := h.Users.GetPublicProfile(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "User not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}
