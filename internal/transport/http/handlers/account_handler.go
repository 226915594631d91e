package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	accountssvc "github.com/devbn3li/movies-api/internal/services/accounts"
	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
	"github.com/devbn3li/movies-api/internal/transport/http/dto"
	httperrors "github.com/devbn3li/movies-api/internal/transport/http/errors"
)

type AccountHandler struct {
	service *accountssvc.Service
}

func NewAccountHandler(service *accountssvc.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	account, err := h.service.Profile(r.Context(), identity.AccountID)
	if err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewAccountResponse(account))
}

func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	account, err := h.service.UpdateProfile(r.Context(), identity.AccountID, accountssvc.UpdateInput{
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.Name,
		Country:     req.Country,
		AvatarURL:   req.ProfilePicture,
		Password:    req.Password,
	})
	if err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewAccountResponse(account))
}

func (h *AccountHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.UpdateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.SetShowAdultContent(r.Context(), identity.AccountID, req.ShowAdultContent); err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AccountHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "username is required")
		return
	}

	account, err := h.service.ProfileByUsername(r.Context(), username)
	if err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPublicAccountResponse(account))
}

func (h *AccountHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	mediaID, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "media id must be a positive integer")
		return
	}

	if err := h.service.AddFavorite(r.Context(), identity.AccountID, mediaID); err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.OKResponse{OK: true})
}

func (h *AccountHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	mediaID, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "media id must be a positive integer")
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), identity.AccountID, mediaID); err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AccountHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	page, limit := pageParams(r)
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	items, total, err := h.service.ListFavorites(r.Context(), identity.AccountID, page, limit)
	if err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewFavoriteListResponse(items, total, page, limit))
}

func handleAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accountssvc.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, accountssvc.ErrNotFound):
		writeNotFound(w, "ACCOUNT_NOT_FOUND", "account not found")
	case errors.Is(err, accountssvc.ErrMediaNotFound):
		writeNotFound(w, "MEDIA_NOT_FOUND", "media not found")
	case errors.Is(err, accountssvc.ErrUsernameTaken):
		writeConflict(w, "USERNAME_TAKEN", "username is already taken")
	case errors.Is(err, accountssvc.ErrEmailTaken):
		writeConflict(w, "EMAIL_TAKEN", "email is already registered")
	case errors.Is(err, accountssvc.ErrFavoriteExists):
		writeConflict(w, "FAVORITE_EXISTS", "media is already in favorites")
	case errors.Is(err, accountssvc.ErrFavoriteNotFound):
		writeNotFound(w, "FAVORITE_NOT_FOUND", "media is not in favorites")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
