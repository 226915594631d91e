package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
	socialsvc "github.com/devbn3li/movies-api/internal/services/social"
	"github.com/devbn3li/movies-api/internal/transport/http/dto"
	httperrors "github.com/devbn3li/movies-api/internal/transport/http/errors"
)

type SocialHandler struct {
	service *socialsvc.Service
}

func NewSocialHandler(service *socialsvc.Service) *SocialHandler {
	return &SocialHandler{service: service}
}

func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	targetID, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}

	res, err := h.service.Follow(r.Context(), identity.AccountID, targetID)
	if err != nil {
		handleSocialError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FollowResponse{
		Following:      res.Following,
		FollowersCount: res.FollowersCount,
		FollowingCount: res.FollowingCount,
	})
}

func (h *SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	targetID, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}

	res, err := h.service.Unfollow(r.Context(), identity.AccountID, targetID)
	if err != nil {
		handleSocialError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FollowResponse{
		Following:      res.Following,
		FollowersCount: res.FollowersCount,
		FollowingCount: res.FollowingCount,
	})
}

func (h *SocialHandler) Followers(w http.ResponseWriter, r *http.Request) {
	targetID, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}

	page, limit := socialPageParams(r)
	accounts, total, err := h.service.Followers(r.Context(), targetID, page, limit)
	if err != nil {
		handleSocialError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AccountListResponse{
		Items: dto.NewPublicAccountResponses(accounts),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *SocialHandler) Following(w http.ResponseWriter, r *http.Request) {
	targetID, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}

	page, limit := socialPageParams(r)
	accounts, total, err := h.service.Following(r.Context(), targetID, page, limit)
	if err != nil {
		handleSocialError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AccountListResponse{
		Items: dto.NewPublicAccountResponses(accounts),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *SocialHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	targetID, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}

	status, err := h.service.Status(r.Context(), identity.AccountID, targetID)
	if err != nil {
		handleSocialError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FollowStatusResponse{
		IsSelf:    status.IsSelf,
		Following: status.Following,
	})
}

func (h *SocialHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 0)
	accounts, err := h.service.Suggestions(r.Context(), identity.AccountID, limit)
	if err != nil {
		handleSocialError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPublicAccountResponses(accounts))
}

func handleSocialError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, socialsvc.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, socialsvc.ErrInvalidOperation):
		writeBadRequest(w, "INVALID_OPERATION", err.Error())
	case errors.Is(err, socialsvc.ErrAccountNotFound):
		writeNotFound(w, "ACCOUNT_NOT_FOUND", "account not found")
	case errors.Is(err, socialsvc.ErrAlreadyFollowing):
		writeConflict(w, "ALREADY_FOLLOWING", "account is already followed")
	case errors.Is(err, socialsvc.ErrNotFollowing):
		writeBadRequest(w, "INVALID_OPERATION", "account is not followed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func socialPageParams(r *http.Request) (int, int) {
	page, limit := pageParams(r)
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return page, limit
}
