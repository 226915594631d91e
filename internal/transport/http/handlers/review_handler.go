package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
	reviewssvc "github.com/devbn3li/movies-api/internal/services/reviews"
	"github.com/devbn3li/movies-api/internal/transport/http/dto"
	httperrors "github.com/devbn3li/movies-api/internal/transport/http/errors"
)

type ReviewHandler struct {
	service *reviewssvc.Service
}

func NewReviewHandler(service *reviewssvc.Service) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	mediaID, ok := urlID(r, "mediaID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "media id must be a positive integer")
		return
	}

	var req dto.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	review, err := h.service.Submit(r.Context(), identity.AccountID, mediaID, req.Comment, req.Rating)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewReviewResponse(review))
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	mediaID, ok := urlID(r, "mediaID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "media id must be a positive integer")
		return
	}

	var req dto.UpdateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	review, err := h.service.Update(r.Context(), identity.AccountID, mediaID, req.Comment, req.Rating)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewResponse(review))
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	mediaID, ok := urlID(r, "mediaID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "media id must be a positive integer")
		return
	}

	if err := h.service.Delete(r.Context(), identity.AccountID, mediaID); err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ReviewHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	mediaID, ok := urlID(r, "mediaID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "media id must be a positive integer")
		return
	}

	review, err := h.service.Get(r.Context(), identity.AccountID, mediaID)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewResponse(review))
}

func (h *ReviewHandler) ListByMedia(w http.ResponseWriter, r *http.Request) {
	mediaID, ok := urlID(r, "mediaID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "media id must be a positive integer")
		return
	}

	page, limit := pageParams(r)
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	items, total, err := h.service.ListByMedia(r.Context(), mediaID, page, limit)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReviewListResponse{
		Items: dto.NewReviewWithAuthorResponses(items),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	mediaID, ok := urlID(r, "mediaID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "media id must be a positive integer")
		return
	}

	stats, err := h.service.Stats(r.Context(), mediaID)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReviewStatsResponse{
		Average:   stats.Average,
		Total:     stats.Total,
		Histogram: stats.Histogram,
	})
}

func handleReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reviewssvc.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, reviewssvc.ErrMediaNotFound):
		writeNotFound(w, "MEDIA_NOT_FOUND", "media not found")
	case errors.Is(err, reviewssvc.ErrNotFound):
		writeNotFound(w, "REVIEW_NOT_FOUND", "review not found")
	case errors.Is(err, reviewssvc.ErrConflict):
		writeConflict(w, "REVIEW_EXISTS", "media is already reviewed by this account")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
