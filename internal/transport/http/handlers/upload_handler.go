package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
	uploadssvc "github.com/devbn3li/movies-api/internal/services/uploads"
	"github.com/devbn3li/movies-api/internal/transport/http/dto"
	httperrors "github.com/devbn3li/movies-api/internal/transport/http/errors"
)

const maxImageUploadSize = 5 << 20 // 5 MiB

type UploadHandler struct {
	service *uploadssvc.Service
}

func NewUploadHandler(service *uploadssvc.Service) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadSize)
	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	upload, err := h.service.UploadImage(r.Context(), identity.AccountID, header.Filename, contentType, file, header.Size)
	if err != nil {
		handleUploadError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.UploadResponse{
		URL: upload.URL,
		Key: upload.Key,
	})
}

func handleUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, uploadssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, uploadssvc.ErrTooLarge):
		httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{
			Code:    "FILE_TOO_LARGE",
			Message: "file exceeds the maximum allowed size",
		})
	case errors.Is(err, uploadssvc.ErrUnsupported):
		httperrors.Write(w, http.StatusUnsupportedMediaType, httperrors.APIError{
			Code:    "UNSUPPORTED_MEDIA_TYPE",
			Message: "file type is not supported",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
