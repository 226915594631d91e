package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/devbn3li/movies-api/internal/domain/model"
	accountssvc "github.com/devbn3li/movies-api/internal/services/accounts"
	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
	catalogsvc "github.com/devbn3li/movies-api/internal/services/catalog"
	"github.com/devbn3li/movies-api/internal/transport/http/dto"
	httperrors "github.com/devbn3li/movies-api/internal/transport/http/errors"
)

type CatalogHandler struct {
	service  *catalogsvc.Service
	accounts *accountssvc.Service
	logger   *zap.Logger
}

func NewCatalogHandler(service *catalogsvc.Service, accounts *accountssvc.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, accounts: accounts, logger: logger}
}

func (h *CatalogHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

func (h *CatalogHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "movie")
}

func (h *CatalogHandler) ListTVShows(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "tv")
}

func (h *CatalogHandler) TopRatedMovies(w http.ResponseWriter, r *http.Request) {
	h.quickList(w, r, "movie", catalogsvc.QuickFilterTopRated)
}

func (h *CatalogHandler) PopularMovies(w http.ResponseWriter, r *http.Request) {
	h.quickList(w, r, "movie", catalogsvc.QuickFilterPopular)
}

func (h *CatalogHandler) TopRatedTVShows(w http.ResponseWriter, r *http.Request) {
	h.quickList(w, r, "tv", catalogsvc.QuickFilterTopRated)
}

func (h *CatalogHandler) PopularTVShows(w http.ResponseWriter, r *http.Request) {
	h.quickList(w, r, "tv", catalogsvc.QuickFilterPopular)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request, mediaType string) {
	q := listQueryFromRequest(r)
	q.MediaType = mediaType

	page, err := h.service.List(r.Context(), h.viewer(r), q)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewMediaListResponse(page))
}

func (h *CatalogHandler) quickList(w http.ResponseWriter, r *http.Request, mediaType, filter string) {
	q := listQueryFromRequest(r)
	q.MediaType = mediaType
	q.QuickFilter = filter

	page, err := h.service.List(r.Context(), h.viewer(r), q)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewMediaListResponse(page))
}

func (h *CatalogHandler) Filters(w http.ResponseWriter, r *http.Request) {
	includeAdult := false
	if explicit := queryBool(r, "include_adult"); explicit != nil {
		includeAdult = *explicit
	} else if viewer := h.viewer(r); viewer != nil {
		includeAdult = viewer.ShowAdultContent
	}

	meta, err := h.service.Filters(r.Context(), includeAdult)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, meta)
}

func (h *CatalogHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "movie id must be a positive integer")
		return
	}

	movie, err := h.service.GetMovie(r.Context(), id)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, movie)
}

func (h *CatalogHandler) GetMovieByExternalID(w http.ResponseWriter, r *http.Request) {
	externalID, ok := urlID(r, "externalID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "external id must be a positive integer")
		return
	}

	movie, err := h.service.GetMovieByExternalID(r.Context(), externalID)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, movie)
}

func (h *CatalogHandler) GetTVShow(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "tv show id must be a positive integer")
		return
	}

	show, err := h.service.GetTVShow(r.Context(), id)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, show)
}

func (h *CatalogHandler) GetTVShowByExternalID(w http.ResponseWriter, r *http.Request) {
	externalID, ok := urlID(r, "externalID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "external id must be a positive integer")
		return
	}

	show, err := h.service.GetTVShowByExternalID(r.Context(), externalID)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, show)
}

// viewer resolves the authenticated account when one is attached to the
// request; anonymous requests get nil.
func (h *CatalogHandler) viewer(r *http.Request) *model.Account {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	account, err := h.accounts.Profile(r.Context(), identity.AccountID)
	if err != nil {
		h.logger.Warn("resolve viewer account", zap.Int64("account_id", identity.AccountID), zap.Error(err))
		return nil
	}
	return &account
}

func listQueryFromRequest(r *http.Request) catalogsvc.ListQuery {
	values := r.URL.Query()
	// order is the documented direction param, sort_order stays as an
	// accepted alias.
	sortOrder := strings.TrimSpace(values.Get("order"))
	if sortOrder == "" {
		sortOrder = strings.TrimSpace(values.Get("sort_order"))
	}
	return catalogsvc.ListQuery{
		Search:           strings.TrimSpace(values.Get("search")),
		Genre:            strings.TrimSpace(values.Get("genre")),
		Language:         strings.TrimSpace(values.Get("language")),
		OriginalLanguage: strings.TrimSpace(values.Get("original_language")),
		Year:             strings.TrimSpace(values.Get("year")),
		QuickFilter:      strings.TrimSpace(values.Get("filter")),
		MinRating:        parseFloatOrDefault(values.Get("min_rating"), 0),
		MaxRating:        parseFloatOrDefault(values.Get("max_rating"), 0),
		MinPopularity:    parseFloatOrDefault(values.Get("min_popularity"), 0),
		MinVotes:         parseIntOrDefault(values.Get("min_votes"), 0),
		SortBy:           strings.TrimSpace(values.Get("sort_by")),
		SortOrder:        sortOrder,
		IncludeAdult:     queryBool(r, "include_adult"),
		Page:             parseIntOrDefault(values.Get("page"), 1),
		Limit:            parseIntOrDefault(values.Get("limit"), 0),
	}
}

func handleCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogsvc.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, catalogsvc.ErrNotFound):
		writeNotFound(w, "MEDIA_NOT_FOUND", "media not found")
	case errors.Is(err, catalogsvc.ErrConflict):
		writeConflict(w, "MEDIA_EXISTS", "media with this external id already exists")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
