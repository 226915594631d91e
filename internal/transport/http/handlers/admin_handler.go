package handlers

import (
	"net/http"

	"github.com/devbn3li/movies-api/internal/domain/model"
	accountssvc "github.com/devbn3li/movies-api/internal/services/accounts"
	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
	catalogsvc "github.com/devbn3li/movies-api/internal/services/catalog"
	reviewssvc "github.com/devbn3li/movies-api/internal/services/reviews"
	"github.com/devbn3li/movies-api/internal/transport/http/dto"
	httperrors "github.com/devbn3li/movies-api/internal/transport/http/errors"
)

type AdminHandler struct {
	accounts *accountssvc.Service
	catalog  *catalogsvc.Service
	reviews  *reviewssvc.Service
}

func NewAdminHandler(accounts *accountssvc.Service, catalog *catalogsvc.Service, reviews *reviewssvc.Service) *AdminHandler {
	return &AdminHandler{accounts: accounts, catalog: catalog, reviews: reviews}
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	search := r.URL.Query().Get("search")

	accounts, total, err := h.accounts.ListAccounts(r.Context(), search, page, limit)
	if err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminAccountListResponse{
		Items: dto.NewAccountResponses(accounts),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *AdminHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}

	account, err := h.accounts.Profile(r.Context(), id)
	if err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewAccountResponse(account))
}

// AccountContent aggregates an account's reviews and favorites for the
// moderation view.
func (h *AdminHandler) AccountContent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}

	account, err := h.accounts.Profile(r.Context(), id)
	if err != nil {
		handleAccountError(w, err)
		return
	}
	reviews, err := h.reviews.ListByAccount(r.Context(), id, 100, 0)
	if err != nil {
		handleReviewError(w, err)
		return
	}
	favorites, favoritesTotal, err := h.accounts.ListFavorites(r.Context(), id, 1, 50)
	if err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewAdminAccountContentResponse(account, reviews, favorites, favoritesTotal))
}

func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}
	if id == identity.AccountID {
		writeBadRequest(w, "INVALID_OPERATION", "cannot delete your own account")
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		handleAccountError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "account id must be a positive integer")
		return
	}
	if id == identity.AccountID {
		writeBadRequest(w, "INVALID_OPERATION", "cannot modify your own admin status")
		return
	}

	isAdmin, err := h.accounts.ToggleAdmin(r.Context(), id)
	if err != nil {
		handleAccountError(w, err)
		return
	}

	message := "admin privileges revoked"
	if isAdmin {
		message = "admin privileges granted"
	}
	httperrors.Write(w, http.StatusOK, dto.ToggleAdminResponse{Message: message, IsAdmin: isAdmin})
}

func (h *AdminHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.MovieRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	movie, err := h.catalog.CreateMovie(r.Context(), movieFromRequest(req), identity.AccountID)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, movie)
}

func (h *AdminHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "movie id must be a positive integer")
		return
	}

	var req dto.MovieRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	movie := movieFromRequest(req)
	movie.ID = id
	updated, err := h.catalog.UpdateMovie(r.Context(), movie)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "movie id must be a positive integer")
		return
	}

	if err := h.catalog.DeleteMovie(r.Context(), id); err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) CreateTVShow(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.TVShowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	show, err := h.catalog.CreateTVShow(r.Context(), tvShowFromRequest(req), identity.AccountID)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, show)
}

func (h *AdminHandler) UpdateTVShow(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "tv show id must be a positive integer")
		return
	}

	var req dto.TVShowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	show := tvShowFromRequest(req)
	show.ID = id
	updated, err := h.catalog.UpdateTVShow(r.Context(), show)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteTVShow(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "tv show id must be a positive integer")
		return
	}

	if err := h.catalog.DeleteTVShow(r.Context(), id); err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func movieFromRequest(req dto.MovieRequest) model.Movie {
	return model.Movie{
		ExternalID:       req.ExternalID,
		Title:            req.Title,
		OriginalTitle:    req.OriginalTitle,
		Overview:         req.Overview,
		ReleaseDate:      req.ReleaseDate,
		OriginalLanguage: req.OriginalLanguage,
		Popularity:       req.Popularity,
		VoteAverage:      req.VoteAverage,
		VoteCount:        req.VoteCount,
		GenreNames:       req.GenreNames,
		PosterURL:        req.PosterURL,
		BackdropURL:      req.BackdropURL,
		Adult:            req.Adult,
		Video:            req.Video,
		Runtime:          req.Length,
		CastNames:        req.Cast,
	}
}

func tvShowFromRequest(req dto.TVShowRequest) model.TVShow {
	return model.TVShow{
		ExternalID:       req.ExternalID,
		Name:             req.Name,
		OriginalName:     req.OriginalName,
		Overview:         req.Overview,
		FirstAirDate:     req.FirstAirDate,
		OriginCountries:  req.OriginCountry,
		OriginalLanguage: req.OriginalLanguage,
		Popularity:       req.Popularity,
		VoteAverage:      req.VoteAverage,
		VoteCount:        req.VoteCount,
		GenreNames:       req.GenreNames,
		PosterURL:        req.PosterURL,
		BackdropURL:      req.BackdropURL,
		Adult:            req.Adult,
		CastNames:        req.Cast,
	}
}
