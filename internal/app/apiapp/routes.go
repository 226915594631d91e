package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devbn3li/movies-api/internal/config"
	accountssvc "github.com/devbn3li/movies-api/internal/services/accounts"
	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
	catalogsvc "github.com/devbn3li/movies-api/internal/services/catalog"
	reviewssvc "github.com/devbn3li/movies-api/internal/services/reviews"
	socialsvc "github.com/devbn3li/movies-api/internal/services/social"
	uploadssvc "github.com/devbn3li/movies-api/internal/services/uploads"
	"github.com/devbn3li/movies-api/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	AccountService *accountssvc.Service
	CatalogService *catalogsvc.Service
	ReviewService  *reviewssvc.Service
	SocialService  *socialsvc.Service
	UploadService  *uploadssvc.Service
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	accountHandler := handlers.NewAccountHandler(deps.AccountService)
	catalogHandler := handlers.NewCatalogHandler(deps.CatalogService, deps.AccountService, deps.Logger)
	reviewHandler := handlers.NewReviewHandler(deps.ReviewService)
	socialHandler := handlers.NewSocialHandler(deps.SocialService)
	uploadHandler := handlers.NewUploadHandler(deps.UploadService)
	adminHandler := handlers.NewAdminHandler(deps.AccountService, deps.CatalogService, deps.ReviewService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	optionalAuthMW := OptionalAuthMiddleware(deps.AuthService, deps.Logger)
	adminMW := RequireAdmin

	r.Get("/healthz", healthHandler.Get)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/verify-reset-code", authHandler.VerifyResetCode)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Route("/user", func(r chi.Router) {
			r.With(authMW).Get("/profile", accountHandler.Me)
			r.With(authMW).Put("/profile", accountHandler.UpdateMe)
			r.With(authMW).Put("/settings", accountHandler.UpdateSettings)
			r.Get("/{username}", accountHandler.PublicProfile)
		})

		r.Group(func(r chi.Router) {
			r.Use(optionalAuthMW)
			r.Get("/catalog", catalogHandler.ListAll)
			r.Get("/catalog/filters", catalogHandler.Filters)

			r.Get("/movies", catalogHandler.ListMovies)
			r.Get("/movies/top/rated", catalogHandler.TopRatedMovies)
			r.Get("/movies/popular/list", catalogHandler.PopularMovies)
			r.Get("/movies/external/{externalID}", catalogHandler.GetMovieByExternalID)
			r.Get("/movies/{id}", catalogHandler.GetMovie)

			r.Get("/tvshows", catalogHandler.ListTVShows)
			r.Get("/tvshows/top/rated", catalogHandler.TopRatedTVShows)
			r.Get("/tvshows/popular/list", catalogHandler.PopularTVShows)
			r.Get("/tvshows/external/{externalID}", catalogHandler.GetTVShowByExternalID)
			r.Get("/tvshows/{id}", catalogHandler.GetTVShow)
		})

		r.With(authMW, adminMW).Post("/movies", adminHandler.CreateMovie)
		r.With(authMW, adminMW).Put("/movies/{id}", adminHandler.UpdateMovie)
		r.With(authMW, adminMW).Delete("/movies/{id}", adminHandler.DeleteMovie)
		r.With(authMW, adminMW).Post("/tvshows", adminHandler.CreateTVShow)
		r.With(authMW, adminMW).Put("/tvshows/{id}", adminHandler.UpdateTVShow)
		r.With(authMW, adminMW).Delete("/tvshows/{id}", adminHandler.DeleteTVShow)

		r.Route("/media/{mediaID}/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.ListByMedia)
			r.Get("/stats", reviewHandler.Stats)
			r.With(authMW).Get("/me", reviewHandler.GetOwn)
			r.With(authMW).Post("/", reviewHandler.Submit)
			r.With(authMW).Put("/", reviewHandler.Update)
			r.With(authMW).Delete("/", reviewHandler.Delete)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/", accountHandler.ListFavorites)
			r.Post("/{id}", accountHandler.AddFavorite)
			r.Delete("/{id}", accountHandler.RemoveFavorite)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(authMW).Get("/suggestions", socialHandler.Suggestions)
			r.With(authMW).Post("/{id}/follow", socialHandler.Follow)
			r.With(authMW).Delete("/{id}/unfollow", socialHandler.Unfollow)
			r.With(authMW).Get("/{id}/follow-status", socialHandler.Status)
			r.Get("/{id}/followers", socialHandler.Followers)
			r.Get("/{id}/following", socialHandler.Following)
		})

		r.With(authMW).Post("/upload", uploadHandler.Image)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, adminMW)
			r.Get("/users", adminHandler.ListAccounts)
			r.Get("/users/{id}", adminHandler.GetAccount)
			r.Get("/users/{id}/content", adminHandler.AccountContent)
			r.Patch("/users/{id}/toggle-admin", adminHandler.ToggleAdmin)
			r.Delete("/users/{id}", adminHandler.DeleteAccount)
		})
	})
}
