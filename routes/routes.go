package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/bracket-engine/docs"
	"github.com/Dosada05/bracket-engine/handlers"
	"github.com/Dosada05/bracket-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(30 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	router.Get(docs.DocPath, docs.ServeDoc)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docs.DocPath)))

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		// Публичные маршруты для просмотра сетки
		r.Get("/", tournamentHandler.GetByIDHandler)
		r.Get("/bracket", tournamentHandler.GetBracketHandler)
		r.Get("/matches", tournamentHandler.ListMatchesHandler)

		// Только организаторы меняют сетку
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleAdmin))

			r.Post("/start", tournamentHandler.StartHandler)
			r.Post("/rounds/next", tournamentHandler.NextRoundHandler)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleAdmin))

		r.Put("/score", matchHandler.SubmitScoreHandler)
	})
}
