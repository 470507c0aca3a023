package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/opencourt/matchday/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	poolHandler *handlers.PoolHandler,
	structureHandler *handlers.StructureHandler,
	teamHandler *handlers.TeamHandler,
	sportHandler *handlers.SportHandler,
	courtHandler *handlers.CourtHandler,
	liveHandler *handlers.LiveHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Post("/", tournamentHandler.CreateHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Put("/", tournamentHandler.UpdateHandler)
			r.Patch("/status", tournamentHandler.UpdateStatusHandler)
			r.Delete("/", tournamentHandler.DeleteHandler)
			r.Post("/logo", tournamentHandler.UploadLogoHandler)

			r.Get("/registrations", tournamentHandler.ListRegistrationsHandler)
			r.Post("/registrations", tournamentHandler.RegisterTeamHandler)

			r.Get("/phases", tournamentHandler.ListPhasesHandler)
			r.Post("/phases", tournamentHandler.CreatePhaseHandler)

			r.Get("/courts", courtHandler.ListByTournamentHandler)
			r.Post("/courts", courtHandler.CreateHandler)

			r.Get("/resolve", matchHandler.ResolveSourceHandler)
		})
	})

	router.Route("/phases/{phaseID}", func(r chi.Router) {
		r.Get("/matches", matchHandler.ListByPhaseHandler)
		r.Get("/pools", poolHandler.ListByPhaseHandler)
		r.Post("/pools", poolHandler.CreateHandler)
		r.Post("/fixtures", structureHandler.GenerateFixturesHandler)
		r.Post("/bracket", structureHandler.GenerateBracketHandler)
		r.Post("/loser-bracket", structureHandler.GenerateLoserBracketHandler)
		r.Post("/sweep", matchHandler.SweepPhaseHandler)
	})

	router.Route("/pools/{poolID}", func(r chi.Router) {
		r.Get("/", poolHandler.GetByIDHandler)
		r.Delete("/", poolHandler.DeleteHandler)
		r.Get("/standings", poolHandler.StandingsHandler)
		r.Get("/matches", poolHandler.ListMatchesHandler)
		r.Post("/teams", poolHandler.AddTeamHandler)
		r.Delete("/teams/{registrationID}", poolHandler.RemoveTeamHandler)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetByIDHandler)
		r.Put("/result", matchHandler.EnterResultHandler)
		r.Post("/propagate", matchHandler.PropagateHandler)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Post("/", teamHandler.CreateHandler)
		r.Route("/{teamID}", func(r chi.Router) {
			r.Get("/", teamHandler.GetByIDHandler)
			r.Put("/", teamHandler.RenameHandler)
			r.Delete("/", teamHandler.DeleteHandler)
			r.Post("/logo", teamHandler.UploadLogoHandler)
		})
	})

	router.Route("/sports", func(r chi.Router) {
		r.Get("/", sportHandler.ListHandler)
		r.Post("/", sportHandler.CreateHandler)
		r.Route("/{sportID}", func(r chi.Router) {
			r.Get("/", sportHandler.GetByIDHandler)
			r.Delete("/", sportHandler.DeleteHandler)
			r.Post("/logo", sportHandler.UploadLogoHandler)
			r.Get("/teams", teamHandler.ListBySportHandler)
		})
	})

	router.Delete("/courts/{courtID}", courtHandler.DeleteHandler)

	router.Route("/live", func(r chi.Router) {
		r.Get("/ws", liveHandler.ServeWsHandler)
		r.Get("/stream", liveHandler.StreamHandler)
		r.Get("/snapshots", liveHandler.SnapshotsHandler)
		r.Post("/matches/{matchID}", liveHandler.PublishHandler)
	})
}
