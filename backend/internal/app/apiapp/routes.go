package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/config"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/metrics"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	Tokens            TokenParser
	PhoneVerifier     handlers.PhoneVerifier
	PetitionService   handlers.PetitionService
	SignatureService  handlers.SignatureService
	MediaService      handlers.ImageUploader
	AppealService     handlers.AppealService
	ModerationService handlers.ModerationService
	Inbox             handlers.InboxService
	HealthChecks      map[string]handlers.HealthCheck
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	configHandler := handlers.NewConfigHandler(deps.Config.Appeals)
	petitionHandler := handlers.NewPetitionHandler(deps.PetitionService, deps.SignatureService, deps.PhoneVerifier)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	appealHandler := handlers.NewAppealHandler(deps.AppealService)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService)
	notificationHandler := handlers.NewNotificationHandler(deps.Inbox)
	authMW := AuthMiddleware(deps.Tokens, deps.Logger)
	optionalAuthMW := OptionalAuthMiddleware(deps.Tokens, deps.Logger)
	moderatorMW := RequireModerator()

	r.Get("/healthz", healthHandler.Get)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Handle)

		r.With(authMW).Post("/petitions", petitionHandler.Create)
		r.With(optionalAuthMW).Get("/petitions/{id}", petitionHandler.Get)
		r.With(authMW).Put("/petitions/{id}", petitionHandler.Update)
		r.With(authMW).Post("/petitions/{id}/resubmit", petitionHandler.Resubmit)
		r.With(authMW).Post("/petitions/{id}/image", mediaHandler.PetitionImageUpload)
		r.With(optionalAuthMW).Post("/petitions/{id}/signatures", petitionHandler.Sign)
		r.Get("/petitions/{id}/signatures/count", petitionHandler.SignatureCount)
		r.With(authMW).Post("/petitions/{id}/appeals", appealHandler.Create)

		r.With(authMW).Get("/appeals", appealHandler.List)
		r.With(authMW).Get("/appeals/{id}", appealHandler.Get)
		r.With(authMW).Post("/appeals/{id}/messages", appealHandler.AddMessage)

		r.Route("/me", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/petitions", petitionHandler.ListMine)
			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/{id}/read", notificationHandler.MarkRead)
			r.Put("/contact", notificationHandler.SyncContact)
		})

		r.Route("/mod", func(r chi.Router) {
			r.Use(authMW, moderatorMW)
			r.Get("/queue", moderationHandler.Queue)
			r.Get("/reject-reasons", moderationHandler.RejectReasons)
			r.Get("/audit", moderationHandler.AuditLog)
			r.Post("/petitions/{id}/actions", moderationHandler.Action)
			r.Post("/appeals/{id}/status", appealHandler.UpdateStatus)
		})
	})
}
