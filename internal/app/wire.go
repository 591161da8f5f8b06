// Package app assembles the back office: repositories, engine, services,
// handlers and the router. cmd/api and the integration tests share it.
package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubhaus/backoffice/internal/auth"
	"github.com/clubhaus/backoffice/internal/bus"
	"github.com/clubhaus/backoffice/internal/engine"
	"github.com/clubhaus/backoffice/internal/guard"
	"github.com/clubhaus/backoffice/internal/handler"
	adminhandler "github.com/clubhaus/backoffice/internal/handler/admin"
	"github.com/clubhaus/backoffice/internal/notify"
	"github.com/clubhaus/backoffice/internal/repository"
	"github.com/clubhaus/backoffice/internal/service"
	"github.com/clubhaus/backoffice/internal/subscription"
	"github.com/clubhaus/backoffice/internal/wizard"
)

// Deps holds everything New needs to assemble the application.
type Deps struct {
	Pool    *pgxpool.Pool
	JWTMgr  *auth.JWTManager
	Gateway notify.Gateway
	Logger  *slog.Logger

	BotUsername        string
	CORSAllowedOrigins string

	// ReactionLimit caps reaction webhooks per user per minute. Zero means
	// the default of 30.
	ReactionLimit int
}

// App is the assembled application graph. Background workers are exposed so
// the caller decides what runs.
type App struct {
	Router chi.Router
	Bus    *bus.Bus
	Store  repository.Store

	Engine        *engine.Engine
	Subscriptions *subscription.Service
	Channels      *service.ChannelService
	Catalog       *service.CatalogService
	Config        *service.ConfigService
}

// New wires the full dependency graph and returns the assembled App.
func New(deps Deps) *App {
	logger := deps.Logger

	store := repository.NewPgStore(deps.Pool)
	eventBus := bus.New(logger)
	notifier := notify.NewService(deps.Gateway, logger)

	subs := subscription.NewService(store, eventBus, notifier, logger)
	deliverer := engine.NewDeliverer(store, subs, notifier, logger)
	eng := engine.New(store, eventBus, notifier, deliverer, logger)
	eng.RegisterHandlers()

	catalogSvc := service.NewCatalogService(store, logger)
	configSvc := service.NewConfigService(store, logger)
	statsSvc := service.NewStatsService(store, logger)
	broadcastSvc := service.NewBroadcastService(store, eventBus, logger)
	channelSvc := service.NewChannelService(store, configSvc, notifier, logger)
	credsSvc := auth.NewCredentialService(deps.Pool, deps.JWTMgr, logger)

	runner := wizard.NewRunner(wizard.NewMemSessions(), logger)
	runner.Register(wizard.NewRankBuilderFlow(catalogSvc))
	runner.Register(wizard.NewPackBuilderFlow(catalogSvc))

	limit := deps.ReactionLimit
	if limit <= 0 {
		limit = 30
	}
	reactionLimiter := guard.NewRateLimiter(limit, time.Minute)

	engagementHandler := handler.NewEngagementHandler(eventBus, reactionLimiter)
	profileHandler := handler.NewProfileHandler(eng, deps.BotUsername)
	subscriptionHandler := handler.NewSubscriptionHandler(subs)
	channelHandler := handler.NewChannelHandler(channelSvc)
	wizardHandler := handler.NewWizardHandler(runner)
	authHandler := handler.NewAuthHandler(credsSvc)

	ranksAdmin := adminhandler.NewRanksHandler(catalogSvc)
	packsAdmin := adminhandler.NewPacksHandler(catalogSvc)
	tokensAdmin := adminhandler.NewTokensHandler(subs)
	configAdmin := adminhandler.NewConfigHandler(configSvc)
	statsAdmin := adminhandler.NewStatsHandler(statsSvc)
	broadcastAdmin := adminhandler.NewBroadcastHandler(broadcastSvc)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Pool))

	// Admin login (no auth)
	r.Post("/auth/login", authHandler.Login)

	// Public share-link redirect, no auth: it only forwards to the bot.
	r.Get("/r/{userID}", profileHandler.ReferralRedirect)

	// Gateway-facing routes (service realm)
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateService(deps.JWTMgr))

		r.Post("/events/reactions", engagementHandler.PostReaction)
		r.Post("/referrals", profileHandler.PostReferral)

		r.Route("/profiles/{userID}", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Post("/daily", profileHandler.ClaimDaily)
			r.Get("/referral-link", profileHandler.GetReferralLink)
		})

		r.Post("/subscriptions/redeem", subscriptionHandler.Redeem)
		r.Get("/subscriptions/{userID}", subscriptionHandler.GetStatus)

		r.Post("/channels/free/requests", channelHandler.RequestAccess)

		r.Route("/wizard", func(r chi.Router) {
			r.Post("/{flow}/start", wizardHandler.Start)
			r.Post("/input", wizardHandler.Input)
			r.Post("/cancel", wizardHandler.Cancel)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(deps.JWTMgr))

		r.Route("/ranks", func(r chi.Router) {
			r.Get("/", ranksAdmin.List)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Post("/", ranksAdmin.Create)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Patch("/{id}/rewards", ranksAdmin.AttachRewards)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Delete("/{id}", ranksAdmin.Delete)
		})

		r.Route("/packs", func(r chi.Router) {
			r.Get("/", packsAdmin.List)
			r.Get("/{id}/items", packsAdmin.Items)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Post("/", packsAdmin.Create)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Post("/{id}/items", packsAdmin.AddItem)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Delete("/{id}", packsAdmin.Delete)
		})

		r.Route("/tokens", func(r chi.Router) {
			r.Get("/", tokensAdmin.List)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Post("/", tokensAdmin.Generate)
		})

		r.Route("/config", func(r chi.Router) {
			r.Get("/", configAdmin.Get)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Put("/", configAdmin.Update)
		})

		r.Get("/stats/dashboard", statsAdmin.Dashboard)
		r.With(auth.RequireRole(auth.WriteRoles()...)).Post("/broadcasts", broadcastAdmin.Create)
	})

	return &App{
		Router:        r,
		Bus:           eventBus,
		Store:         store,
		Engine:        eng,
		Subscriptions: subs,
		Channels:      channelSvc,
		Catalog:       catalogSvc,
		Config:        configSvc,
	}
}
