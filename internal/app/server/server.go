package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qrjet/qrjet/internal/app/repository"
	"github.com/qrjet/qrjet/internal/app/service"
	infraprom "github.com/qrjet/qrjet/internal/infra/prometheus"
	inthttp "github.com/qrjet/qrjet/internal/http/handler"
	"github.com/qrjet/qrjet/internal/http/middleware"
	"github.com/qrjet/qrjet/internal/http/util"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const authTokenTTL = 30 * 24 * time.Hour

// Dependencies bundles everything required by the HTTP server.
type Dependencies struct {
	Logger     *zap.Logger
	Redis      *redis.Client
	Resolver   *service.Resolver
	QRService  service.QRService
	Users      repository.UserRepository
	Plans      repository.PlanRepository
	Metrics    *infraprom.Metrics
	AuthSecret []byte
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		AppName: "qrjet",
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	log := s.deps.Logger

	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(log))
	s.app.Use(middleware.Logger(log))
	s.app.Use(middleware.CORS())
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), log))
	}

	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:   log,
		Resolver: s.deps.Resolver,
		Metrics:  s.deps.Metrics,
	})
	redirectHandler.Register(s.app)

	tokens := util.NewTokenSigner(s.deps.AuthSecret, authTokenTTL)
	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:    log,
		QRService: s.deps.QRService,
		Plans:     s.deps.Plans,
	})
	apiHandler.Register(s.app, middleware.Auth(tokens, s.deps.Users, log))
}
