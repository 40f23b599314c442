package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"eudaimonia/auth"
	"eudaimonia/confs"
	"eudaimonia/handlers"
	httpHandler "eudaimonia/handlers/http"
	"eudaimonia/metrics"
	"eudaimonia/middleware"
	"eudaimonia/repositories"
	"eudaimonia/usecases"
	"eudaimonia/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	app     *gin.Engine
	cfg     *confs.Config
	repos   *repositories.Repositories
	log     *zap.Logger
	metrics *metrics.Metrics
	hub     *ws.Manager
	limiter *middleware.RateLimiter
	tokens  *auth.TokenManager
}

func NewServer(cfg *confs.Config, repos *repositories.Repositories, log *zap.Logger) *Server {
	m := metrics.New()
	hub := ws.NewManager(log)
	hub.OnCount = m.SetWSConnections
	hub.OnPublish = m.RecordInvalidation

	s := &Server{
		app:     gin.New(),
		cfg:     cfg,
		repos:   repos,
		log:     log,
		metrics: m,
		hub:     hub,
		limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log, m),
		tokens:  auth.NewTokenManager(cfg.SecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
	}
	s.routes()
	return s
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.app }

func (s *Server) Hub() *ws.Manager { return s.hub }

func (s *Server) Limiter() *middleware.RateLimiter { return s.limiter }

func (s *Server) routes() {
	s.app.Use(gin.Recovery(), middleware.Logger(s.log), middleware.Metrics(s.metrics))

	// Setup CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config))

	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	s.app.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	// Initialize use cases
	authUseCase := usecases.NewAuthUseCase(s.repos.Users, s.tokens)
	userUseCase := usecases.NewUserUseCase(s.repos)
	worldUseCase := usecases.NewWorldUseCase(s.repos, s.hub)
	postUseCase := usecases.NewPostUseCase(s.repos, s.hub)
	friendshipUseCase := usecases.NewFriendshipUseCase(s.repos, s.hub)
	governanceUseCase := usecases.NewGovernanceUseCase(s.repos, s.hub)
	profileUseCase := usecases.NewProfileUseCase(s.repos, s.hub)

	// Initialize handlers
	authHandler := httpHandler.NewAuthHandler(authUseCase, userUseCase, s.log)
	userHandler := httpHandler.NewUserHandler(userUseCase, s.log)
	worldHandler := httpHandler.NewWorldHandler(worldUseCase, s.log)
	postHandler := httpHandler.NewPostHandler(postUseCase, s.log)
	friendshipHandler := httpHandler.NewFriendshipHandler(friendshipUseCase, s.log)
	governanceHandler := httpHandler.NewGovernanceHandler(governanceUseCase, s.log)
	profileHandler := httpHandler.NewProfileHandler(profileUseCase, s.log)
	liveHandler := handlers.NewLiveHandler(s.hub, s.tokens, s.log)

	requireAuth := middleware.Auth(s.tokens, s.log)

	// Rate limiting runs after auth on protected routes so callers are
	// keyed by user id rather than IP.
	api := s.app.Group("/api")
	{
		authPublic := api.Group("/auth", s.limiter.Handler())
		{
			authPublic.POST("/register", authHandler.Register)
			authPublic.POST("/login", authHandler.Login)
			authPublic.POST("/refresh", authHandler.Refresh)
		}

		protected := api.Group("", requireAuth, s.limiter.Handler())

		authPrivate := protected.Group("/auth")
		{
			authPrivate.GET("/me", authHandler.Me)
			authPrivate.GET("/me/profile", authHandler.MeProfile)
			authPrivate.POST("/recovery/initiate", authHandler.RecoveryInitiate)
		}

		users := protected.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.GET("/:id/profile", userHandler.Profile)
			users.GET("/:id/friends", userHandler.Friends)
		}

		worlds := protected.Group("/worlds")
		{
			worlds.GET("", worldHandler.List)
			worlds.POST("", worldHandler.Create)
			worlds.GET("/:id", worldHandler.Get)
			worlds.PUT("/:id", worldHandler.Update)
			worlds.DELETE("/:id", worldHandler.Delete)
			worlds.POST("/:id/join", worldHandler.Join)
			worlds.GET("/:id/posts", worldHandler.Posts)
			worlds.GET("/:id/members", worldHandler.Members)
		}
		protected.GET("/memberships", worldHandler.Memberships)

		posts := protected.Group("/posts")
		{
			posts.GET("", postHandler.List)
			posts.POST("", postHandler.Create)
			posts.GET("/:id", postHandler.Get)
		}

		friendships := protected.Group("/friendships")
		{
			friendships.GET("", friendshipHandler.List)
			friendships.POST("", friendshipHandler.Create)
			friendships.GET("/pending", friendshipHandler.Pending)
			friendships.POST("/:id/accept", friendshipHandler.Accept)
			friendships.POST("/:id/reject", friendshipHandler.Reject)
		}

		proposals := protected.Group("/proposals")
		{
			proposals.GET("", governanceHandler.ListProposals)
			proposals.POST("", governanceHandler.CreateProposal)
			proposals.GET("/:id", governanceHandler.GetProposal)
			proposals.GET("/:id/votes", governanceHandler.ProposalVotes)
		}

		votes := protected.Group("/votes")
		{
			votes.GET("", governanceHandler.MyVotes)
			votes.POST("", governanceHandler.CastVote)
		}

		profiles := protected.Group("/smart-profiles")
		{
			profiles.GET("", profileHandler.List)
			profiles.POST("", profileHandler.Create)
			profiles.GET("/:id", profileHandler.Get)
			profiles.PUT("/:id", profileHandler.Update)
			profiles.DELETE("/:id", profileHandler.Delete)
		}

		protected.GET("/live/stats", liveHandler.Stats)
	}

	s.app.GET("/ws", liveHandler.HandleLiveWS)
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	// Shutdown does not touch hijacked websocket connections.
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
