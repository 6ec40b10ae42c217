package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/config"
	"github.com/roomboard-io/roomboard-engine/pkg/database"
	"github.com/roomboard-io/roomboard-engine/pkg/handlers"
	"github.com/roomboard-io/roomboard-engine/pkg/logging"
	"github.com/roomboard-io/roomboard-engine/pkg/middleware"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Bool("oauth_enabled", cfg.OAuth.Enabled()),
	)

	ctx := context.Background()

	connString := cfg.Database.ConnectionString()
	if err := database.RunMigrations(connString, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connString,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	roomRepo := repositories.NewRoomRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	inviteRepo := repositories.NewInviteRepository(db)
	boardRepo := repositories.NewBoardRepository(db)
	columnRepo := repositories.NewColumnRepository(db)
	cardRepo := repositories.NewCardRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	orderingRepo := repositories.NewOrderingRepository(db)

	// Authorization
	gate := authz.NewGate(repositories.NewResolverRepository(db), logger)

	// Services
	ordering := services.NewOrderingEngine(orderingRepo, logger)
	roomService := services.NewRoomService(db, gate, roomRepo, membershipRepo, logger)
	memberService := services.NewMemberService(gate, membershipRepo, logger)
	inviteService := services.NewInviteService(db, gate, inviteRepo, membershipRepo, roomRepo, logger)
	boardService := services.NewBoardService(db, gate, boardRepo, logger)
	columnService := services.NewColumnService(db, gate, boardRepo, columnRepo, cardRepo, ordering, logger)
	cardService := services.NewCardService(db, gate, boardRepo, columnRepo, cardRepo, ordering, logger)
	commentService := services.NewCommentService(gate, cardRepo, commentRepo, logger)

	// Sessions and login
	sessionStore := auth.NewSessionStore(cfg.Session)
	authMiddleware := auth.NewMiddleware(sessionStore, logger)
	var oauthClient *auth.OAuthClient
	if cfg.OAuth.Enabled() {
		oauthClient = auth.NewOAuthClient(cfg.OAuth, cfg.BaseURL)
	} else {
		logger.Warn("OAuth is not configured; login endpoints will return 503")
	}

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(oauthClient, sessionStore, userRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewRoomsHandler(roomService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewMembersHandler(memberService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewInvitesHandler(inviteService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewBoardsHandler(boardService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewColumnsHandler(columnService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCardsHandler(cardService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCommentsHandler(commentService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting roomboard-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
