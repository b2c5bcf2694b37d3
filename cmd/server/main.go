package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/database"
	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/logger"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/repository/memory"
	"github.com/iliyamo/marketplace-api/internal/router"
	"github.com/iliyamo/marketplace-api/internal/service"
)

const janitorInterval = time.Hour

// defaultCategories mirrors the seed migration for the in-memory backend.
var defaultCategories = []string{"Books", "Miscellaneous", "Dishes", "Games", "Animals", "Magazines"}

type stores struct {
	users      service.UserStore
	tokens     service.TokenStore
	offers     service.OfferStore
	categories service.CategoryStore
	comments   service.CommentStore
	db         handler.Pinger
	close      func()
}

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	defer func() { _ = log.Sync() }()
	boot := logger.WithComponent(log, "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		boot.Fatal("storage init failed", zap.Error(err))
	}
	defer st.close()

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		boot.Warn("redis unavailable; cache and rate limiting disabled", zap.Error(err))
		rdb = nil
	} else {
		defer func() { _ = rdb.Close() }()
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.AMQPURL, log)
		go func() {
			err := queue.StartEventConsumer(ctx, cfg.AMQPURL, queue.NewActivityLog("logs"), log)
			if err != nil && !errors.Is(err, context.Canceled) {
				boot.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	tokens := service.NewRefreshTokenService(st.tokens, log)
	go tokens.RunJanitor(ctx, janitorInterval)

	e := router.New(router.Deps{
		Auth: service.NewAuthService(st.users, tokens, cfg.JWTSecret,
			time.Duration(cfg.AccessTTLMin)*time.Minute,
			time.Duration(cfg.RefreshTTLDays)*24*time.Hour, log),
		Users:      service.NewUserService(st.users, events, cfg.BcryptCost, log),
		Offers:     service.NewOfferService(st.offers, events, log),
		Categories: service.NewCategoryService(st.categories, log),
		Comments:   service.NewCommentService(st.comments, events, log),
		DB:         st.db,
		Redis:      rdb,
		Cache:      config.LoadCacheConfig(),
		RateLimit:  config.LoadRateLimitConfig(),
		Log:        log,
	})

	addr := ":" + cfg.Port
	go func() {
		boot.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("storage", cfg.Storage))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			boot.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		boot.Error("shutdown", zap.Error(err))
	}
	boot.Info("stopped")
}

func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		m := memory.New()
		for _, name := range defaultCategories {
			if err := m.Categories().Create(ctx, &model.Category{Name: name}); err != nil {
				return nil, err
			}
		}
		log.Info("using in-memory storage; data is lost on restart")
		return &stores{
			users:      m.Users(),
			tokens:     m.Tokens(),
			offers:     m.Offers(),
			categories: m.Categories(),
			comments:   m.Comments(),
			close:      func() {},
		}, nil
	}

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("database ready", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))
	return &stores{
		users:      repository.NewUserRepo(db),
		tokens:     repository.NewTokenRepo(db),
		offers:     repository.NewOfferRepo(db),
		categories: repository.NewCategoryRepo(db),
		comments:   repository.NewCommentRepo(db),
		db:         db,
		close:      func() { _ = db.Close() },
	}, nil
}
