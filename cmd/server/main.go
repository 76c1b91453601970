// Command server serves the catalog HTTP API.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltaic/catalog/app/filter"
	"github.com/voltaic/catalog/config"
	"github.com/voltaic/catalog/database"
	"github.com/voltaic/catalog/logger"
	"github.com/voltaic/catalog/metrics"
	"github.com/voltaic/catalog/models"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			newDatabase,
			newMetrics,
			newAttributeLookup,
			newHandlers,
			newRouter,
			newHTTPServer,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, ServiceName: cfg.ServiceName})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return database.Migrate(ctx, db)
		},
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

func newMetrics(cfg *config.Config) *metrics.Metrics {
	return metrics.New(cfg.ServiceName, true)
}

// newAttributeLookup resolves filter attributes from the database, through
// redis when REDIS_URL is set.
func newAttributeLookup(lc fx.Lifecycle, cfg *config.Config, db *gorm.DB, log *zap.Logger) (filter.AttributeLookup, error) {
	dict := models.NewDictionaryRepository(db)
	if cfg.Cache.RedisURL == "" {
		return dict, nil
	}

	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				// Lookups fall back to the database while redis is unreachable.
				log.Warn("redis unavailable", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return filter.NewCachedLookup(dict, client, cfg.Cache.AttributeTTL, log), nil
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, handler http.Handler, log *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting server", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping server")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
