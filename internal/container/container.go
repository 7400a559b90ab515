package container

import (
	"context"
	"fmt"
	"io"

	"cinelume/internal/api"
	"cinelume/internal/cache"
	"cinelume/internal/config"
	"cinelume/internal/database"
	"cinelume/internal/logger"
	"cinelume/internal/notify"
	"cinelume/internal/session"
	"cinelume/internal/tokenstore"
	"cinelume/internal/upload"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Tokens   tokenstore.Store
	API      *api.Client
	Uploads  *upload.Client
	Session  *session.Service
	Notifier notify.Notifier
}

// New wires every service from cfg. out receives user-facing
// notifications; nav receives session navigation.
func New(ctx context.Context, cfg *config.Config, out io.Writer, nav session.Navigator) (*Container, error) {
	log := logger.Get()

	c := &Container{Config: cfg, Logger: log}

	tokens, err := c.newTokenStore(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize token store: %w", err)
	}
	c.Tokens = tokens

	c.API = api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
		Logger:    log,
		Tokens:    tokens,
	})
	c.Uploads = upload.NewClient(cfg.UploadURL, cfg.Timeout, log)
	c.Notifier = notify.NewWriter(out, log)
	c.Session = session.New(tokens, c.API, nav, log)
	c.Session.Restore(ctx)

	log.WithFields(logrus.Fields{
		"api_url":     cfg.APIURL,
		"token_store": cfg.TokenStore,
		"logged_in":   c.Session.LoggedIn(),
	}).Debug("Container ready")
	return c, nil
}

func (c *Container) newTokenStore(ctx context.Context) (tokenstore.Store, error) {
	switch c.Config.TokenStore {
	case "", "file":
		return tokenstore.NewFileStore(c.Config.TokenFile), nil
	case "redis":
		client, err := cache.Connect(ctx, c.Logger)
		if err != nil {
			return nil, err
		}
		c.Redis = client
		return tokenstore.NewRedisStore(client, c.Config.Profile), nil
	case "postgres":
		pool, err := database.Connect(ctx, c.Logger)
		if err != nil {
			return nil, err
		}
		c.DB = pool
		store := tokenstore.NewPostgresStore(pool, c.Config.Profile)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown token store %q", c.Config.TokenStore)
	}
}

func (c *Container) Close() {
	if c.Redis != nil {
		c.Redis.Close()
		c.Logger.Debug("Redis connection closed")
	}
	if c.DB != nil {
		c.DB.Close()
		c.Logger.Debug("Database connection closed")
	}
}
