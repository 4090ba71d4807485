package infra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/signin/internal/auth"
	"github.com/congo-pay/signin/internal/config"
	"github.com/congo-pay/signin/internal/media"
	"github.com/congo-pay/signin/internal/users"
)

// Backends holds the connections the configuration asked for. Nil fields are not configured.
type Backends struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
	Media *media.S3Media

	cfg    config.Config
	logger *slog.Logger
}

// Open connects every configured backend.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{cfg: cfg, logger: logger}

	if cfg.DatabaseURL != "" {
		db, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.DB = db
	}

	if cfg.RedisURL != "" {
		cache, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Cache = cache
	}

	if cfg.MediaEnabled() {
		m, err := media.NewS3Media(ctx, media.Config{
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			BaseEndpoint: cfg.S3.BaseEndpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			URLTTL:       cfg.S3.URLTTL,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Media = m
	}

	return b, nil
}

// Users selects the user document store named by USER_STORE.
func (b *Backends) Users() (users.Store, error) {
	switch b.cfg.UserStore {
	case config.StoreRedis:
		if b.Cache != nil {
			return users.NewRedisStore(b.Cache), nil
		}
	case config.StorePostgres:
		if b.DB != nil {
			return users.NewPostgresStore(b.DB), nil
		}
	}
	if b.cfg.IsDev() {
		b.logger.Warn("user store backend unavailable, using memory", slog.String("store", b.cfg.UserStore))
		return users.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("user store %q is not connected", b.cfg.UserStore)
}

// Credentials returns the Postgres credential repository, or memory in development.
func (b *Backends) Credentials() (auth.CredentialRepository, error) {
	if b.DB != nil {
		return auth.NewPostgresRepository(b.DB), nil
	}
	if b.cfg.IsDev() {
		b.logger.Warn("no database configured, credentials kept in memory")
		return auth.NewMemoryRepository(), nil
	}
	return nil, errors.New("credential repository requires DATABASE_URL")
}

// Close releases every open connection.
func (b *Backends) Close() {
	if b.Cache != nil {
		if err := b.Cache.Close(); err != nil {
			b.logger.Warn("close redis", "error", err)
		}
	}
	if b.DB != nil {
		b.DB.Close()
	}
}
