package server

import (
	"context"
	"fmt"
	"time"

	"ss-uniforms/internal/accounts"
	"ss-uniforms/internal/ai"
	"ss-uniforms/internal/cart"
	"ss-uniforms/internal/config"
	"ss-uniforms/internal/handlers"
	"ss-uniforms/internal/inventory"
	"ss-uniforms/internal/shop"
	"ss-uniforms/internal/storage"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// cartTTL expires idle redis carts.
const cartTTL = 30 * 24 * time.Hour

// CartStorage returns the cart backend selected by CART_STORE.
func CartStorage(ctx context.Context, cfg *config.Config) (cart.Storage, error) {
	switch cfg.CartStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("server: redis ping %s: %w", cfg.RedisAddr, err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("Carts stored in redis")
		return cart.RedisStorage{Client: client, TTL: cartTTL}, nil
	case "memory":
		log.Warn("Carts stored in memory and lost on restart")
		return cart.NewMemoryStorage(), nil
	default:
		log.WithField("dir", cfg.CartDir).Info("Carts stored on disk")
		return cart.FileStorage{Dir: cfg.CartDir}, nil
	}
}

// Build assembles the services behind the HTTP handlers and loads the
// inventory mirror.
func Build(ctx context.Context, cfg *config.Config, db *gorm.DB) (*handlers.Handler, error) {
	carts, err := CartStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	disk, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := inventory.NewStore(inventory.NewGormRepository(db),
		inventory.WithLocation(cfg.Location),
		inventory.WithBestSellerMetric(inventory.BestSellerMetric(cfg.BestSellerMetric)),
	)
	if err := store.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial inventory load failed, serving an empty catalogue until the next refresh")
	}

	return &handlers.Handler{
		Config:    cfg,
		DB:        db,
		Accounts:  accounts.NewService(db),
		Inventory: store,
		Carts:     cart.NewManager(carts),
		Shop:      shop.NewService(db),
		Disk:      disk,
		Assistant: &ai.Assistant{
			APIKey:    cfg.GeminiAPIKey,
			Store:     store,
			DB:        db,
			Threshold: cfg.LowStockThreshold,
		},
	}, nil
}
