package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aq2208/storefront-api/configs"
	"github.com/aq2208/storefront-api/internal/adapter/cache"
	httpadapter "github.com/aq2208/storefront-api/internal/adapter/http"
	"github.com/aq2208/storefront-api/internal/adapter/queue"
	"github.com/aq2208/storefront-api/internal/adapter/repo"
	"github.com/aq2208/storefront-api/internal/catalog"
	"github.com/aq2208/storefront-api/internal/logging"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
	Store  *usecase.CartStore
}

// InitWithConfig wires the catalog, the cart store with its selected
// persistence backend, the optional event publisher and the HTTP layer.
// The returned cleanup closes everything in reverse order.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Info("catalog loaded", "products", cat.Len())

	var (
		persistence usecase.CartPersistence
		db          *sql.DB
		rdb         *redis.Client
	)
	switch cfg.Storage.Backend {
	case "", "file":
		persistence = repo.NewJSONCartStore(cfg.Storage.File.Path)

	case "redis":
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		persistence = cache.NewRedisCartStore(rdb, cfg.Storage.Key)

	case "mysql":
		db, err = sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("mysql ping: %w", err)
		}
		persistence = repo.NewMySQLCartRepo(db, cfg.Storage.Key)

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var (
		events usecase.CartEvents
		conn   *amqp.Connection
	)
	if cfg.Rabbit.Enabled {
		conn, err = amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbit dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("rabbit channel: %w", err)
		}
		events, err = queue.NewRabbitCartEvents(ch)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
	}

	store := usecase.NewCartStore(persistence, events, usecase.CartConfig{
		AutoCloseDelay:       cfg.Cart.AutoCloseDelay,
		CancelPendingOnClose: cfg.Cart.CancelPendingOnClose,
		ShippingThreshold:    cfg.Cart.ShippingThreshold,
		ShippingCost:         cfg.Cart.ShippingCost,
		TaxRate:              cfg.Cart.TaxRate,
	}, logging.New("cart"))

	cartH := httpadapter.NewCartHandler(store, cat)
	catalogH := httpadapter.NewCatalogHandler(cat)
	router := httpadapter.NewRouter(cartH, catalogH, logging.New("http"))

	cleanup := func() {
		store.Close()
		if conn != nil {
			_ = conn.Close()
		}
		if db != nil {
			_ = db.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
	}

	return &App{Router: router, Store: store}, cleanup, nil
}
