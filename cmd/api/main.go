package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/promo"
	"github.com/example/ec-storefront/internal/infrastructure/cartsync"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/jobs"
	"github.com/example/ec-storefront/internal/logger"
	"github.com/example/ec-storefront/internal/query"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(logger.Options{Production: cfg.IsProduction(), File: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log = log.Named("api")

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid PROMO_LOCATION", zap.String("location", cfg.PromoLocation), zap.Error(err))
	}

	log.Info("starting storefront",
		zap.String("env", cfg.AppEnv),
		zap.String("cart_store", cfg.CartStore),
		zap.String("sync_backend", cfg.SyncBackend),
		zap.String("promo_source", cfg.PromoSource),
	)

	// Catalog
	products, err := product.LoadFile(cfg.CatalogFile)
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}
	catalog, err := product.NewStaticCatalog(products)
	if err != nil {
		log.Fatal("invalid catalog", zap.Error(err))
	}
	jobs.LintCatalog(log, products)
	log.Info("catalog loaded", zap.Int("products", len(products)))

	// PostgreSQL is shared by the cart store and the promo registry
	var db *sql.DB
	if cfg.CartStore == config.StorePostgres || cfg.PromoSource == config.PromoPostgres {
		db, err = store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
		}
		defer db.Close()
		log.Info("connected to PostgreSQL")
	}

	// Promo codes
	codes, err := promo.LoadFile(cfg.PromoFile)
	if err != nil {
		log.Fatal("failed to load promo codes", zap.Error(err))
	}
	var registry promo.Registry
	var staticRegistry *promo.StaticRegistry
	switch cfg.PromoSource {
	case config.PromoPostgres:
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to open gorm", zap.Error(err))
		}
		gormRegistry := promo.NewGormRegistry(gdb)
		if err := gormRegistry.Migrate(ctx); err != nil {
			log.Fatal("failed to migrate promo_codes", zap.Error(err))
		}
		if err := gormRegistry.Upsert(ctx, codes); err != nil {
			log.Fatal("failed to seed promo_codes", zap.Error(err))
		}
		stored, err := gormRegistry.List(ctx)
		if err != nil {
			log.Fatal("failed to list promo_codes", zap.Error(err))
		}
		log.Info("promo codes seeded", zap.Int("stored", len(stored)))
		registry = gormRegistry
	default:
		staticRegistry, err = promo.NewStaticRegistry(codes)
		if err != nil {
			log.Fatal("invalid promo codes", zap.Error(err))
		}
		registry = staticRegistry
	}
	validator := promo.NewValidator(registry, promo.WithLocation(loc), promo.WithLogger(log.Named("promo")))

	// Cart store
	cartStore, err := openCartStore(ctx, cfg, db)
	if err != nil {
		log.Fatal("failed to open cart store", zap.Error(err))
	}
	defer cartStore.Close()

	// Cross-session sync
	origin := uuid.NewString()
	broadcaster, err := openBroadcaster(ctx, cfg, origin, log.Named("cartsync"))
	if err != nil {
		log.Fatal("failed to start cart sync", zap.Error(err))
	}
	defer broadcaster.Close()

	cartSvc := cart.NewService(catalog, cartStore, validator,
		cart.WithBroadcaster(broadcaster),
		cart.WithLogger(log),
		cart.WithOrigin(origin),
		cart.WithSessionCache(cfg.SessionCacheSize, cfg.SessionIdleWindow()),
	)
	if err := cartSvc.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to cart sync", zap.Error(err))
	}

	// Checkout
	orderOpts := []order.Option{
		order.WithProcessingDelay(cfg.CheckoutDelay),
		order.WithLogger(log),
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaOrderTopic != "" {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer producer.Close()
		orderOpts = append(orderOpts, order.WithPublisher(producer))
	}
	orderSvc := order.NewService(cartSvc, orderOpts...)

	// Hot reload
	scheduler := jobs.NewScheduler(log, loc)
	if cfg.ReloadSchedule != "" {
		if cfg.CatalogFile != "" {
			reloader := jobs.NewCatalogReloader(cfg.CatalogFile, catalog, log.Named("catalog"))
			if err := scheduler.Add("reload-catalog", cfg.ReloadSchedule, reloader.Reload); err != nil {
				log.Fatal("invalid RELOAD_SCHEDULE", zap.Error(err))
			}
		}
		if cfg.PromoFile != "" && staticRegistry != nil {
			reloader := jobs.NewPromoReloader(cfg.PromoFile, staticRegistry, log.Named("promo"))
			if err := scheduler.Add("reload-promos", cfg.ReloadSchedule, reloader.Reload); err != nil {
				log.Fatal("invalid RELOAD_SCHEDULE", zap.Error(err))
			}
		}
	}
	scheduler.Start()

	// HTTP
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionExpiry)
	handlers := api.NewHandlers(
		command.NewHandler(cartSvc, orderSvc),
		query.NewHandler(catalog, validator, cartSvc),
		log,
	)
	router := api.NewRouter(api.RouterConfig{
		Handlers:         handlers,
		SessionHandlers:  api.NewSessionHandlers(jwtService, cfg.IsProduction(), log),
		CategoryHandlers: api.NewCategoryHandlers(handlers),
		JWTService:       jwtService,
		Logger:           log.Named("http"),
		WebDir:           cfg.WebDir,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", cfg.HTTPAddr), zap.Int("reload_jobs", scheduler.Len()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	scheduler.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}

func openCartStore(ctx context.Context, cfg config.Config, db *sql.DB) (store.CartStore, error) {
	switch cfg.CartStore {
	case config.StorePostgres:
		s := store.NewPostgresCartStore(db)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreRedis:
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedisCartStore(client, cfg.CartTTL), nil
	case config.StoreBolt:
		return store.OpenBoltCartStore(cfg.BoltPath)
	default:
		return store.NewMemoryCartStore(), nil
	}
}

func openBroadcaster(ctx context.Context, cfg config.Config, origin string, log *zap.Logger) (cartsync.Broadcaster, error) {
	switch cfg.SyncBackend {
	case config.SyncRedis:
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return cartsync.NewRedisBroadcaster(client, cartsync.DefaultRedisChannel, log), nil
	case config.SyncKafka:
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaSyncTopic)
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:    cfg.KafkaBrokers,
			Topic:      cfg.KafkaSyncTopic,
			GroupID:    "storefront-sync-" + origin,
			FromLatest: true,
		}, log)
		return cartsync.NewKafkaBroadcaster(producer, consumer, log), nil
	default:
		return cartsync.NewLocalBus(), nil
	}
}
