package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airport/api"
	"github.com/Domenick1991/airport/config"
	"github.com/Domenick1991/airport/internal/auth"
	"github.com/Domenick1991/airport/internal/bootstrap"
	"github.com/Domenick1991/airport/internal/cache"
	"github.com/Domenick1991/airport/internal/kafka"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/Domenick1991/airport/internal/media"
	"github.com/Domenick1991/airport/internal/repository"
	"github.com/Domenick1991/airport/internal/service/booking"
	"github.com/Domenick1991/airport/internal/service/catalog"
	"github.com/Domenick1991/airport/internal/service/flights"
	"github.com/Domenick1991/airport/internal/ticketqr"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Color: cfg.Log.Color})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := repository.Migrate(cfg.Database.MigrationURL()); err != nil {
		log.Fatal("db", err.Error())
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatal("db", "parse dsn: "+err.Error())
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal("db", "connect postgres: "+err.Error())
	}
	defer pool.Close()

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient, time.Duration(cfg.Cache.CatalogTTLSeconds)*time.Second)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warnf("cache", "redis unavailable, catalog lists will hit the database: %v", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		log.Warnf("kafka", "order events will not be delivered: %v", err)
	}

	qr, err := ticketqr.NewGenerator(cfg.Tickets.QRSecret)
	if err != nil {
		log.Fatal("app", err.Error())
	}
	images := media.NewStore(cfg.Media.Root, cfg.Media.URLPrefix, cfg.Media.MaxBytes)

	flightRepo := repository.NewFlightRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	catalogService := catalog.NewCatalogService(catalog.Repositories{
		Airports:      repository.NewAirportRepository(pool),
		AirplaneTypes: repository.NewAirplaneTypeRepository(pool),
		Airplanes:     repository.NewAirplaneRepository(pool),
		Routes:        repository.NewRouteRepository(pool),
		Crews:         repository.NewCrewRepository(pool),
	}, images, log, catalog.WithCache(redisCache))
	flightService := flights.NewFlightService(flightRepo, log)
	bookingService := booking.NewBookingService(
		orderRepo,
		flightRepo,
		qr,
		log,
		booking.WithProducer(producer, cfg.Kafka.OrdersTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(auth.NewAuthenticator(cfg.Auth.JWTSecret), log, api.Handlers{
		Catalog: api.NewCatalogHandler(catalogService, log),
		Flights: api.NewFlightHandler(flightService, log),
		Orders:  api.NewOrderHandler(bookingService, log),
	})

	if err := bootstrap.Run(ctx, cfg, router, log); err != nil {
		log.Fatal("app", "server error: "+err.Error())
	}
}
