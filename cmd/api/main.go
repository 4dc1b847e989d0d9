package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OWS_Community/internal/config"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"
	"OWS_Community/internal/repository/memory"
	"OWS_Community/internal/repository/mysql"
	"OWS_Community/internal/repository/redis"
	"OWS_Community/internal/router"
	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the yaml config file, empty to use env only")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := pkg.InitLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	repos, closers, err := openStorage(cfg, log)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn().Err(err).Msg("close")
			}
		}
	}()
	if err != nil {
		return err
	}

	var catalog service.SpotCatalog = service.LogSpotCatalog{Log: log}
	if cfg.Kafka.Enabled {
		producer, err := pkg.NewSpotProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		if err != nil {
			return err
		}
		closers = append(closers, producer)
		catalog = producer
	}

	var notifier service.Notifier
	if cfg.SMTP.Host != "" {
		notifier = pkg.NewMailer(pkg.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	metrics := pkg.NewMetrics()
	svc := service.New(service.Options{
		Repos:        repos,
		Tokens:       pkg.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		Notifier:     notifier,
		Metrics:      metrics,
		Logger:       log,
		IsAdminEmail: cfg.IsAdminEmail,
	})
	relayer := service.NewSpotRelayer(repos, catalog, service.RelayerOptions{
		Interval:  cfg.Relay.Interval,
		BatchSize: cfg.Relay.BatchSize,
		MaxRetry:  cfg.Relay.MaxRetry,
	}, metrics, log.With().Str("component", "spot_relayer").Logger())

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.InitRouter(router.Deps{Services: svc, Metrics: metrics, Logger: log, Ping: repos.Ping}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return relayer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	svc.Inbox.Wait()
	log.Info().Msg("server stopped")
	return err
}

// openStorage 按 storage.driver 组装仓储；配置了 redis 时会话与锁走 redis
func openStorage(cfg *config.Config, log zerolog.Logger) (*repository.Repositories, []io.Closer, error) {
	var closers []io.Closer
	local := memory.NewRepositories()
	repos := local

	if cfg.Storage.Driver == config.DriverMySQL {
		db, err := mysql.InitDB(mysql.Options{
			DSN:             cfg.MySQL.DSN,
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, sqlDB)
		if cfg.MySQL.AutoMigrate {
			if err = mysql.AutoMigrate(db); err != nil {
				return nil, closers, fmt.Errorf("auto migrate: %w", err)
			}
		}
		repos = mysql.NewRepositories(db)
		repos.Sessions = local.Sessions
		repos.Locker = local.Locker
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, closers, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, rdb)
		repos.Sessions = &redis.SessionRepository{RDB: rdb}
		repos.Locker = &redis.DistLock{RDB: rdb}
	} else {
		log.Warn().Msg("redis not configured, sessions and relay lock are process local")
	}
	return repos, closers, nil
}
