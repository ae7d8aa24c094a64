package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	allocapp "github.com/wyfcoding/portfoliotracker/internal/allocation/application"
	allocdomain "github.com/wyfcoding/portfoliotracker/internal/allocation/domain"
	allocmysql "github.com/wyfcoding/portfoliotracker/internal/allocation/infrastructure/persistence/mysql"
	allochttp "github.com/wyfcoding/portfoliotracker/internal/allocation/interfaces/http"
	assetapp "github.com/wyfcoding/portfoliotracker/internal/asset/application"
	assetdomain "github.com/wyfcoding/portfoliotracker/internal/asset/domain"
	assetmysql "github.com/wyfcoding/portfoliotracker/internal/asset/infrastructure/persistence/mysql"
	assetredis "github.com/wyfcoding/portfoliotracker/internal/asset/infrastructure/persistence/redis"
	assetquote "github.com/wyfcoding/portfoliotracker/internal/asset/infrastructure/quote"
	assethttp "github.com/wyfcoding/portfoliotracker/internal/asset/interfaces/http"
	authapp "github.com/wyfcoding/portfoliotracker/internal/auth/application"
	authdomain "github.com/wyfcoding/portfoliotracker/internal/auth/domain"
	authmysql "github.com/wyfcoding/portfoliotracker/internal/auth/infrastructure/persistence/mysql"
	authhttp "github.com/wyfcoding/portfoliotracker/internal/auth/interfaces/http"
	clientapp "github.com/wyfcoding/portfoliotracker/internal/client/application"
	clientdomain "github.com/wyfcoding/portfoliotracker/internal/client/domain"
	clientmysql "github.com/wyfcoding/portfoliotracker/internal/client/infrastructure/persistence/mysql"
	clienthttp "github.com/wyfcoding/portfoliotracker/internal/client/interfaces/http"
	mdapp "github.com/wyfcoding/portfoliotracker/internal/marketdata/application"
	mddomain "github.com/wyfcoding/portfoliotracker/internal/marketdata/domain"
	mdmessaging "github.com/wyfcoding/portfoliotracker/internal/marketdata/infrastructure/messaging"
	mdmysql "github.com/wyfcoding/portfoliotracker/internal/marketdata/infrastructure/persistence/mysql"
	mdquote "github.com/wyfcoding/portfoliotracker/internal/marketdata/infrastructure/quote"
	mdhttp "github.com/wyfcoding/portfoliotracker/internal/marketdata/interfaces/http"
	perfapp "github.com/wyfcoding/portfoliotracker/internal/performance/application"
	perfhttp "github.com/wyfcoding/portfoliotracker/internal/performance/interfaces/http"
	"github.com/wyfcoding/portfoliotracker/pkg/cache"
	"github.com/wyfcoding/portfoliotracker/pkg/config"
	"github.com/wyfcoding/portfoliotracker/pkg/db"
	"github.com/wyfcoding/portfoliotracker/pkg/logger"
	"github.com/wyfcoding/portfoliotracker/pkg/metrics"
	"github.com/wyfcoding/portfoliotracker/pkg/middleware"
	"github.com/wyfcoding/portfoliotracker/pkg/mq"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "service starting", "service", cfg.ServiceName, "environment", cfg.Environment)

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "init database failed", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&authdomain.User{},
		&clientdomain.Client{},
		&assetdomain.Asset{},
		&allocdomain.Allocation{},
		&mddomain.DailyReturn{},
	); err != nil {
		logger.Fatal(ctx, "auto migrate failed", "error", err)
	}

	// Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "init redis failed", "error", err)
	}
	defer redisCache.Close()

	// Kafka 可选；没有 broker 时事件发布退化为空实现
	var publisher mddomain.EventPublisher = mdmessaging.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "init kafka producer failed", "error", err)
		}
		defer producer.Close()
		publisher = mdmessaging.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	}

	m := metrics.New(cfg.ServiceName)

	// 仓储与服务装配
	yahoo := assetquote.NewYahooClient(cfg.Quotes.BaseURL, time.Duration(cfg.Quotes.Timeout)*time.Second)
	priceCache := assetredis.NewPriceCache(redisCache, time.Duration(cfg.Quotes.CacheTTL)*time.Second)

	assetRepo := assetmysql.NewAssetRepository(database.DB)
	assetService := assetapp.NewAssetService(assetRepo, priceCache, yahoo, cfg.Quotes.LookupConcurrency, m)

	clientRepo := clientmysql.NewClientRepository(database.DB)
	clientService := clientapp.NewClientService(clientRepo)

	allocRepo := allocmysql.NewAllocationRepository(database.DB)
	allocService := allocapp.NewAllocationService(allocRepo, assetService)

	returnRepo := mdmysql.NewDailyReturnRepository(database.DB)
	ingestService := mdapp.NewIngestService(assetService, mdquote.NewSourceAdapter(yahoo), returnRepo, publisher, m)

	perfService := perfapp.NewPerformanceService(allocRepo, returnRepo, assetService, cfg.Quotes.LookupConcurrency)

	userRepo := authmysql.NewUserRepository(database.DB)
	authService := authapp.NewAuthService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Second)

	// 路由
	engine := gin.New()
	engine.Use(middleware.Logging(), middleware.Recovery(), middleware.CORS(), m.GinMiddleware())
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	api := engine.Group("/api/v1")
	authhttp.NewAuthHandler(authService).RegisterRoutes(api)

	protected := api.Group("", middleware.Auth(cfg.Auth.JWTSecret))
	assethttp.NewAssetHandler(assetService).RegisterRoutes(protected)
	clienthttp.NewClientHandler(clientService).RegisterRoutes(protected)
	allochttp.NewAllocationHandler(allocService).RegisterRoutes(protected)
	mdhttp.NewMarketDataHandler(ingestService).RegisterRoutes(protected)
	perfhttp.NewPerformanceHandler(perfService).RegisterRoutes(protected)

	// 行情定时采集
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	if cfg.Quotes.IngestInterval > 0 {
		go ingestService.RunPeriodic(schedulerCtx, time.Duration(cfg.Quotes.IngestInterval)*time.Second)
	}

	// 指标服务
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = m.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "http server failed", "error", err)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down")

	stopScheduler()
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http server shutdown failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "metrics server shutdown failed", "error", err)
		}
	}
	logger.Info(ctx, "service stopped")
}
