package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fekuna/omnipos-order-service/config"
	"github.com/fekuna/omnipos-order-service/internal/menu"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-order-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/sequence"
	"github.com/fekuna/omnipos-order-service/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	ingH "github.com/fekuna/omnipos-order-service/internal/ingredient/handler"
	ingRepoPkg "github.com/fekuna/omnipos-order-service/internal/ingredient/repository"
	ingUCPkg "github.com/fekuna/omnipos-order-service/internal/ingredient/usecase"

	menuListenerPkg "github.com/fekuna/omnipos-order-service/internal/menu/listener"
	menuRepoPkg "github.com/fekuna/omnipos-order-service/internal/menu/repository"

	orderH "github.com/fekuna/omnipos-order-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-order-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-order-service/internal/order/usecase"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	policy, err := order.ParseCompletionPolicy(cfg.Order.CompletionPolicy)
	if err != nil {
		return err
	}

	// 1. Database
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer db.Close()
	appLogger.Info("Connected to database", zap.String("driver", db.DriverName()))

	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := sequence.NewSQLAllocator(db).Sync(ctx); err != nil {
			return fmt.Errorf("sync id sequences: %w", err)
		}
	}

	// 2. Repositories
	ingRepo := ingRepoPkg.NewSQLRepository(db)
	orderRepo := orderRepoPkg.NewSQLRepository(db)
	menuRepo := menuRepoPkg.NewSQLRepository(db)
	var recipes menu.RecipeIndex = menuRepo

	// 3. Redis recipe cache, optional
	var cached *menuRepoPkg.CachedRecipeIndex
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis, recipes are read from the database", zap.Error(err))
	} else {
		defer redisClient.Close()
		cached = menuRepoPkg.NewCachedRecipeIndex(menuRepo, redisClient, cfg.Redis.RecipeTTL, appLogger)
		recipes = cached
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 4. Kafka producer, optional
	var publisher broker.Publisher = broker.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer publisher.Close()

	// 5. UseCases
	orderUC := orderUCPkg.NewOrderUseCase(orderUCPkg.Deps{
		Repo:        orderRepo,
		Ingredients: ingRepo,
		Recipes:     recipes,
		IDs:         sequence.NewSQLAllocator(db),
		Tx:          database.NewTxManager(db, cfg.Database.LockTimeout),
		Publisher:   publisher,
		Logger:      appLogger,
		Policy:      policy,
	})
	ingUC := ingUCPkg.NewIngredientUseCase(ingRepo, appLogger)

	// 6. Handlers
	router := server.NewRouter(appLogger,
		func(r *http.Request) error { return db.PingContext(r.Context()) },
		orderH.NewOrderHandler(orderUC, appLogger),
		ingH.NewIngredientHandler(ingUC, appLogger),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 6.5 Menu change listener keeps the recipe cache fresh
	if cached != nil && len(cfg.Kafka.Brokers) > 0 {
		consumer := broker.NewConsumer(&broker.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.MenuTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		go menuListenerPkg.NewMenuListener(consumer, cached, appLogger).Start(ctx)
	}

	errCh := make(chan error, 2)

	// 7. HTTP server
	httpServer := &http.Server{
		Addr:    normalizePort(cfg.Server.HTTPPort),
		Handler: router,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// 8. gRPC health server
	grpcServer, healthServer, err := startGRPC(cfg.Server.GRPCPort, appLogger, errCh)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		appLogger.Error("Server failed", zap.Error(err))
		stop()
	}

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	appLogger.Info("Server stopped")
	return nil
}

func startGRPC(port string, appLogger logger.ZapLogger, errCh chan<- error) (*grpc.Server, *health.Server, error) {
	addr := normalizePort(port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", addr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	return grpcServer, healthServer, nil
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
