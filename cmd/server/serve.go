package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/catalog"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/config"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/database"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/feed"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/handlers"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/migrations"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/redis"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/repository"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/services"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/simulator"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/store"
	"github.com/vswdatasolutions/Shuarya-Dhaba/pkg/genai"
)

const eventBuffer = 256

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the order status source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()

	menu, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load menu: %w", err)
	}

	orders := store.New(store.WithLogger(logger.With("component", "store")))
	defer orders.Close()

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	// Initialize database archive (optional)
	var menuRepo repository.MenuRepository
	if cfg.DatabaseURL != "" {
		db, err := database.Initialize(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migrations.Run(db, menu.List(), false); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		menuRepo = repository.NewMenuRepository(db)

		events, cancel, err := orders.Subscribe(ctx, eventBuffer)
		if err != nil {
			return err
		}
		defer cancel()
		writer := services.NewArchiveWriter(repository.NewOrderRepository(db), logger.With("component", "archive"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = writer.Run(ctx, events)
		}()
	} else {
		logger.Info("DATABASE_URL not set, order archive disabled")
	}

	if cfg.SeedDemoOrders {
		demo, err := menu.DemoOrders(time.Now())
		if err != nil {
			return err
		}
		if err := orders.Seed(ctx, demo...); err != nil {
			return fmt.Errorf("failed to seed demo orders: %w", err)
		}
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	gen, err := genai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		return err
	}
	if !genai.Available(gen) {
		logger.Warn("OPENAI_API_KEY not set, AI features use their fallbacks")
	}

	// Initialize services
	carts := services.NewCartService(menu)
	userService, err := services.NewUserService(redisClient, redisClient, carts, services.Credentials{
		OTP: cfg.DemoOTP,
		Passwords: map[models.Role]string{
			models.RoleAdmin:    cfg.AdminPassword,
			models.RoleKitchen:  cfg.KitchenPassword,
			models.RoleDelivery: cfg.DeliveryPassword,
		},
	}, cfg.SessionTTL(), logger.With("component", "users"))
	if err != nil {
		return err
	}
	menuService := services.NewMenuService(menu, gen, menuRepo, cfg.AITimeout, logger.With("component", "menu"))
	orderService := services.NewOrderService(orders, carts, menu, time.Now)
	recommendationService := services.NewRecommendationService(carts, gen, redisClient, cfg.CacheDuration(), cfg.AITimeout, logger.With("component", "recommendations"))
	parser := services.NewRemoteParser(gen, services.NewRuleParser(), cfg.AITimeout, logger.With("component", "intent"))
	assistantService := services.NewAssistantService(parser, carts, menu, redisClient, cfg.SessionTTL(), logger.With("component", "assistant"))

	wg.Add(1)
	go func() {
		defer wg.Done()
		evictCarts(ctx, carts, cfg.SessionTTL(), logger)
	}()

	source, err := statusSource(ctx, cfg, orders, logger, &wg)
	if err != nil {
		return err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := source.Run(ctx); err != nil {
			logger.Error("status source stopped", "error", err)
		}
	}()

	// Setup routes
	router := gin.Default()
	handlers.Register(router,
		handlers.NewAPIHandler(userService, menuService, carts, orderService, recommendationService, assistantService),
		handlers.NewAssistantHandler(assistantService),
		userService,
	)

	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// statusSource picks what drives order statuses besides staff actions. The
// AMQP feed also republishes every store event.
func statusSource(ctx context.Context, cfg *config.Config, orders *store.OrderStore, logger *slog.Logger, wg *sync.WaitGroup) (simulator.StatusSource, error) {
	switch cfg.StatusSource {
	case "", "simulator":
		return simulator.New(orders,
			simulator.WithInterval(cfg.SimulatorInterval),
			simulator.WithChance(cfg.SimulatorChance),
			simulator.WithLogger(logger.With("component", "simulator")),
		), nil
	case "amqp":
		client, err := feed.Dial(cfg.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		if err := client.Declare(cfg.RabbitMQExchange, cfg.RabbitMQQueue); err != nil {
			client.Close()
			return nil, err
		}
		events, cancel, err := orders.Subscribe(ctx, eventBuffer)
		if err != nil {
			client.Close()
			return nil, err
		}
		publisher := feed.NewPublisher(client, cfg.RabbitMQExchange, logger.With("component", "publisher"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer client.Close()
			defer cancel()
			publisher.Run(ctx, events)
		}()
		return feed.NewConsumer(client, cfg.RabbitMQQueue, orders, logger.With("component", "feed")), nil
	}
	return nil, fmt.Errorf("unknown STATUS_SOURCE %q", cfg.StatusSource)
}

// evictCarts drops carts left behind by sessions that expired without a
// logout.
func evictCarts(ctx context.Context, carts services.CartService, ttl time.Duration, logger *slog.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := carts.EvictIdle(ttl); n > 0 {
				logger.Debug("evicted idle carts", "count", n)
			}
		}
	}
}
