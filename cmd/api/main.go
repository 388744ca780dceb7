package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gomarketplace-cart/config"
	"gomarketplace-cart/internal/delivery/http/middleware"
	v1 "gomarketplace-cart/internal/delivery/http/v1"
	"gomarketplace-cart/internal/infrastructure/kvstore"
	"gomarketplace-cart/internal/usecase"
	storeapi "gomarketplace-cart/pkg/kvstore"
	"gomarketplace-cart/pkg/logger"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const serviceName = "gomarketplace-cart"

var version = "dev"

func main() {
	cfg := config.LoadConfig()

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the durable store the cart is mirrored into
	store, err := kvstore.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open cart store")
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("Cart store opened")

	err = usecase.ProvideCart(ctx, store, func(cart *usecase.CartManager) error {
		return serve(ctx, cfg, store, cart)
	},
		usecase.WithCartKey(cfg.CartStoreKey),
		usecase.WithPersistTimeout(cfg.CartPersistTimeout),
	)

	if cerr := store.Close(); cerr != nil {
		logger.Error().Err(cerr).Msg("Failed to close cart store")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Cart service stopped with error")
	}
	logger.ServiceStop(serviceName)
}

// serve runs the local cart API until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, store storeapi.Store, cart *usecase.CartManager) error {
	mux := http.NewServeMux()
	v1.RegisterRoutes(mux, v1.NewCartHandler(cart), v1.NewHealthHandler(store, cfg.StoreDriver))

	rateLimiter := middleware.NewRateLimiter(
		ctx,
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // sweep period
		3*time.Minute, // client TTL
	)
	defer rateLimiter.Shutdown()

	// Apply CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg.AllowedOrigin)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.ServiceStart(serviceName, version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
