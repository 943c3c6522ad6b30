package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/secondserve/internal/auth"
	"github.com/geocoder89/secondserve/internal/config"
	"github.com/geocoder89/secondserve/internal/db"
	"github.com/geocoder89/secondserve/internal/domain/order"
	httpx "github.com/geocoder89/secondserve/internal/http"
	"github.com/geocoder89/secondserve/internal/http/handlers"
	"github.com/geocoder89/secondserve/internal/http/middlewares"
	"github.com/geocoder89/secondserve/internal/observability"
	"github.com/geocoder89/secondserve/internal/redisclient"
	"github.com/geocoder89/secondserve/internal/repo/memory"
	"github.com/geocoder89/secondserve/internal/repo/postgres"
	"github.com/geocoder89/secondserve/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type stores struct {
	users     service.UserStore
	donations service.DonationStore
	orders    service.OrderStore
	checks    []handlers.Check
	close     func()
}

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(serviceInfo(cfg))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	startCtx, cancel := config.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if cfg.OTelEnabled {
		shutdownTracer, err := observability.InitTracer(startCtx, serviceInfo(cfg), observability.TracerConfig{
			Endpoint:    cfg.OTelEndpoint,
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	st, err := openStores(startCtx, cfg, prom)
	if err != nil {
		return err
	}
	defer st.close()

	policy, err := order.PolicyByName(cfg.OrderTransitions)
	if err != nil {
		return err
	}

	if cfg.Env != "dev" && cfg.JWTSecret == config.DevJWTSecret {
		log.Warn("JWT_SECRET is the development default; set a real secret")
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	accounts := service.NewAccounts(st.users, tokens)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := accounts.EnsureAdmin(startCtx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			return fmt.Errorf("provision admin: %w", err)
		}
		log.Info("admin provisioned", "email", cfg.AdminEmail, "created", created)
	}

	checks := st.checks
	var limiter middlewares.Limiter

	if cfg.RateLimitAuthPerMin > 0 {
		limiter = middlewares.NewMemoryLimiter(cfg.RateLimitAuthPerMin, time.Minute)

		if cfg.RedisAddr != "" {
			rdb := redisclient.New(redisclient.Config{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			defer rdb.Close()

			if err := rdb.Ping(startCtx); err != nil {
				log.Warn("redis unreachable, auth limiter still uses it and fails open", "addr", cfg.RedisAddr, "err", err)
			}

			limiter = middlewares.NewRedisLimiter(rdb, "secondserve:ratelimit:auth:", cfg.RateLimitAuthPerMin, time.Minute)
			checks = append(checks, handlers.Check{Name: "redis", Ping: rdb.Ping})
		}
	}

	router := httpx.NewRouter(cfg, httpx.Deps{
		Accounts:    accounts,
		Gate:        service.NewGate(st.users, tokens),
		Donations:   service.NewDonations(st.donations),
		Orders:      service.NewOrders(st.orders, st.donations, policy),
		Stats:       service.NewStats(st.users, st.donations, st.orders),
		Prom:        prom,
		Gatherer:    reg,
		AuthLimiter: limiter,
		Checks:      checks,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "order_transitions", cfg.OrderTransitions)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	log.Info("server shutting down")

	ctx, cancelShutdown := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func serviceInfo(cfg config.Config) observability.ServiceInfo {
	return observability.ServiceInfo{Name: observability.ServiceName, Version: cfg.Version, Env: cfg.Env}
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom) (stores, error) {
	switch cfg.StoreDriver {
	case "memory":
		mem := memory.NewDB()
		return stores{
			users:     memory.NewUsersRepo(mem),
			donations: memory.NewDonationsRepo(mem),
			orders:    memory.NewOrdersRepo(mem),
			close:     func() {},
		}, nil

	case "postgres", "":
		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:             cfg.DBURL,
			MaxConns:        int32(cfg.DBMaxConns),
			MinConns:        int32(cfg.DBMinConns),
			MaxConnLifetime: time.Hour,
		})
		if err != nil {
			return stores{}, fmt.Errorf("db connect failed: %w", err)
		}

		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("ensure schema: %w", err)
		}

		return stores{
			users:     postgres.NewUsersRepo(pool, prom),
			donations: postgres.NewDonationsRepo(pool, prom),
			orders:    postgres.NewOrdersRepo(pool, prom),
			checks:    []handlers.Check{{Name: "postgres", Ping: pool.Ping}},
			close:     pool.Close,
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
