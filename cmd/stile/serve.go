package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/stile"
	"github.com/aretw0/stile/internal/config"
	"github.com/aretw0/stile/internal/logging"
	"github.com/aretw0/stile/internal/metrics"
	"github.com/aretw0/stile/pkg/adapters/backend"
	"github.com/aretw0/stile/pkg/adapters/file"
	httpadapter "github.com/aretw0/stile/pkg/adapters/http"
	loamadapter "github.com/aretw0/stile/pkg/adapters/loam"
	redisstore "github.com/aretw0/stile/pkg/adapters/redis"
	"github.com/aretw0/stile/pkg/ports"
	"github.com/aretw0/stile/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves the wizard as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		port, _ := cmd.Flags().GetString("port")

		cfg, err := config.Load(dir)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		flow, _ := cmd.Flags().GetString("flow")
		if !cmd.Flags().Changed("flow") && cfg.Flow != "" {
			flow = cfg.Flow
		}
		backendURL, _ := cmd.Flags().GetString("backend")
		if backendURL == "" {
			backendURL = cfg.Backend
		}
		redisURL, _ := cmd.Flags().GetString("redis")
		if redisURL == "" {
			redisURL = cfg.Redis
		}

		logger := logging.New(slog.LevelInfo)

		source, err := loamadapter.Open(dir)
		if err != nil {
			fmt.Printf("Error opening flow directory: %v\n", err)
			os.Exit(1)
		}

		registry := prometheus.NewRegistry()
		recorder := metrics.NewRecorder(registry)

		wizardOpts := []stile.Option{
			stile.WithSource(source, flow),
			stile.WithLogger(logger),
			stile.WithLifecycleHooks(recorder.Hooks()),
		}

		var suggester ports.Suggester
		if backendURL != "" {
			client := backend.NewClient(backendURL, backend.WithLogger(logger))
			wizardOpts = append(wizardOpts,
				stile.WithChecker(client),
				stile.WithSubmitter(client),
			)
			suggester = client
		}

		wizard, err := stile.New(nil, wizardOpts...)
		if err != nil {
			fmt.Printf("Error initializing wizard: %v\n", err)
			os.Exit(1)
		}

		manager, err := buildManager(redisURL, cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing session store: %v\n", err)
			os.Exit(1)
		}

		serverOpts := []httpadapter.Option{httpadapter.WithLogger(logger)}
		if suggester != nil {
			serverOpts = append(serverOpts, httpadapter.WithSuggester(suggester))
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		mux.Handle("/", httpadapter.NewHandler(wizard.Engine(), manager, serverOpts...))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Stile Server on %s\n", srv.Addr)
			fmt.Printf("Serving flow '%s' from: %s\n", flow, dir)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Stile Server stopped gracefully")
		}
	},
}

// buildManager selects server-side session persistence. With Redis the
// manager also takes a distributed lock, so replicas can share the store.
func buildManager(redisURL string, cfg config.Config, logger *slog.Logger) (*session.Manager, error) {
	if redisURL == "" {
		return session.NewManager(file.New(cfg.Store), session.WithLogger(logger)), nil
	}

	redisOpts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := goredis.NewClient(redisOpts)

	var storeOpts []redisstore.Option
	if cfg.SessionTTL > 0 {
		storeOpts = append(storeOpts, redisstore.WithTTL(cfg.SessionTTL))
	}

	return session.NewManager(
		redisstore.NewFromClient(client, storeOpts...),
		session.WithLogger(logger),
		session.WithLocker(redisstore.NewLocker(client, "stile:lock:")),
	), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("backend", "", "Base URL of the signup backend (checks and submission)")
	serveCmd.Flags().String("redis", "", "Redis URL for session persistence (default: local files)")
}
