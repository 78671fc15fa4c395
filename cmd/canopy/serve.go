package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/canopy"
	httpadapter "github.com/aretw0/canopy/pkg/adapters/http"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	redisadapter "github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/observability"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the debug HTTP server",
	Long: `Starts an HTTP server that drives the tree against persisted sessions:
one POST /sessions/{uid}/tick per tree pass. Sessions live in memory by
default, or in Redis with --redis.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(cmd); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for durable sessions (e.g. localhost:6379)")
	serveCmd.Flags().Duration("session-ttl", 0, "Session TTL in Redis (0 = keep forever)")
}

func serve(cmd *cobra.Command) error {
	logger := newLogger(cmd)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	tree, err := buildTree(cmd, canopy.WithHooks(metrics.Hooks()))
	if err != nil {
		return err
	}

	var store ports.StateStore = memory.NewStore()
	var sessionOpts []session.Option
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		client := backend.NewClient(&backend.Options{Addr: addr})
		ttl, _ := cmd.Flags().GetDuration("session-ttl")
		store = redisadapter.NewFromClient(client, redisadapter.WithTTL(ttl))
		sessionOpts = append(sessionOpts,
			session.WithLocker(redisadapter.NewLocker(client, "canopy:")),
			session.WithLogger(logger),
		)
	}
	sessions := session.NewManager(store, sessionOpts...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", httpadapter.NewHandler(tree, sessions, httpadapter.WithLogger(logger)))

	port, _ := cmd.Flags().GetString("port")
	srv := &http.Server{Addr: ":" + port, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Starting canopy server on %s (tree %q)\n", srv.Addr, tree.RootName())
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		fmt.Printf("\nShutting down... signal: %v\n", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			if err := srv.Close(); err != nil {
				return fmt.Errorf("force close: %w", err)
			}
		}
		fmt.Println("Canopy server stopped gracefully")
	}
	return nil
}
