package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Natashkinsasha/near-nft-template/internal/config"
	"github.com/Natashkinsasha/near-nft-template/internal/node"
	"github.com/Natashkinsasha/near-nft-template/internal/server/api/jsonrpc"
)

// serveCmd starts the standalone node.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the nftd host and JSON-RPC server",
	Long: `Assemble the registry and market programs over the configured state
backend and serve the JSON-RPC interface until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := buildLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // stderr sync failure is harmless

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	n, err := node.New(cfg, log)
	if err != nil {
		return err
	}
	defer n.Close()

	handler := jsonrpc.NewHandler(n.Host)
	mux := http.NewServeMux()
	mux.Handle("/", jsonrpc.NewServer(handler, log))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"nftd"}`))
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("rpc server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

func buildLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
