package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	imagecaptioner "github.com/menta2k/image-captioner"
	"github.com/menta2k/image-captioner/internal/config"
	"github.com/menta2k/image-captioner/internal/logger"
	"github.com/menta2k/image-captioner/internal/server"
	"github.com/menta2k/image-captioner/pkg/model"
	"github.com/menta2k/image-captioner/pkg/processing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configFile, envFile string
	flag.StringVar(&configFile, "config", "", "optional config file (json|yaml), overrides CONFIG_FILE")
	flag.StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	config.LoadEnvFile(envFile)

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor := processing.NewProcessorWithConfig(cfg.ProcessorConfig())

	// A missing model is not fatal; requests get the "not loaded" texts
	var (
		loadCtx context.Context
		cancel  context.CancelFunc
	)
	if cfg.Model.LoadTimeout > 0 {
		loadCtx, cancel = context.WithTimeout(ctx, cfg.Model.LoadTimeout)
	} else {
		loadCtx, cancel = context.WithCancel(ctx)
	}
	bundle := model.Load(loadCtx, cfg.ModelOptions(), processor, log)
	cancel()

	describer := imagecaptioner.New(bundle)

	srv, err := server.New(cfg, describer, processor, log)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Run)

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		return
	}
	log.Info("Server exited")
}
