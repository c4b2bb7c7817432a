package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	imagecaptioner "github.com/menta2k/image-captioner"
	"github.com/menta2k/image-captioner/internal/config"
	"github.com/menta2k/image-captioner/internal/logger"
	"github.com/menta2k/image-captioner/internal/utils"
	"github.com/menta2k/image-captioner/pkg/model"
	"github.com/menta2k/image-captioner/pkg/processing"
)

// output is one JSON line per described image
type output struct {
	Source       string `json:"source"`
	English      string `json:"english,omitempty"`
	Arabic       string `json:"arabic,omitempty"`
	Success      bool   `json:"success"`
	EnglishError string `json:"english_error,omitempty"`
	ArabicError  string `json:"arabic_error,omitempty"`
	Error        string `json:"error,omitempty"`
}

func main() {
	var in, backend, url, modelName, configFile, logLevel string
	var sendSize, sendQ int
	var pull bool

	flag.StringVar(&in, "in", "", "input image path, directory or URL")
	flag.StringVar(&backend, "backend", "", "backend to use: ollama, llamacpp or gemini (default from MODEL_BACKEND)")
	flag.StringVar(&url, "url", "", "server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&modelName, "model", "", "model name (default from MODEL_NAME)")
	flag.StringVar(&configFile, "config", "", "optional config file (json|yaml)")
	flag.StringVar(&logLevel, "log", "warn", "log level")
	flag.IntVar(&sendSize, "sendsize", -1, "max long side sent to the model (px), 0=original")
	flag.IntVar(&sendQ, "sendq", 0, "JPEG quality for image sent to the model (1-100)")
	flag.BoolVar(&pull, "pull", false, "pull the model first (ollama only)")
	flag.Parse()

	if in == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -in image.jpg|dir|URL [-backend ollama|llamacpp|gemini] [-url server_url] [-model name]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	config.LoadEnvFile()
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, backend, url, modelName, sendSize, sendQ, pull)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid options: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewSugared(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources, err := collectSources(in)
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}
	if len(sources) == 0 {
		log.Fatalf("no image files found in %s", in)
	}

	processor := processing.NewProcessorWithConfig(cfg.ProcessorConfig())
	bundle := model.Load(ctx, cfg.ModelOptions(), processor, log.Desugar())
	if bundle == nil {
		log.Fatalf("model %s is not available on backend %s", cfg.Model.Name, cfg.Model.Backend)
	}
	describer := imagecaptioner.New(bundle)

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)

	failed := 0
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		out := describe(ctx, processor, describer, src)
		if !out.Success {
			failed++
		}
		if err := enc.Encode(out); err != nil {
			log.Fatalf("failed to write output: %v", err)
		}
	}

	log.Infow("done", "images", len(sources), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// applyFlags overrides configuration values with explicitly set flags
func applyFlags(cfg *config.Config, backend, url, modelName string, sendSize, sendQ int, pull bool) {
	if backend != "" {
		previous := cfg.Model.Backend
		cfg.Model.Backend = strings.ToLower(backend)
		// a backend switch invalidates a URL configured for another backend
		if url == "" {
			cfg.Model.URL = ""
		}
		if modelName == "" && cfg.Model.Name == model.DefaultModelName(previous) {
			cfg.Model.Name = model.DefaultModelName(cfg.Model.Backend)
		}
	}
	if url != "" {
		cfg.Model.URL = url
	}
	if modelName != "" {
		cfg.Model.Name = modelName
	}
	if sendSize >= 0 {
		cfg.Processing.SendSize = sendSize
	}
	if sendQ > 0 {
		cfg.Processing.SendQuality = sendQ
	}
	if pull {
		cfg.Model.Pull = true
	}
}

// collectSources expands a directory into its image files
func collectSources(in string) ([]string, error) {
	if utils.IsURL(in) || !utils.DirExists(in) {
		return []string{in}, nil
	}
	return utils.ListImageFiles(in)
}

func describe(ctx context.Context, processor *processing.Processor, describer *imagecaptioner.Describer, src string) output {
	out := output{Source: src}

	img, err := processor.LoadImageSmart(ctx, src)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	res := describer.Describe(ctx, img)
	out.English, out.Arabic, out.Success = res.English, res.Arabic, res.OK()
	if res.EnglishErr != nil {
		out.EnglishError = res.EnglishErr.Error()
	}
	if res.ArabicErr != nil {
		out.ArabicError = res.ArabicErr.Error()
	}
	return out
}
