package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/stayadmin/homestay-editor/internal/config"
	"github.com/stayadmin/homestay-editor/internal/prompt"
	"github.com/stayadmin/homestay-editor/pkg/draftstore"
	"github.com/stayadmin/homestay-editor/pkg/editor"
	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
)

var version = "1.0.0"

const redisDraftPrefix = "homestay-editor:drafts"

func main() {
	var (
		editID       string
		apiURL       string
		draftBackend string
		verbose      bool
	)
	flag.StringVar(&editID, "edit", "", "id of the homestay to edit (omit to create a new one)")
	flag.StringVar(&apiURL, "api-url", "", "admin API base URL (overrides EDITOR_API_BASE_URL)")
	flag.StringVar(&draftBackend, "drafts", "", "draft backend: file or redis (overrides EDITOR_DRAFT_BACKEND)")
	flag.BoolVar(&verbose, "v", false, "log debug output to stderr")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if apiURL != "" {
		cfg.Editor.APIBaseURL = apiURL
	}
	if draftBackend != "" {
		cfg.Editor.DraftBackend = draftBackend
	}
	if err := cfg.ValidateEditor(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, editID, logger); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Interrupted. Your draft has been kept.")
			os.Exit(130)
		}
		logger.Fatalf("Editor failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, editID string, logger *logrus.Logger) error {
	drafts, closeDrafts, err := openDrafts(cfg)
	if err != nil {
		return err
	}
	defer closeDrafts()

	client := homestayapi.NewClient(homestayapi.Config{
		BaseURL:   cfg.Editor.APIBaseURL,
		Timeout:   cfg.Editor.RequestTimeout,
		Logger:    logger,
		UserAgent: "homestay-editor/" + version,
	})

	var (
		mode   editor.Mode = editor.CreateMode{}
		server *homestayapi.Homestay
	)
	if editID != "" {
		server, err = client.GetHomestay(ctx, editID)
		if err != nil {
			return fmt.Errorf("failed to load homestay %s: %w", editID, err)
		}
		mode = editor.EditMode{ID: server.ID, OriginalSlug: server.Slug}
	}

	ctrl, err := editor.NewController(editor.Config{
		Mode:                mode,
		API:                 client,
		Drafts:              drafts,
		Logger:              logger,
		AutosaveDelay:       cfg.Editor.AutosaveDelay,
		SlugCheckDelay:      cfg.Editor.SlugCheckDelay,
		SavedIndicatorDelay: cfg.Editor.SavedIndicatorDelay,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	out := prompt.NewSurveyDriver(os.Stdout)
	if server != nil {
		if ctrl.ApplyServerData(ctx, *server) == editor.MergeKeptDraft {
			_ = out.Info(ctx, "A local draft exists for this homestay. Submit it to overwrite the server copy.")
		}
	}

	result, err := prompt.NewSession(ctrl, out, logger).Run(ctx)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Println("Draft kept for later.")
	}
	return nil
}

// openDrafts selects the draft backend. The returned func releases it.
func openDrafts(cfg *config.Config) (draftstore.Store, func(), error) {
	switch cfg.Editor.DraftBackend {
	case config.DraftBackendRedis:
		client, err := config.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store := draftstore.NewRedisStore(client, redisDraftPrefix, cfg.Redis.DraftTTL)
		return store, func() { client.Close() }, nil
	default:
		store, err := draftstore.NewFileStore(cfg.Editor.DraftDir, cfg.Editor.DraftQuotaBytes)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
