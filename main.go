package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/headshots/internal/config"
	"github.com/dmorgan81/headshots/internal/handler"
	"github.com/dmorgan81/headshots/internal/inject"
	"github.com/dmorgan81/headshots/internal/log"
	"github.com/samber/do"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.New(os.Stderr, slog.LevelInfo).Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, log.ParseLevel(cfg.LogLevel))
	ctx := log.NewContext(context.Background(), logger)

	if cfg.Handler != config.HandlerFeed {
		if err := cfg.RequireCredential(); err != nil {
			logger.Error("refusing to start", "error", err)
			os.Exit(1)
		}
	}

	injector := inject.Setup(ctx, cfg)
	h, err := resolve(injector, cfg.Handler)
	if err != nil {
		logger.Error("wiring handler", "handler", cfg.Handler, "error", err)
		os.Exit(1)
	}

	lambda.StartWithOptions(h, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
		_ = injector.Shutdown()
	}))
}

func resolve(injector *do.Injector, name string) (any, error) {
	switch name {
	case config.HandlerStory:
		h, err := do.Invoke[*handler.StoryHandler](injector)
		if err != nil {
			return nil, err
		}
		return h.Handle, nil
	case config.HandlerFeed:
		h, err := do.Invoke[*handler.FeedHandler](injector)
		if err != nil {
			return nil, err
		}
		return h.Handle, nil
	default:
		h, err := do.Invoke[*handler.Handler](injector)
		if err != nil {
			return nil, err
		}
		return h.Handle, nil
	}
}
