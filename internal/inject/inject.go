package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/headshots/internal/batch"
	"github.com/dmorgan81/headshots/internal/config"
	"github.com/dmorgan81/headshots/internal/feed"
	"github.com/dmorgan81/headshots/internal/handler"
	"github.com/dmorgan81/headshots/internal/image"
	"github.com/dmorgan81/headshots/internal/log"
	"github.com/dmorgan81/headshots/internal/page"
	"github.com/dmorgan81/headshots/internal/param"
	"github.com/dmorgan81/headshots/internal/prompt"
	"github.com/dmorgan81/headshots/internal/store"
	"github.com/dmorgan81/headshots/internal/story"
	"github.com/samber/do"
	"google.golang.org/genai"
)

func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*config.Config](injector, cfg)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)

	do.ProvideNamed[string](injector, "api_key", func(i *do.Injector) (string, error) {
		if err := cfg.RequireCredential(); err != nil {
			return "", err
		}
		if cfg.APIKey != "" {
			return cfg.APIKey, nil
		}
		return do.MustInvoke[param.Fetcher](i).Fetch(ctx, cfg.APIKeyParam)
	})
	do.ProvideNamed[[]string](injector, "task_lines", func(i *do.Injector) ([]string, error) {
		if cfg.TasksParam == "" {
			return nil, nil
		}
		return do.MustInvoke[param.Fetcher](i).FetchAll(ctx, cfg.TasksParam)
	})
	do.ProvideNamedValue[string](injector, "image_model", cfg.ImageModel)
	do.ProvideNamedValue[string](injector, "story_model", cfg.StoryModel)
	do.ProvideNamedValue[string](injector, "bucket", cfg.Bucket)
	do.ProvideNamedValue[string](injector, "distribution", cfg.Distribution)
	do.ProvideNamedValue[string](injector, "site_url", cfg.SiteURL)

	do.Provide[*genai.Client](injector, func(i *do.Injector) (*genai.Client, error) {
		return genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     do.MustInvokeNamed[string](i, "api_key"),
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: do.MustInvoke[*http.Client](i),
		})
	})
	do.Provide[image.Generator](injector, func(i *do.Injector) (image.Generator, error) {
		if cfg.Generator == config.GeneratorDezgo {
			return image.NewDezgoGenerator(i)
		}
		return image.NewGeminiGenerator(i)
	})
	do.Provide[*batch.Orchestrator](injector, func(i *do.Injector) (*batch.Orchestrator, error) {
		return batch.New(do.MustInvoke[image.Generator](i),
			batch.WithConcurrency(cfg.Concurrency),
			batch.WithTaskTimeout(cfg.TaskTimeout),
		), nil
	})
	do.Provide[story.Writer](injector, story.NewGeminiWriter)
	do.Provide[*prompt.Catalog](injector, prompt.NewCatalog)

	do.Provide[store.Uploader](injector, store.NewS3Uploader)
	do.Provide[store.Invalidator](injector, store.NewCloudFrontInvalidator)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*feed.Generator](injector, feed.NewS3Generator)

	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*handler.StoryHandler](injector, handler.NewStoryHandler)
	do.Provide[*handler.FeedHandler](injector, handler.NewFeedHandler)

	return injector
}

// SetupLocal wires the same graph for running on a workstation: parameters come
// from the environment and outputs are written below dir.
func SetupLocal(ctx context.Context, cfg *config.Config, dir string) *do.Injector {
	injector := Setup(ctx, cfg)
	do.Override[param.Fetcher](injector, func(*do.Injector) (param.Fetcher, error) {
		return param.NewEnvFetcher(), nil
	})
	do.OverrideValue[store.Uploader](injector, &store.FileUploader{Dir: dir})
	do.OverrideValue[store.Invalidator](injector, store.NopInvalidator{})
	return injector
}
