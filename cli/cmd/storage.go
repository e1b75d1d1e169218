package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/printvault/printvault/adapter"
	"github.com/printvault/printvault/adapter/redis"
	"github.com/printvault/printvault/adapter/webhook"
	"github.com/printvault/printvault/cli/config"
	"github.com/printvault/printvault/store"
)

// storageChoice holds the resolved storage configuration after merging
// flags over config file values.
type storageChoice struct {
	backend   string
	path      string
	region    string
	endpoint  string
	pathStyle bool
}

// loadConfig loads the config file named by --config, or returns an
// empty config when the flag is absent.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// resolveStorage merges storage flags over config file defaults.
func resolveStorage(c *cli.Context, cfg *config.Config) storageChoice {
	choice := storageChoice{
		backend:   cfg.Storage.Backend,
		path:      cfg.Storage.Path,
		region:    cfg.Storage.Region,
		endpoint:  cfg.Storage.Endpoint,
		pathStyle: cfg.Storage.S3PathStyle,
	}
	if v := c.String("storage-backend"); v != "" {
		choice.backend = v
	}
	if v := c.String("storage-path"); v != "" {
		choice.path = v
	}
	if v := c.String("storage-region"); v != "" {
		choice.region = v
	}
	if v := c.String("storage-endpoint"); v != "" {
		choice.endpoint = v
	}
	if c.Bool("storage-path-style") {
		choice.pathStyle = true
	}
	if choice.backend == "" {
		choice.backend = "fs"
	}
	return choice
}

// buildStore creates the storage backend for the resolved choice.
func buildStore(ctx context.Context, choice storageChoice) (store.Store, error) {
	switch choice.backend {
	case "fs":
		if choice.path == "" {
			return nil, fmt.Errorf("fs backend requires --storage-path")
		}
		return store.NewFSStore(choice.path)
	case "s3":
		bucket, prefix := store.ParseS3Path(choice.path)
		return store.NewS3Store(ctx, store.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       choice.region,
			Endpoint:     choice.endpoint,
			UsePathStyle: choice.pathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (must be fs or s3)", choice.backend)
	}
}

// buildAdapter creates the notification adapter named by the config.
// An empty type means notifications are disabled and returns nil.
func buildAdapter(cfg config.AdapterConfig) (adapter.Adapter, error) {
	retries := -1
	if cfg.Retries != nil {
		retries = *cfg.Retries
	}

	switch cfg.Type {
	case "":
		return nil, nil
	case "webhook":
		wcfg := webhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout.Duration,
			Retries: webhook.DefaultRetries,
		}
		if retries >= 0 {
			wcfg.Retries = retries
		}
		return webhook.New(wcfg)
	case "redis":
		rcfg := redis.Config{
			URL:     cfg.URL,
			Channel: cfg.Channel,
			Timeout: cfg.Timeout.Duration,
			Retries: redis.DefaultRetries,
		}
		if retries >= 0 {
			rcfg.Retries = retries
		}
		return redis.New(rcfg)
	default:
		return nil, fmt.Errorf("unknown adapter type: %s (must be webhook or redis)", cfg.Type)
	}
}
