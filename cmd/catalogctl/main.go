// Command catalogctl validates a similarity artifact and publishes it to Redis
// under the key the API server reads at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cinematch/internal/config"
	dbRedis "github.com/kailas-cloud/cinematch/internal/db/redis"
	logpkg "github.com/kailas-cloud/cinematch/internal/logger"
	catalogrepo "github.com/kailas-cloud/cinematch/internal/repository/catalog"
	"github.com/kailas-cloud/cinematch/internal/version"
)

func main() {
	in := flag.String("in", "", "path to the catalog artifact (.json or .json.gz)")
	key := flag.String("key", "", "redis key (default: catalog.redis.key from config)")
	dryRun := flag.Bool("dry-run", false, "validate only, do not publish")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("catalogctl", version.String())
		return
	}

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: catalogctl -in <artifact> [-key <key>] [-dry-run]")
		os.Exit(2)
	}

	env := config.GetEnv()

	// Validation needs no server config, so it also works on a build machine.
	if *dryRun {
		logger, err := logpkg.NewLogger(env)
		if err != nil {
			panic("failed to create logger: " + err.Error())
		}
		defer func() { _ = logger.Sync() }()

		if err := validate(*in, logger); err != nil {
			logger.Fatal("Validation failed", zap.Error(err))
		}
		return
	}

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := publish(context.Background(), cfg.Catalog, *in, *key, logger); err != nil {
		logger.Fatal("Publish failed", zap.Error(err))
	}
}

func validate(path string, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	catalog, err := catalogrepo.Decode(data)
	if err != nil {
		return err
	}
	logger.Info("Artifact is valid", zap.String("path", path), zap.Int("movies", catalog.Len()))
	return nil
}

func publish(ctx context.Context, cfg config.CatalogConfig, path, key string, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	if key == "" {
		key = cfg.Redis.Key
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		return fmt.Errorf("create redis store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("redis not ready: %w", err)
	}

	catalog, err := catalogrepo.Publish(ctx, store, key, data)
	if err != nil {
		return err
	}
	logger.Info("Catalog published",
		zap.String("key", key),
		zap.Strings("addrs", cfg.Redis.Addrs),
		zap.Int("movies", catalog.Len()),
	)
	return nil
}
