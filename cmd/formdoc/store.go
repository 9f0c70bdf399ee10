package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/internal/config"
	"github.com/goliatone/go-formdoc/internal/logging"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/storage"
	"github.com/goliatone/go-formdoc/pkg/storage/s3store"
	"github.com/goliatone/go-formdoc/pkg/storage/sqlstore"
	"github.com/goliatone/go-formdoc/pkg/values"
)

var (
	documentPath string
	valuesPath   string
)

// addSourceFlags registers the flags shared by commands that read a
// configuration and a values snapshot.
func addSourceFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&documentPath, "file", "f", "", "configuration document (JSON or YAML); defaults to the configured store")
	flags.StringVarP(&valuesPath, "values", "v", "", "values snapshot (JSON or YAML); \"-\" reads stdin")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the store selected by storage.driver.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, io.Closer, error) {
	logger := logging.WithModule("storage")
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Debug("using memory store")
		return storage.NewMemoryStore(), nopCloser{}, nil
	case config.DriverFile, "":
		store, err := storage.NewFileStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using file store", zap.String("path", store.Path()))
		return store, nopCloser{}, nil
	case config.DriverSQLite:
		store, err := sqlstore.Open(ctx, sqlstore.SQLite, cfg.SQLiteDSN())
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using sqlite store", zap.String("dsn", cfg.SQLiteDSN()))
		return store, store, nil
	case config.DriverPostgres:
		store, err := sqlstore.Open(ctx, sqlstore.Postgres, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using postgres store")
		return store, store, nil
	case config.DriverS3:
		store, err := s3store.New(ctx, s3store.Options{
			Bucket:   cfg.S3.Bucket,
			Key:      cfg.S3.Key,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using s3 store", zap.String("bucket", cfg.S3.Bucket), zap.String("key", cfg.S3.Key))
		return store, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// openManager opens the configured store and loads the current document.
func openManager(ctx context.Context, opts ...storage.ManagerOption) (*storage.Manager, io.Closer, error) {
	store, closer, err := openStore(ctx, appConfig.Storage)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.WithModule("storage")
	opts = append([]storage.ManagerOption{
		storage.WithLogger(logger),
		storage.WithOnChange(func(cfg model.Configuration) {
			logger.Debug("configuration swapped", zap.Int("sections", len(cfg.Form.Sections)))
		}),
	}, opts...)
	manager, err := storage.NewManager(store, opts...)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	if _, err := manager.Load(ctx); err != nil {
		closer.Close()
		return nil, nil, err
	}
	return manager, closer, nil
}

// loadConfiguration returns the document named by --file, or the stored one.
func loadConfiguration(ctx context.Context) (model.Configuration, error) {
	if documentPath != "" {
		data, err := os.ReadFile(documentPath)
		if err != nil {
			return model.Configuration{}, fmt.Errorf("read configuration: %w", err)
		}
		doc, err := storage.Parse(data)
		if err != nil {
			return model.Configuration{}, fmt.Errorf("%s: %w", documentPath, err)
		}
		return doc.Configuration(), nil
	}
	manager, closer, err := openManager(ctx)
	if err != nil {
		return model.Configuration{}, err
	}
	defer closer.Close()
	return manager.Current(), nil
}

// loadValues reads the snapshot named by --values from a file or stdin. No
// flag yields an empty snapshot.
func loadValues(stdin io.Reader) (model.Values, error) {
	if valuesPath == "" {
		return model.Values{}, nil
	}
	var (
		data []byte
		err  error
	)
	if valuesPath == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(valuesPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	return values.Decode(data)
}

// writeOutput writes data to path, or w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logging.WithModule("cli").Info("output written", zap.String("path", path))
	return nil
}
