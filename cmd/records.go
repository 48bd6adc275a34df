package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/vibast-solutions/ms-go-idmatch/app/blacklist"
	"github.com/vibast-solutions/ms-go-idmatch/app/cooccurrence"
	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/normalize"
	"github.com/vibast-solutions/ms-go-idmatch/app/repository"
	"github.com/vibast-solutions/ms-go-idmatch/app/service"
	"github.com/vibast-solutions/ms-go-idmatch/config"

	"github.com/sirupsen/logrus"
)

// loadRecords reads the input csv when given. Otherwise it reads the cache csv, or
// queries gitbase and fills the cache.
func loadRecords(ctx context.Context, cfg *config.Config, input, cache string) ([]entity.Record, error) {
	if input != "" {
		records, err := readRecordsFile(input)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		logrus.WithFields(logrus.Fields{"path": input, "records": len(records)}).Info("Loaded records from input")
		return records, nil
	}

	if cache != "" {
		records, err := readRecordsFile(cache)
		if err == nil {
			logrus.WithFields(logrus.Fields{"path": cache, "records": len(records)}).Info("Loaded records from cache")
			return records, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read cache: %w", err)
		}
	}

	if cfg.GitbaseDSN == "" {
		return nil, errors.New("GITBASE_DSN environment variable is required when no --input is given")
	}
	db, err := repository.Open(ctx, repository.DriverMySQL, cfg.GitbaseDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to gitbase: %w", err)
	}
	defer db.Close()

	records, err := repository.NewRecordRepository(db).FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query gitbase: %w", err)
	}
	logrus.WithField("records", len(records)).Info("Loaded records from gitbase")

	if cache != "" {
		if err := writeRecordsFile(cache, records); err != nil {
			return nil, fmt.Errorf("write cache: %w", err)
		}
		logrus.WithField("path", cache).Info("Stored records cache")
	}
	return records, nil
}

func readRecordsFile(path string) ([]entity.Record, error) {
	if path == "-" {
		return repository.ReadRecordsCSV(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return repository.ReadRecordsCSV(file)
}

func writeRecordsFile(path string, records []entity.Record) error {
	return writeFile(path, func(w io.Writer) error {
		return repository.WriteRecordsCSV(w, records)
	})
}

// writeFile writes to stdout for "-".
func writeFile(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func newFilter(cfg *config.Config) (*blacklist.Filter, error) {
	var tables *blacklist.Tables
	var err error
	if cfg.BlacklistDir != "" {
		tables, err = blacklist.LoadTables(os.DirFS(cfg.BlacklistDir))
	} else {
		tables, err = blacklist.DefaultTables()
	}
	if err != nil {
		return nil, fmt.Errorf("load blacklist tables: %w", err)
	}
	return blacklist.NewFilter(tables, blacklist.Policy{RequireAlphabeticName: cfg.Matching.RequireAlphabeticName}), nil
}

func newNormalizer(cfg *config.Config) normalize.Normalizer {
	return normalize.Normalizer{LowerNames: cfg.Matching.LowerNames, LowerEmails: cfg.Matching.LowerEmails}
}

func newPipeline(cfg *config.Config) (*service.Pipeline, error) {
	filter, err := newFilter(cfg)
	if err != nil {
		return nil, err
	}
	comparison, err := cooccurrence.ParseComparison(cfg.Matching.Comparison)
	if err != nil {
		return nil, err
	}

	return service.NewPipeline(filter, service.PipelineOptions{
		Normalizer:              newNormalizer(cfg),
		NameThreshold:           cfg.Matching.NameThreshold,
		EmailThreshold:          cfg.Matching.EmailThreshold,
		Comparison:              comparison,
		UsePrecalculatedPopular: cfg.Matching.UsePrecalculatedPopular,
		RewritePopularNames:     cfg.Matching.RewritePopularNames,
		MergeByName:             cfg.Matching.MergeByName,
		Workers:                 cfg.Matching.Workers,
	}), nil
}

func openRunStore(ctx context.Context, cfg *config.Config) (*sql.DB, *repository.RunRepository, error) {
	dsn, err := cfg.RequireDSN()
	if err != nil {
		return nil, nil, err
	}
	db, err := repository.Open(ctx, cfg.DBDriver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	runs := repository.NewRunRepository(db)
	if err := runs.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create schema: %w", err)
	}
	return db, runs, nil
}
