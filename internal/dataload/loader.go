package dataload

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Loader struct {
	store  Store
	logger *slog.Logger
}

func NewLoader(store Store, logger *slog.Logger) *Loader {
	if store == nil {
		panic("Store cannot be nil for Loader")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{store: store, logger: logger.With("component", "DataLoader")}
}

// Load parses both files before writing anything, then hands the whole batch to
// the store. Either path may be empty to skip that file.
func (l *Loader) Load(ctx context.Context, customersPath, loansPath string) (*Result, error) {
	startTime := time.Now()
	var batch Batch

	if customersPath != "" {
		rows, err := ReadTable(customersPath)
		if err != nil {
			return nil, err
		}
		batch.Customers, err = ParseCustomers(rows)
		if err != nil {
			return nil, fmt.Errorf("customers file %s: %w", customersPath, err)
		}
		l.logger.InfoContext(ctx, "Parsed customers file", "path", customersPath, "records", len(batch.Customers))
	}

	if loansPath != "" {
		rows, err := ReadTable(loansPath)
		if err != nil {
			return nil, err
		}
		batch.Loans, err = ParseLoans(rows)
		if err != nil {
			return nil, fmt.Errorf("loans file %s: %w", loansPath, err)
		}
		l.logger.InfoContext(ctx, "Parsed loans file", "path", loansPath, "records", len(batch.Loans))
	}

	result, err := l.store.Import(ctx, batch)
	if err != nil {
		l.logger.ErrorContext(ctx, "Import failed", "error", err)
		return nil, err
	}

	l.logger.InfoContext(ctx, "Import completed",
		"customers", result.Customers,
		"loans", result.Loans,
		"duration", time.Since(startTime),
	)
	return result, nil
}
