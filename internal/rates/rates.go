// Package rates supplies metal spot prices to the zakat front ends.
//
// Prices are never fetched or cached by the engine itself; a Source hands a
// snapshot to each calculation.
package rates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"halal_finance/internal/models"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Source returns the current spot prices.
type Source interface {
	Current() Snapshot
}

// Snapshot is a set of prices and when they were last refreshed.
type Snapshot struct {
	Rates     models.PreciousMetalRates
	Currency  string
	UpdatedAt time.Time
}

// Static always returns the same snapshot.
type Static Snapshot

// Current returns s.
func (s Static) Current() Snapshot { return Snapshot(s) }

// fileFormat is the on-disk layout of a rates file.
type fileFormat struct {
	Currency           string `yaml:"currency"`
	GoldPricePerGram   string `yaml:"gold_price_per_gram"`
	SilverPricePerGram string `yaml:"silver_price_per_gram"`
}

// FileSource serves prices from a YAML file and reloads it when it changes.
type FileSource struct {
	path   string
	logger *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewFileSource reads path once. The file must exist and hold positive prices.
func NewFileSource(path string, logger *zap.Logger) (*FileSource, error) {
	fs := &FileSource{path: path, logger: logger}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Current returns the last successfully loaded snapshot.
func (f *FileSource) Current() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot
}

// Reload re-reads the file. On failure the previous snapshot is kept.
func (f *FileSource) Reload() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read rates file: %w", err)
	}

	var raw fileFormat
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parse rates file %s: %w", f.path, err)
	}

	gold, err := decimal.NewFromString(raw.GoldPricePerGram)
	if err != nil || !gold.IsPositive() {
		return fmt.Errorf("rates file %s: gold_price_per_gram must be a positive number, got %q", f.path, raw.GoldPricePerGram)
	}
	silver, err := decimal.NewFromString(raw.SilverPricePerGram)
	if err != nil || !silver.IsPositive() {
		return fmt.Errorf("rates file %s: silver_price_per_gram must be a positive number, got %q", f.path, raw.SilverPricePerGram)
	}

	currency := raw.Currency
	if currency == "" {
		currency = "USD"
	}

	f.mu.Lock()
	f.snapshot = Snapshot{
		Rates:     models.NewRates(gold, silver),
		Currency:  currency,
		UpdatedAt: time.Now(),
	}
	f.mu.Unlock()
	return nil
}

// Watch reloads the file whenever it is written or replaced, until ctx is done.
// The parent directory is watched so editors that rename over the file are seen.
func (f *FileSource) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return err
	}

	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := f.Reload(); err != nil {
				f.logger.Warn("Rates reload failed, keeping previous prices", zap.Error(err))
				continue
			}
			snap := f.Current()
			f.logger.Info("Rates reloaded",
				zap.String("gold", snap.Rates.GoldPricePerGram.String()),
				zap.String("silver", snap.Rates.SilverPricePerGram.String()),
				zap.String("currency", snap.Currency))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("Rates watcher error", zap.Error(err))
		}
	}
}
