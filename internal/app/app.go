package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
	_ "time/tzdata"

	"foodlog/internal/config"
	"foodlog/internal/dataset"
	"foodlog/internal/encryption"
	"foodlog/internal/matcher"
	"foodlog/internal/model"
	"foodlog/internal/storage"
	"foodlog/internal/tracker"
	"foodlog/internal/vault"
)

// ErrNoEncryption is returned by key commands when encryption type is "none".
var ErrNoEncryption = errors.New("encryption is not enabled in config")

// App is the application layer between the CLI/HTTP surfaces and the tracker
// service. It constructs all dependencies from config, records what the
// running command did, and releases resources on Close.
type App struct {
	cfg       *config.Config
	store     tracker.Store
	vault     tracker.Vault
	encryptor tracker.Encryptor
	service   *tracker.Service
	logger    *slog.Logger
	logFile   *os.File
	loc       *time.Location

	mu sync.Mutex
	op *Operation
}

// New creates a fully wired App from the given config.
// operation names the command being run (e.g. "log", "serve").
// The caller must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	op := NewOperation(operation, time.Now())
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := wire(cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	a.op = op

	logger.Debug("operation started", "operation", operation, "storage", cfg.Storage.Type)
	return a, nil
}

// wire builds every dependency from cfg.
func wire(cfg *config.Config, logger *slog.Logger) (*App, error) {
	foods, err := loadFoods(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	scorer, err := newScorer(cfg.Dataset.Scorer)
	if err != nil {
		return nil, err
	}
	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	var v tracker.Vault
	if len(cfg.Vaults) > 0 {
		v, err = vault.NewVaultFromConfig(cfg.Vaults[0])
		if err != nil {
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	store, err := storage.NewStoreFromConfig(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	svc := tracker.NewService(store, dataset.NewCatalog(foods), matcher.New(scorer), v, enc,
		&slogAdapter{l: logger}, tracker.RealClock{}, tracker.UUIDGenerator{})
	svc.SetLocation(loc)
	svc.SetProfileID(cfg.ProfileID)

	return &App{
		cfg:       cfg,
		store:     store,
		vault:     v,
		encryptor: enc,
		service:   svc,
		logger:    logger,
		loc:       loc,
	}, nil
}

func loadFoods(cfg config.DatasetConfig) ([]model.Food, error) {
	if cfg.Path == "" {
		foods, err := dataset.Default()
		if err != nil {
			return nil, fmt.Errorf("loading built-in foods: %w", err)
		}
		return foods, nil
	}
	foods, err := dataset.LoadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", cfg.Path, err)
	}
	return foods, nil
}

func newScorer(name string) (matcher.Scorer, error) {
	switch name {
	case "cosine", "":
		return matcher.CosineScorer{}, nil
	case "overlap":
		return matcher.OverlapScorer{}, nil
	default:
		return nil, fmt.Errorf("unknown scorer: %q", name)
	}
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}

func (a *App) record(mutating bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.op.record(mutating, err)
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Location returns the configured time zone, used for calendar days and
// displayed times.
func (a *App) Location() *time.Location {
	return a.loc
}

// Logger returns the app's structured logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Scan ranks foods against a description.
func (a *App) Scan(text string, topK int) ([]matcher.Match, error) {
	matches, err := a.service.Scan(text, topK)
	a.record(false, err)
	return matches, err
}

// ScanBulk ranks foods against each description.
func (a *App) ScanBulk(texts []string, topK int) ([][]matcher.Match, error) {
	results, err := a.service.ScanBulk(texts, topK)
	a.record(false, err)
	return results, err
}

// Log logs a fully specified food.
func (a *App) Log(food model.Food, quantity float64) (*model.Entry, error) {
	entry, err := a.service.Log(food, quantity)
	a.record(true, err)
	return entry, err
}

// LogByName logs a catalog food by name.
func (a *App) LogByName(name string, quantity float64) (*model.Entry, error) {
	entry, err := a.service.LogByName(name, quantity)
	a.record(true, err)
	return entry, err
}

// LogText logs the best match for a description.
func (a *App) LogText(text string, quantity float64) (*model.Entry, error) {
	entry, err := a.service.LogText(text, quantity)
	a.record(true, err)
	return entry, err
}

// LogManual logs an ad-hoc food that stays out of the catalog.
func (a *App) LogManual(name, servingSize string, calories, quantity float64, macros map[string]float64) (*model.Entry, error) {
	entry, err := a.service.LogManual(name, servingSize, calories, quantity, macros)
	a.record(true, err)
	return entry, err
}

// AddFood adds a custom food to the catalog.
func (a *App) AddFood(food model.Food) (model.Food, error) {
	added, err := a.service.AddFood(food)
	a.record(true, err)
	return added, err
}

func (a *App) Foods() ([]model.Food, error) {
	foods, err := a.service.Foods()
	a.record(false, err)
	return foods, err
}

func (a *App) ListEntries() ([]*model.Entry, error) {
	entries, err := a.service.ListEntries()
	a.record(false, err)
	return entries, err
}

func (a *App) Summary() ([]model.DaySummary, error) {
	days, err := a.service.Summary()
	a.record(false, err)
	return days, err
}

func (a *App) EntriesForDay(day string) (*tracker.DayReport, error) {
	report, err := a.service.EntriesForDay(day)
	a.record(false, err)
	return report, err
}

func (a *App) Today() (*tracker.DayReport, error) {
	report, err := a.service.Today()
	a.record(false, err)
	return report, err
}

func (a *App) Totals() (float64, map[string]float64, error) {
	calories, macros, err := a.service.Totals()
	a.record(false, err)
	return calories, macros, err
}

// Backup uploads a snapshot of the log to the first configured vault.
func (a *App) Backup() (int64, error) {
	version, err := a.service.Backup()
	a.record(false, err)
	return version, err
}

// Restore replaces the local log with the vault snapshot.
func (a *App) Restore(passphrase string, force bool) (*model.Document, error) {
	doc, err := a.service.Restore(passphrase, force)
	a.record(false, err)
	return doc, err
}

// EncryptionEnabled reports whether snapshots are encrypted.
func (a *App) EncryptionEnabled() bool {
	return a.encryptor != nil
}

// KeysConfigured reports whether the key pair exists.
func (a *App) KeysConfigured() bool {
	return a.encryptor != nil && a.encryptor.IsConfigured()
}

// SetupKeys generates the snapshot key pair.
func (a *App) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		return ErrNoEncryption
	}
	if err := a.encryptor.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption keys: %w", err)
	}
	a.logger.Info("encryption keys created", "public_key", a.cfg.Encryption.PublicKeyPath)
	return nil
}

// ValidateVault checks that the configured vault is reachable.
func (a *App) ValidateVault() error {
	if a.vault == nil {
		return fmt.Errorf("no vaults configured")
	}
	return a.vault.ValidateSetup()
}

// Close finishes the operation. If it changed the log and auto_backup is
// enabled, a snapshot is uploaded first. The store and log file are closed
// regardless; the first error is returned.
func (a *App) Close() error {
	var firstErr error

	a.mu.Lock()
	op := *a.op
	a.mu.Unlock()

	if op.Mutated && a.cfg.AutoBackup && a.vault != nil {
		if version, err := a.service.Backup(); err != nil {
			a.logger.Error("automatic backup failed", "error", err)
			firstErr = fmt.Errorf("automatic backup: %w", err)
		} else {
			a.logger.Info("automatic backup complete", "version", version)
		}
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	a.logger.Debug("operation finished", "operation", op.Name, "status", op.Status(), "mutated", op.Mutated)
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
