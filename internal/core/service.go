package core

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
	"hcf/internal/metrics"
	"hcf/internal/source"
	"hcf/internal/storage/config"
	"hcf/internal/storage/db"
)

// cacheMaxAge bounds how long offline item metadata is kept.
const cacheMaxAge = 90 * 24 * time.Hour

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir  string // Directory for configuration files
	ConfigFile string // Explicit config file; overrides ConfigDir when set
	DataDir    string // Directory for the database
}

// Service owns process-wide state: settings, the database and metrics.
// Per-game work happens in Sessions opened from it.
type Service struct {
	config  *config.Config
	db      *db.DB
	metrics *metrics.Metrics

	configPath string
	dataDir    string
}

// NewService creates a new core service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	configPath := cfg.ConfigFile
	if configPath == "" {
		configPath = filepath.Join(cfg.ConfigDir, config.FileName)
	}

	appConfig, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	database, err := db.New(filepath.Join(cfg.DataDir, db.FileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if n, err := database.PruneCache(cacheMaxAge); err != nil {
		log.Warn().Err(err).Msg("pruning item cache")
	} else if n > 0 {
		log.Debug().Int64("removed", n).Msg("pruned item cache")
	}

	return &Service{
		config:     appConfig,
		db:         database,
		metrics:    metrics.New(),
		configPath: configPath,
		dataDir:    cfg.DataDir,
	}, nil
}

// Close flushes metrics to the configured textfile and closes the database.
func (s *Service) Close() error {
	if err := s.metrics.WriteTextfile(s.config.MetricsFile); err != nil {
		log.Warn().Err(err).Str("path", s.config.MetricsFile).Msg("writing metrics")
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Config returns the loaded settings.
func (s *Service) Config() *config.Config {
	return s.config
}

// ConfigPath returns the config file in use.
func (s *Service) ConfigPath() string {
	return s.configPath
}

// SaveConfig persists the current settings.
func (s *Service) SaveConfig() error {
	return s.config.SaveFile(s.configPath)
}

// DataDirPath returns the directory holding the database.
func (s *Service) DataDirPath() string {
	return s.dataDir
}

// DB returns the database
func (s *Service) DB() *db.DB {
	return s.db
}

// Metrics returns the metrics sink.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// GameDir resolves the game directory: override wins over the configured path.
func (s *Service) GameDir(override string) (string, error) {
	dir := override
	if dir == "" {
		dir = s.config.GamePath
	}
	return config.ValidateGameDir(dir)
}

// OpenSession opens a session on gameDir wired to the service's history,
// item cache and metrics.
func (s *Service) OpenSession(gameDir string, src source.ContentSource, opts ...SessionOption) (*Session, error) {
	base := []SessionOption{
		WithJournal(s.db),
		WithItemCache(s.db),
		WithMetrics(s.metrics),
	}
	return NewSession(gameDir, src, append(base, opts...)...)
}

// History returns recorded operations, newest first.
func (s *Service) History(f db.HistoryFilter) ([]domain.HistoryRecord, error) {
	return s.db.ListHistory(f)
}

// SaveSourceToken saves an API token for a source
func (s *Service) SaveSourceToken(sourceID, apiKey string) error {
	return s.db.SaveToken(sourceID, apiKey)
}

// GetSourceToken retrieves an API token for a source
func (s *Service) GetSourceToken(sourceID string) (*db.StoredToken, error) {
	return s.db.GetToken(sourceID)
}

// DeleteSourceToken removes an API token for a source
func (s *Service) DeleteSourceToken(sourceID string) error {
	return s.db.DeleteToken(sourceID)
}

// IsSourceAuthenticated checks if a source has a stored API token
func (s *Service) IsSourceAuthenticated(sourceID string) bool {
	tok, err := s.db.GetToken(sourceID)
	return err == nil && tok != nil && tok.APIKey != ""
}
