package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stopidhan/backend-buzjet-api/internal/catalog"
	"github.com/stopidhan/backend-buzjet-api/internal/logger"
	"github.com/stopidhan/backend-buzjet-api/internal/paths"
	"github.com/stopidhan/backend-buzjet-api/internal/sqlite"
	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// Config keys read from config.yaml.
const (
	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeyDSN        = "dsn"
	cfgKeyLogMode    = "log_mode"
	cfgKeySeedOnInit = "seed_on_init"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir,omitempty"`
	DSN        string `yaml:"dsn,omitempty"`
	LogMode    string `yaml:"log_mode"`
	SeedOnInit bool   `yaml:"seed_on_init"`
}

func defaultConfig() configFile {
	return configFile{
		Backend: types.BackendSQLite,
		LogMode: logger.ModeDevelopment,
	}
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. An existing file is left untouched.
func writeConfigIfMissing(path string, cfg configFile) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. BUZJET_BACKEND, BUZJET_DSN and LOG_MODE
// override the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), defaultConfig()); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeySeedOnInit, false)
	_ = v.BindEnv(cfgKeyBackend, "BUZJET_BACKEND")
	_ = v.BindEnv(cfgKeyDSN, "BUZJET_DSN")
	_ = v.BindEnv(cfgKeyLogMode, "LOG_MODE")

	v.SetConfigFile(paths.ConfigFile(configDir))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// newLogger builds the logger for the configured log_mode. Without one the
// mode comes from the environment.
func newLogger(v *viper.Viper) (*logger.Logger, error) {
	if mode := v.GetString(cfgKeyLogMode); mode != "" {
		return logger.New(mode)
	}
	return logger.FromEnv()
}

// session is an attached catalog plus the service built on it.
type session struct {
	cfg     *viper.Viper
	log     *logger.Logger
	backend *sqlite.Backend
	svc     *catalog.Service
}

// close detaches the backend and flushes the logger.
func (s *session) close() {
	detach(s.backend, s.log)
	s.log.Sync()
}

type detacher interface {
	Detach() error
}

// detach releases backend. A failure is logged since the command result has
// already been decided.
func detach(backend detacher, log *logger.Logger) {
	if err := backend.Detach(); err != nil {
		log.Warn("detach failed", "error", err)
	}
}

// open resolves the directories, loads the config and attaches the backend.
// The caller must defer session.close().
func (a *app) open(cmd *cobra.Command) (*session, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return nil, fail(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, fail(err)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fail(fmt.Errorf("resolve data dir: %w", err))
	}

	log, err := newLogger(v)
	if err != nil {
		return nil, fail(fmt.Errorf("build logger: %w", err))
	}

	cfg := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		DSN:     v.GetString(cfgKeyDSN),
	}
	backend := sqlite.NewBackend(log)
	if err := backend.Attach(cmd.Context(), cfg); err != nil {
		return nil, fail(fmt.Errorf("attach backend: %w", err))
	}

	svc, err := catalog.New(backend, log)
	if err != nil {
		detach(backend, log)
		log.Sync()
		return nil, fail(err)
	}
	return &session{cfg: v, log: log, backend: backend, svc: svc}, nil
}
