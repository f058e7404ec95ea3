package app

import (
	"context"
	"io"
	"io/ioutil"
	"path/filepath"

	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/store/iavl"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tendermint/libs/db"
	"gopkg.in/yaml.v3"
)

// Config is the node configuration, usually read from a YAML file.
type Config struct {
	DB      DBConfig  `yaml:"db"`
	Log     LogConfig `yaml:"log"`
	Genesis string    `yaml:"genesis"`
}

// DBConfig describes where the state is stored.
type DBConfig struct {
	// Backend is one of the tendermint database backends, for example
	// goleveldb or memdb.
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	Name    string `yaml:"name"`
	// KeepRecent is the number of versions kept, zero keeps all.
	KeepRecent int64 `yaml:"keep_recent"`
}

// LogConfig describes the logger.
type LogConfig struct {
	// Level is one of debug, info, error or none.
	Level string `yaml:"level"`
	// Format is either text or json.
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used for all values missing in
// the configuration file.
func DefaultConfig() Config {
	return Config{
		DB: DBConfig{
			Backend: string(dbm.GoLevelDBBackend),
			Dir:     "data",
			Name:    "dao",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
// Relative paths are resolved against the directory of the file.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "read config: %s", err)
	}
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "parse config %q: %s", path, err)
	}
	base := filepath.Dir(path)
	conf.DB.Dir = resolve(base, conf.DB.Dir)
	conf.Genesis = resolve(base, conf.Genesis)
	return conf, conf.Validate()
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

var backends = map[string]bool{
	string(dbm.GoLevelDBBackend): true,
	string(dbm.MemDBBackend):     true,
	string(dbm.CLevelDBBackend):  true,
	string(dbm.FSDBBackend):      true,
}

var formats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	if !backends[c.DB.Backend] {
		return errors.Wrapf(errors.ErrInput, "unknown database backend %q", c.DB.Backend)
	}
	if c.DB.Name == "" {
		return errors.Wrap(errors.ErrInput, "missing database name")
	}
	if c.DB.Backend != string(dbm.MemDBBackend) && c.DB.Dir == "" {
		return errors.Wrap(errors.ErrInput, "missing database directory")
	}
	if c.DB.KeepRecent < 0 {
		return errors.Wrap(errors.ErrInput, "keep_recent must not be negative")
	}
	if !formats[c.Log.Format] {
		return errors.Wrapf(errors.ErrInput, "unknown log format %q", c.Log.Format)
	}
	if _, err := log.AllowLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// NewLogger returns a logger writing to w as configured.
func NewLogger(w io.Writer, c LogConfig) (log.Logger, error) {
	var logger log.Logger
	switch c.Format {
	case "json":
		logger = log.NewTMJSONLogger(log.NewSyncWriter(w))
	case "text", "":
		logger = log.NewTMLogger(log.NewSyncWriter(w))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown log format %q", c.Format)
	}
	level := c.Level
	if level == "" {
		level = "info"
	}
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return log.NewFilter(logger, allow), nil
}

// Open opens the configured store and returns the application over it. If
// the store is empty and a genesis file is configured, genesis is loaded.
func Open(ctx context.Context, conf Config, logger log.Logger) (*App, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	db, err := iavl.NewCommitStore(dbm.DBBackendType(conf.DB.Backend), conf.DB.Dir, conf.DB.Name)
	if err != nil {
		return nil, err
	}
	db.KeepRecent(conf.DB.KeepRecent)

	a, err := New(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if a.ChainID() != "" || conf.Genesis == "" {
		return a, nil
	}
	gen, err := LoadGenesis(conf.Genesis)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.InitGenesis(ctx, gen); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}
