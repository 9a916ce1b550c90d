// Package config resolves the settings of a file manager run.
//
// Values are layered: built-in defaults, then the YAML file, then the
// environment. Command-line flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/core"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"filemanager/internal/pipeline"
	"filemanager/internal/table"
)

// FileName is the config file looked up in the working directory when no
// explicit path is given.
const FileName = "filemanager.yaml"

// Environment variables consulted by Load.
const (
	EnvDataDir     = "FILEMANAGER_DATA_DIR"
	EnvFileCount   = "FILEMANAGER_FILE_COUNT"
	EnvSummaryPath = "FILEMANAGER_SUMMARY_PATH"
	EnvLogLevel    = "FILEMANAGER_LOG_LEVEL"
)

// Config holds every setting of a run.
type Config struct {
	DataDir     string `yaml:"data_dir" validate:"notblank"`
	FileCount   int    `yaml:"file_count" validate:"gte=0"`
	SummaryPath string `yaml:"summary_path" validate:"notblank"`
	TracePath   string `yaml:"trace_path" validate:"omitempty,notblank"`
	RecordRuns  bool   `yaml:"record_runs"`
	LogLevel    string `yaml:"log_level"`

	// Records replaces the built-in dataset when non-empty.
	Records []table.Record `yaml:"records"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		DataDir:     pipeline.DefaultDataDir,
		FileCount:   pipeline.DefaultFileCount,
		SummaryPath: pipeline.DefaultSummaryPath,
		LogLevel:    "warn",
	}
}

// Load builds a Config from defaults, the YAML file at path on fsys and
// the environment. A missing file yields the defaults unless required is
// set. An empty path skips the file entirely.
//
// The result is not validated: callers apply their own overrides first and
// then call Validate.
func Load(fsys core.FS, path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := fsys.ReadFile(path)
		switch {
		case err == nil:
			if err := decodeStrict(data, cfg); err != nil {
				return nil, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to parse config %s", path)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return nil, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to read config %s", path)
		}
	}

	if err := cfg.applyEnvOverrides(os.Getenv); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "invalid environment override")
	}
	return cfg, nil
}

// LoadDotEnv reads <dir>/.env from fsys into the process environment.
// Variables that are already set win; a missing file is not an error.
func LoadDotEnv(fsys core.FS, dir string) error {
	path := filepath.Join(dir, ".env")
	data, err := fsys.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to read %s", path)
	}
	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to parse %s", path)
	}
	for k, v := range vars {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to set %s", k)
		}
	}
	return nil
}

func decodeStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvDataDir)); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(getenv(EnvFileCount)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFileCount, err)
		}
		c.FileCount = n
	}
	if v := strings.TrimSpace(getenv(EnvSummaryPath)); v != "" {
		c.SummaryPath = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(c.Records) > 0 {
		if err := table.Dataset(c.Records).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("records: %w", err))
		}
	}
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "notblank":
		return fmt.Errorf("%s is required", fe.Field())
	case "gte":
		return fmt.Errorf("%s must be >= %s (got %v)", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

// Level returns the parsed log level, falling back to warn.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.WarnLevel
	}
	return lvl
}

// Dataset returns the configured records, or the built-in dataset.
func (c *Config) Dataset() table.Dataset {
	if len(c.Records) == 0 {
		return table.DefaultDataset()
	}
	out := make(table.Dataset, len(c.Records))
	copy(out, c.Records)
	return out
}

// Plan converts the configuration into an unresolved pipeline plan; paths
// are returned exactly as configured.
func (c *Config) Plan() pipeline.Plan {
	return pipeline.Plan{
		Dir:         c.DataDir,
		FileCount:   c.FileCount,
		SummaryPath: c.SummaryPath,
		Dataset:     c.Dataset(),
	}
}
