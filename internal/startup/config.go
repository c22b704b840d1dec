package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/memory"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is built once by
// LoadConfig and not modified afterwards.
type Config struct {
	GalleryDir   string `yaml:"gallery_dir"`
	ThumbnailDir string `yaml:"thumbnail_dir"`
	StubName     string `yaml:"stub_name"`

	Port           string `yaml:"port"`
	MetricsPort    string `yaml:"metrics_port"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`

	ThumbnailWidth     int   `yaml:"thumbnail_width"`
	ThumbnailHeight    int   `yaml:"thumbnail_height"`
	MaxSourceDimension int   `yaml:"max_source_dimension"`
	MaxSourcePixels    int64 `yaml:"max_source_pixels"`
	MaxAssetSize       int64 `yaml:"max_asset_size"`

	// MemoryCeiling overrides the derived process memory ceiling (0 = derive).
	MemoryCeiling int64 `yaml:"memory_ceiling"`

	VipsEnabled    bool `yaml:"vips_enabled"`
	ImagingEnabled bool `yaml:"imaging_enabled"`

	LogStaticFiles  bool `yaml:"log_static_files"`
	LogHealthChecks bool `yaml:"log_health_checks"`

	// ConfigFile is the YAML file the values were read from, if any.
	ConfigFile string `yaml:"-"`

	// Feature flags based on directory availability
	ThumbnailsWritable bool `yaml:"-"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		GalleryDir:         "/gallery",
		ThumbnailDir:       "/thumbnail",
		StubName:           filesystem.DefaultStubName,
		Port:               "8080",
		MetricsPort:        "9090",
		MetricsEnabled:     true,
		ThumbnailWidth:     300,
		ThumbnailHeight:    300,
		MaxSourceDimension: 16384,
		MaxSourcePixels:    100_000_000,
		MaxAssetSize:       10 << 20,
		VipsEnabled:        true,
		ImagingEnabled:     true,
		LogStaticFiles:     false,
		LogHealthChecks:    true,
	}
}

// LoadConfig builds the configuration from, in increasing precedence, the
// defaults, the YAML file named by CONFIG_FILE and the environment. A .env
// file in the working directory is loaded into the environment first.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Failed to load .env: %v", err)
	}

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config, err := buildConfig()
	if err != nil {
		return nil, err
	}

	if config.ConfigFile != "" {
		logging.Info("  CONFIG_FILE:           %s", config.ConfigFile)
	}
	logging.Info("  GALLERY_DIR:           %s", config.GalleryDir)
	logging.Info("  THUMBNAIL_DIR:         %s", config.ThumbnailDir)
	logging.Info("  STUB_NAME:             %s", config.StubName)
	logging.Info("  PORT:                  %s", config.Port)
	logging.Info("  METRICS_PORT:          %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:       %v", config.MetricsEnabled)
	logging.Info("  THUMBNAIL_WIDTH:       %d", config.ThumbnailWidth)
	logging.Info("  THUMBNAIL_HEIGHT:      %d", config.ThumbnailHeight)
	logging.Info("  MAX_SOURCE_DIMENSION:  %d", config.MaxSourceDimension)
	logging.Info("  MAX_SOURCE_PIXELS:     %d", config.MaxSourcePixels)
	logging.Info("  MAX_ASSET_SIZE:        %s", memory.FormatBytes(config.MaxAssetSize))
	if config.MemoryCeiling > 0 {
		logging.Info("  MEMORY_CEILING:        %s", memory.FormatBytes(config.MemoryCeiling))
	} else {
		logging.Info("  MEMORY_CEILING:        (derived)")
	}
	logging.Info("  VIPS_ENABLED:          %v", config.VipsEnabled)
	logging.Info("  IMAGING_ENABLED:       %v", config.ImagingEnabled)
	logging.Info("  LOG_STATIC_FILES:      %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:     %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := ensureDirectory(config.GalleryDir, "gallery"); err != nil {
		return nil, fmt.Errorf("gallery directory error: %w", err)
	}
	logging.Info("  Gallery directory (absolute): %s", config.GalleryDir)

	if err := ensureDirectory(config.ThumbnailDir, "thumbnail"); err != nil {
		return nil, fmt.Errorf("thumbnail directory error: %w", err)
	}
	logging.Info("  Thumbnail directory (absolute): %s", config.ThumbnailDir)

	if err := filesystem.CheckWritable(config.ThumbnailDir); err != nil {
		logging.Warn("  Thumbnail directory is not writable: %v", err)
		logging.Warn("  Thumbnail requests will be answered with placeholders")
	} else {
		config.ThumbnailsWritable = true
		logging.Info("  [OK] Thumbnail directory is writable")
	}

	return config, nil
}

// buildConfig layers the YAML file and the environment over the defaults
// and validates the result.
func buildConfig() (*Config, error) {
	config := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &config); err != nil {
			return nil, err
		}
		config.ConfigFile = path
	}

	applyEnv(&config)

	if err := config.validate(); err != nil {
		return nil, err
	}

	var err error
	if config.GalleryDir, err = filepath.Abs(config.GalleryDir); err != nil {
		return nil, fmt.Errorf("failed to resolve gallery directory path: %w", err)
	}
	if config.ThumbnailDir, err = filepath.Abs(config.ThumbnailDir); err != nil {
		return nil, fmt.Errorf("failed to resolve thumbnail directory path: %w", err)
	}
	return &config, nil
}

func loadYAML(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.GalleryDir = getEnv("GALLERY_DIR", c.GalleryDir)
	c.ThumbnailDir = getEnv("THUMBNAIL_DIR", c.ThumbnailDir)
	c.StubName = getEnv("STUB_NAME", c.StubName)
	c.Port = getEnv("PORT", c.Port)
	c.MetricsPort = getEnv("METRICS_PORT", c.MetricsPort)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.ThumbnailWidth = getEnvInt("THUMBNAIL_WIDTH", c.ThumbnailWidth)
	c.ThumbnailHeight = getEnvInt("THUMBNAIL_HEIGHT", c.ThumbnailHeight)
	c.MaxSourceDimension = getEnvInt("MAX_SOURCE_DIMENSION", c.MaxSourceDimension)
	c.MaxSourcePixels = getEnvInt64("MAX_SOURCE_PIXELS", c.MaxSourcePixels)
	c.MaxAssetSize = getEnvInt64("MAX_ASSET_SIZE", c.MaxAssetSize)
	c.MemoryCeiling = getEnvInt64("MEMORY_CEILING", c.MemoryCeiling)
	c.VipsEnabled = getEnvBool("VIPS_ENABLED", c.VipsEnabled)
	c.ImagingEnabled = getEnvBool("IMAGING_ENABLED", c.ImagingEnabled)
	c.LogStaticFiles = getEnvBool("LOG_STATIC_FILES", c.LogStaticFiles)
	c.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", c.LogHealthChecks)
}

func (c *Config) validate() error {
	switch {
	case c.GalleryDir == "" || c.ThumbnailDir == "":
		return errors.New("gallery and thumbnail directories must be set")
	case c.ThumbnailWidth < 0 || c.ThumbnailHeight < 0:
		return fmt.Errorf("thumbnail size %dx%d must not be negative", c.ThumbnailWidth, c.ThumbnailHeight)
	case c.ThumbnailWidth == 0 && c.ThumbnailHeight == 0:
		return errors.New("at least one of THUMBNAIL_WIDTH and THUMBNAIL_HEIGHT must be set")
	case c.MaxAssetSize <= 0:
		return fmt.Errorf("MAX_ASSET_SIZE must be positive, got %d", c.MaxAssetSize)
	case c.MaxSourceDimension < 0 || c.MaxSourcePixels < 0 || c.MemoryCeiling < 0:
		return errors.New("size limits must not be negative")
	case c.StubName == "" || filepath.Base(c.StubName) != c.StubName:
		return fmt.Errorf("STUB_NAME %q must be a plain file name", c.StubName)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
