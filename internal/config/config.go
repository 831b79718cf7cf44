package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the full pipeline configuration: corpus input, vocabulary
// construction, classifier training and artifact output.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Training   TrainingConfig   `yaml:"training"`
	Output     OutputConfig     `yaml:"output"`
	Remote     RemoteConfig     `yaml:"remote"`
	LogLevel   string           `yaml:"log_level"`
	LogJSON    bool             `yaml:"log_json"`
}

// CorpusConfig locates the input corpus.
type CorpusConfig struct {
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit"` // 0 = read everything
}

// VocabularyConfig holds vocabulary construction settings.
type VocabularyConfig struct {
	Lang         string `yaml:"lang"`
	SizeExponent int    `yaml:"size_exponent"`
	TokenList    []int  `yaml:"token_list"` // empty = language default
	PrefixSuffix bool   `yaml:"prefix_suffix"`
}

// TrainingConfig holds per-token classifier training settings.
type TrainingConfig struct {
	MinPos      int    `yaml:"min_pos"`
	MaxPos      int    `yaml:"max_pos"`
	NegativeCap int    `yaml:"negative_cap"`
	Workers     int    `yaml:"workers"`
	Precision   string `yaml:"precision"`
	StagingDir  string `yaml:"staging_dir"`
	Seed        int64  `yaml:"seed"`
}

// OutputConfig holds artifact destination settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// RemoteConfig locates published artifacts for fetching.
type RemoteConfig struct {
	BaseURL  string `yaml:"base_url"`  // empty = built-in release URL
	CacheDir string `yaml:"cache_dir"` // empty = user cache directory
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Vocabulary: VocabularyConfig{
			Lang:         "es",
			SizeExponent: 13,
			PrefixSuffix: true,
		},
		Training: TrainingConfig{
			MinPos:      512,
			MaxPos:      1 << 13,
			NegativeCap: 1024,
			Workers:     runtime.GOMAXPROCS(0),
			Precision:   "float32",
		},
		Output:   OutputConfig{Dir: "."},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// when non-empty, then environment variables (environment wins).
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.mergeEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, for seeding an editable file.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.Corpus.Path = getenv("SUBTEXT_CORPUS", c.Corpus.Path)
	c.Corpus.Limit = getenvInt("SUBTEXT_LIMIT", c.Corpus.Limit)
	c.Vocabulary.Lang = getenv("SUBTEXT_LANG", c.Vocabulary.Lang)
	c.Vocabulary.SizeExponent = getenvInt("SUBTEXT_SIZE_EXPONENT", c.Vocabulary.SizeExponent)
	c.Vocabulary.PrefixSuffix = getenvBool("SUBTEXT_PREFIX_SUFFIX", c.Vocabulary.PrefixSuffix)
	c.Training.MinPos = getenvInt("SUBTEXT_MIN_POS", c.Training.MinPos)
	c.Training.MaxPos = getenvInt("SUBTEXT_MAX_POS", c.Training.MaxPos)
	c.Training.NegativeCap = getenvInt("SUBTEXT_NEGATIVE_CAP", c.Training.NegativeCap)
	c.Training.Workers = getenvInt("SUBTEXT_WORKERS", c.Training.Workers)
	c.Training.Precision = getenv("SUBTEXT_PRECISION", c.Training.Precision)
	c.Training.StagingDir = getenv("SUBTEXT_STAGING_DIR", c.Training.StagingDir)
	c.Training.Seed = int64(getenvInt("SUBTEXT_SEED", int(c.Training.Seed)))
	c.Output.Dir = getenv("SUBTEXT_OUTPUT_DIR", c.Output.Dir)
	c.Remote.BaseURL = getenv("SUBTEXT_REMOTE_URL", c.Remote.BaseURL)
	c.Remote.CacheDir = getenv("SUBTEXT_CACHE_DIR", c.Remote.CacheDir)
	c.LogLevel = getenv("SUBTEXT_LOG_LEVEL", c.LogLevel)
	c.LogJSON = getenvBool("SUBTEXT_LOG_JSON", c.LogJSON)
}

func (c Config) validate() error {
	if c.Vocabulary.SizeExponent < 1 || c.Vocabulary.SizeExponent > 24 {
		return fmt.Errorf("config: size_exponent %d outside [1, 24]", c.Vocabulary.SizeExponent)
	}
	if c.Training.MinPos < 1 {
		return fmt.Errorf("config: min_pos must be positive, got %d", c.Training.MinPos)
	}
	if c.Training.NegativeCap < 1 {
		return fmt.Errorf("config: negative_cap must be positive, got %d", c.Training.NegativeCap)
	}
	if c.Training.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Training.Workers)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
