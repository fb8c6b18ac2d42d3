package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const envPrefix = "TIMEGRID"

type Config struct {
	Env        string `validate:"oneof=development production"`
	Seed       uint64
	PolicyFile string

	Log    LogConfig
	Input  InputConfig
	Output OutputConfig

	Calendar model.Calendar
	Policy   model.Policy
}

type LogConfig struct {
	Level  string
	Format string `validate:"oneof=console json"`
}

type InputConfig struct {
	CoursesFile string
	RoomsFile   string
	JsonFile    string
	Delimiter   rune
}

type OutputConfig struct {
	Directory   string `validate:"required"`
	PDF         bool
	MetricsFile string
	StatusCodes bool
}

// policyFile is the layout of the optional YAML or JSON file overriding the default calendar and policy
type policyFile struct {
	Calendar map[string]any `mapstructure:"calendar"`
	Policy   map[string]any `mapstructure:"policy"`
}

// Load reads the configuration from the environment, an optional .env file and the optional policy file.
// Variables already set in the environment win over the .env file.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		Env:        v.GetString("ENV"),
		Seed:       v.GetUint64("SEED"),
		PolicyFile: v.GetString("POLICY_FILE"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Input = InputConfig{
		CoursesFile: v.GetString("COURSES_FILE"),
		RoomsFile:   v.GetString("ROOMS_FILE"),
		JsonFile:    v.GetString("JSON_FILE"),
		Delimiter:   parseDelimiter(v.GetString("CSV_DELIMITER"), ','),
	}

	cfg.Output = OutputConfig{
		Directory:   v.GetString("OUTPUT_DIR"),
		PDF:         v.GetBool("OUTPUT_PDF"),
		MetricsFile: v.GetString("METRICS_FILE"),
		StatusCodes: v.GetBool("STATUS_CODES"),
	}

	if err := cfg.LoadPolicy(cfg.PolicyFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPolicy replaces the calendar and policy with the defaults overridden by the given file. An empty path keeps the defaults.
func (cfg *Config) LoadPolicy(path string) error {
	cfg.Calendar = model.DefaultCalendar()
	cfg.Policy = model.DefaultPolicy()
	cfg.PolicyFile = path
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read policy file: %w", err)
	}

	// yaml.v3 also accepts JSON documents and keeps map keys as written
	raw := make(map[string]any)
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return fmt.Errorf("cannot parse policy file %v: %w", path, err)
	}

	var file policyFile
	if err := mapstructure.Decode(raw, &file); err != nil {
		return fmt.Errorf("cannot decode policy file %v: %w", path, err)
	}
	if err := decode(file.Calendar, &cfg.Calendar); err != nil {
		return fmt.Errorf("cannot decode calendar: %w", err)
	}
	if err := decode(file.Policy, &cfg.Policy); err != nil {
		return fmt.Errorf("cannot decode policy: %w", err)
	}
	return nil
}

func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Calendar.Validate(); err != nil {
		return fmt.Errorf("invalid calendar: %w", err)
	}
	if err := cfg.Policy.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}

// Default returns the configuration obtained with no environment and no files
func Default() *Config {
	cfg := &Config{
		Env:    EnvDevelopment,
		Log:    LogConfig{Level: "info", Format: "console"},
		Input:  InputConfig{Delimiter: ','},
		Output: OutputConfig{Directory: "out"},
	}
	_ = cfg.LoadPolicy("")
	return cfg
}

func decode(input map[string]any, output any) error {
	if input == nil {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("SEED", 0)
	v.SetDefault("POLICY_FILE", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("COURSES_FILE", "data/courses.csv")
	v.SetDefault("ROOMS_FILE", "data/classrooms.csv")
	v.SetDefault("JSON_FILE", "")
	v.SetDefault("CSV_DELIMITER", ",")

	v.SetDefault("OUTPUT_DIR", "out")
	v.SetDefault("OUTPUT_PDF", false)
	v.SetDefault("METRICS_FILE", "")
	v.SetDefault("STATUS_CODES", false)
}

func parseDelimiter(value string, fallback rune) rune {
	switch value {
	case "":
		return fallback
	case `\t`, "tab":
		return '\t'
	}
	return []rune(value)[0]
}
