package cli

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	synerrors "github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/utils"
)

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan for annotated Go files
	Directories []string `yaml:"directories" validate:"required,min=1,dive,required"`

	// ModuleName is the custom module name for imports
	// If empty, will be determined from go.mod file
	ModuleName string `yaml:"module"`

	// Strict turns unknown middleware classes into errors
	Strict bool `yaml:"strict"`

	// OutputFile is the name of the generated file in each package
	OutputFile string `yaml:"output_file" validate:"required,endswith=.go,excludes=/"`

	Log LogConfig `yaml:"log"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `yaml:"-"`

	// Dump prints the collected table instead of writing files
	Dump bool `yaml:"-"`
}

// LogConfig selects the structured logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// ConfigLoader reads and validates configuration files
type ConfigLoader struct {
	validator *validator.Validate
}

// NewConfigLoader creates a loader with struct validation enabled
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Defaults returns the configuration used when nothing is set
func (l *ConfigLoader) Defaults() Config {
	return Config{
		OutputFile: utils.DefaultOutputFile,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// LoadFromFile reads a YAML file over the defaults. Directories may be left
// out of the file and supplied on the command line, so the result is not
// validated here.
func (l *ConfigLoader) LoadFromFile(configPath string) (Config, error) {
	config := l.Defaults()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return config, synerrors.WrapConfigurationError("yaml", "read", err).
			With("path", configPath)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, synerrors.WrapConfigurationError("yaml", "parse", err).
			With("path", configPath)
	}

	return config, nil
}

// Validate checks the final configuration
func (l *ConfigLoader) Validate(config Config) error {
	if err := l.validator.Struct(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
