// Package config defines the data structures related to configuration and
// includes functions for loading, validating and exporting a deal file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"github.com/iwvelando/sba-spread/pkg/validation"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DateTimeLayout is the month format used for schedule dates.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds everything a deal file carries.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty" json:"output,omitempty"`
	Deal    spread.Deal   `yaml:"deal" json:"deal"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"` // pretty, csv, json
}

// newViper returns a viper instance with the environment overrides and
// defaults shared by every loader. SBASPREAD_OUTPUT_FORMAT overrides
// output.format, and so on.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the configuration
// there. The format follows the file extension; YAML, JSON and TOML are
// accepted.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a configuration of the given type
// ("yaml", "json", "toml") from r.
func LoadConfigurationFromReader(r io.Reader, configType string) (*Configuration, error) {
	if configType == "" {
		configType = "yaml"
	}
	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return append(warnings, validation.ValidateDeal(c.Deal)...)
}

// ExportYAML renders the configuration as YAML with fields in declaration
// order.
func ExportYAML(c Configuration) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
