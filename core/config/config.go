package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the expected file name when loading from a directory.
const ConfigurationName = "config.yaml"

// Configuration holds the interpreter's tunable settings.
type Configuration struct {
	// Prompt is printed before each input line. `\w` expands to the current
	// working directory with the home directory abbreviated to `~`.
	Prompt string `yaml:"prompt" validate:"required"`

	// Farewell is printed by the exit builtin before the interpreter quits.
	Farewell string `yaml:"farewell" validate:"required"`

	// HistorySize bounds the command history; the oldest entry is evicted
	// once the bound is reached.
	HistorySize int `yaml:"history_size" validate:"gte=1"`

	// ReplayDepth caps how many levels of `!N` replay may nest before the
	// replay is abandoned, so an entry referencing itself can't loop forever.
	ReplayDepth int `yaml:"replay_depth" validate:"gte=1"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})

	return validate.Struct(c)
}

// Default returns the embedded default configuration.
func Default() *Configuration {
	var out Configuration
	// Will panic() on failure because it should never happen at runtime.
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
