package vickrey

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"io/ioutil"
	"os"
	"time"
)

type config struct {
	Params     *auction.Params
	Prefix     string
	APIKey     string
	NodeURL    string
	NodeAPIKey string
}

var Config = new(config)

// FileConfig mirrors the optional YAML config file. Flags given on the
// command line take precedence over it.
type FileConfig struct {
	Network       string        `yaml:"network"`
	Prefix        string        `yaml:"prefix"`
	LogLevel      string        `yaml:"log_level"`
	APIKey        string        `yaml:"api_key"`
	NodeURL       string        `yaml:"node_url"`
	NodeAPIKey    string        `yaml:"node_api_key"`
	APIPort       int           `yaml:"api_port"`
	BlockInterval time.Duration `yaml:"block_interval"`
}

// LoadFileConfig reads path. A missing file yields an empty config.
func LoadFileConfig(path string) (*FileConfig, error) {
	cfg := new(FileConfig)
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}
	if cfg.APIPort < 0 || cfg.APIPort > 65535 {
		return nil, errors.Errorf("invalid API port %d", cfg.APIPort)
	}
	return cfg, nil
}

// ApplyTo returns a copy of params with the file's overrides applied.
func (f *FileConfig) ApplyTo(params *auction.Params) (*auction.Params, error) {
	out := params.Copy()
	if f.APIPort != 0 {
		out.APIPort = f.APIPort
	}
	if f.BlockInterval != 0 {
		out.BlockInterval = f.BlockInterval
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
