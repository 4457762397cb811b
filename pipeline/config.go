// CLAUDE:SUMMARY Pipeline configuration struct and YAML loader.
package pipeline

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all pipeline configuration.
type Config struct {
	// Root is the build directory scanned for documents. Required.
	Root string `yaml:"root"`
	// DBPath is the manifest database location.
	DBPath string `yaml:"db_path"`
	// Workers bounds parallel document extraction.
	Workers int `yaml:"workers"`
	// HashLen is the number of hex digest chars in hashed filenames.
	HashLen int `yaml:"hash_len"`
	// Extensions lists the document extensions to process.
	Extensions []string `yaml:"extensions"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "revgraph.db"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.HashLen <= 0 {
		c.HashLen = 8
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".html", ".htm"}
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
