package sheetmap

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/store"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/xlsx"
)

// Config is the file form of Options plus the persistence destination.
//
//	mode: streaming
//	strict: false
//	max_depth: 8
//	comment_author: reports
//	store:
//	  driver: s3
//	  bucket: books
type Config struct {
	Mode          string       `yaml:"mode"`
	Strict        *bool        `yaml:"strict"`
	MaxDepth      int          `yaml:"max_depth"`
	CommentAuthor string       `yaml:"comment_author"`
	Store         store.Config `yaml:"store"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates a YAML config document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, ok := backend.ParseMode(cfg.Mode); !ok {
		return nil, fmt.Errorf("invalid mode: %s (must be buffered or streaming)", cfg.Mode)
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("invalid max_depth: %d", cfg.MaxDepth)
	}
	return &cfg, nil
}

// Options converts the config into Options using the xlsx backend.
func (c *Config) Options() Options {
	mode, _ := backend.ParseMode(c.Mode)
	opts := DefaultOptions()
	opts.Mode = mode
	opts.Strict = c.Strict
	opts.MaxDepth = c.MaxDepth
	opts.Backend = xlsx.New(xlsx.Options{CommentAuthor: c.CommentAuthor})
	return opts
}

// OpenStore opens the configured persistence destination.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Store)
}
