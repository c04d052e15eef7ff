package store

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Config selects and configures a store.
type Config struct {
	Driver    Driver `yaml:"driver"`
	Root      string `yaml:"root"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// ConfigFromEnv reads a Config from the process environment:
//
//	SHEETMAP_STORE_DRIVER: fs|s3|memory (default fs)
//	SHEETMAP_STORE_ROOT: directory root when driver=fs
//	SHEETMAP_STORE_S3_BUCKET, SHEETMAP_STORE_S3_REGION,
//	SHEETMAP_STORE_S3_ENDPOINT, SHEETMAP_STORE_S3_PATH_STYLE=true|false
func ConfigFromEnv() Config {
	return Config{
		Driver:    Driver(os.Getenv("SHEETMAP_STORE_DRIVER")),
		Root:      os.Getenv("SHEETMAP_STORE_ROOT"),
		Bucket:    os.Getenv("SHEETMAP_STORE_S3_BUCKET"),
		Region:    os.Getenv("SHEETMAP_STORE_S3_REGION"),
		Endpoint:  os.Getenv("SHEETMAP_STORE_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("SHEETMAP_STORE_S3_PATH_STYLE"), "true"),
	}
}

// Open creates the store described by cfg. An empty driver selects fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.Root)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
