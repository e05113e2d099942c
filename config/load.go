package config

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	json "github.com/json-iterator/go"
)

func init() {
	// durations are much more readable as "30s" than as nanoseconds, however plain
	// integers are still accepted
	json.RegisterTypeDecoderFunc("time.Duration", func(ptr unsafe.Pointer, iter *json.Iterator) {
		switch iter.WhatIsNext() {
		case json.StringValue:
			d, err := time.ParseDuration(iter.ReadString())
			if err != nil {
				iter.ReportError("time.Duration", err.Error())
				return
			}

			*(*time.Duration)(ptr) = d
		case json.NumberValue:
			*(*time.Duration)(ptr) = time.Duration(iter.ReadInt64())
		default:
			iter.ReportError("time.Duration", "must be either a string or a number")
		}
	})
}

// Load returns defaults overlaid with the JSON file at path. Fields missing in
// the file keep their default values. An empty path returns plain defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if len(path) == 0 {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err = Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Decode overlays the JSON document onto cfg and validates the result.
func Decode(data []byte, cfg *Config) error {
	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(data, cfg); err != nil {
		return err
	}

	return cfg.Validate()
}
