// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultMaxRows   = 50
)

// YAMLConfig is the configuration of the tightstore command, read from a yaml
// file. Unset fields take their default.
type YAMLConfig struct {
	LogLevelStr  *string `yaml:"log_level,omitempty"`
	LogFormatStr *string `yaml:"log_format,omitempty"`
	MaxRowsNum   *int    `yaml:"max_rows,omitempty"`
	ColorOn      *bool   `yaml:"color,omitempty"`
}

// NewYamlConfig parses a config. Unknown keys are an error.
func NewYamlConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "invalid config")
	}
	if cfg.LogLevelStr != nil {
		level := strings.ToLower(*cfg.LogLevelStr)
		cfg.LogLevelStr = &level
	}
	return &cfg, nil
}

// YamlConfigFromFile reads the config at path.
func YamlConfigFromFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config '%s'", path)
	}
	return NewYamlConfig(data)
}

func (cfg *YAMLConfig) LogLevel() string {
	if cfg.LogLevelStr == nil {
		return DefaultLogLevel
	}
	return *cfg.LogLevelStr
}

func (cfg *YAMLConfig) LogFormat() string {
	if cfg.LogFormatStr == nil {
		return DefaultLogFormat
	}
	return *cfg.LogFormatStr
}

// MaxRows is the number of rows printed per table. Zero or less prints all.
func (cfg *YAMLConfig) MaxRows() int {
	if cfg.MaxRowsNum == nil {
		return DefaultMaxRows
	}
	return *cfg.MaxRowsNum
}

func (cfg *YAMLConfig) Color() bool {
	if cfg.ColorOn == nil {
		return !color.NoColor
	}
	return *cfg.ColorOn
}

// Apply configures logging and color output.
func (cfg *YAMLConfig) Apply() error {
	level, err := logrus.ParseLevel(cfg.LogLevel())
	if err != nil {
		return errors.Wrap(err, "invalid log_level")
	}
	logrus.SetLevel(level)

	switch cfg.LogFormat() {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("invalid log_format '%s', expected text or json", cfg.LogFormat())
	}

	color.NoColor = !cfg.Color()
	return nil
}
