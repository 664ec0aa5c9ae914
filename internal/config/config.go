// Copyright 2025 Blink Labs Software
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

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "ballot.config"

const (
	DefaultBlobPlugin      = "badger"
	DefaultDatabasePath    = ".ballot"
	DefaultShutdownTimeout = "30s"
)

// ErrPluginListRequested is returned when the user requests to list available plugins
// This is not an error condition but a successful operation that displays plugin information
var ErrPluginListRequested = errors.New("plugin list requested")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
}

type databaseConfig struct {
	Blob map[string]any `yaml:"blob,omitempty"`
}

type Config struct {
	// DatabasePath is the data directory passed to the blob plugin. An empty
	// value keeps all records in memory
	DatabasePath    string `yaml:"databasePath"    split_words:"true"`
	BlobPlugin      string `yaml:"blobPlugin"      envconfig:"DATABASE_BLOB_PLUGIN"`
	ProgramId       string `yaml:"programId"       split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout" split_words:"true"`
	Tracing         bool   `yaml:"tracing"`
	TracingStdout   bool   `yaml:"tracingStdout"   split_words:"true"`
}

// ParsedProgramId returns the configured program ID, or the default program
// ID when none is set
func (c *Config) ParsedProgramId() (address.ProgramId, error) {
	if c.ProgramId == "" {
		return address.DefaultProgramId, nil
	}
	programId, err := address.ParseAddress(c.ProgramId)
	if err != nil {
		return address.ProgramId{}, fmt.Errorf("invalid programId: %w", err)
	}
	return programId, nil
}

// ParsedShutdownTimeout returns the configured shutdown timeout
func (c *Config) ParsedShutdownTimeout() (time.Duration, error) {
	timeout := c.ShutdownTimeout
	if timeout == "" {
		timeout = DefaultShutdownTimeout
	}
	ret, err := time.ParseDuration(timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout: %w", err)
	}
	return ret, nil
}

var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    DefaultDatabasePath,
		BlobPlugin:      DefaultBlobPlugin,
		ProgramId:       "",
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.ballot/ballot.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".ballot", "ballot.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/ballot/ballot.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/ballot/ballot.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		if err := loadConfigFile(configFile); err != nil {
			return nil, err
		}
	}
	// Process environment variables
	err := envconfig.Process("ballot", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars()
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	if _, err := globalConfig.ParsedProgramId(); err != nil {
		return nil, err
	}
	if _, err := globalConfig.ParsedShutdownTimeout(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func loadConfigFile(configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	// If config section exists, use it for main config
	if tempCfg.Config != nil {
		// Overlay config values onto existing defaults
		configBytes, err := yaml.Marshal(tempCfg.Config)
		if err != nil {
			return fmt.Errorf("error re-marshalling config: %w", err)
		}
		if err := yaml.Unmarshal(configBytes, globalConfig); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else {
		// Otherwise unmarshal the whole file as main config
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Process plugin configurations
	blobConfig := make(map[string]map[string]any)
	maps.Copy(blobConfig, tempCfg.Blob)
	if tempCfg.Database != nil && tempCfg.Database.Blob != nil {
		// Extract plugin name if specified
		if pluginVal, exists := tempCfg.Database.Blob["plugin"]; exists {
			if pluginName, ok := pluginVal.(string); ok {
				globalConfig.BlobPlugin = pluginName
				delete(tempCfg.Database.Blob, "plugin")
			}
		}
		for k, v := range tempCfg.Database.Blob {
			switch val := v.(type) {
			case map[string]any:
				blobConfig[k] = val
			case map[any]any:
				// Convert map[any]any to map[string]any
				stringAnyMap := make(map[string]any)
				for vk, vv := range val {
					if keyStr, ok := vk.(string); ok {
						stringAnyMap[keyStr] = vv
					}
				}
				blobConfig[k] = stringAnyMap
			default:
				fmt.Fprintf(
					os.Stderr,
					"warning: skipping blob config entry %q: expected map, got %T\n",
					k,
					v,
				)
			}
		}
	}
	if len(blobConfig) > 0 {
		err := plugin.ProcessConfig(
			map[string]map[string]map[string]any{
				plugin.PluginTypeName(plugin.PluginTypeBlob): blobConfig,
			},
		)
		if err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

func GetConfig() *Config {
	return globalConfig
}
