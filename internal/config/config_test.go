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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalConfig() {
	globalConfig = defaultConfig()
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "ballot.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o600))
	return tmpFile
}

// registerTestPlugin registers a blob plugin with a single option and returns
// a pointer to the option value
func registerTestPlugin(t *testing.T) *string {
	t.Helper()
	var dest string
	plugin.Register(plugin.PluginEntry{
		Type:        plugin.PluginTypeBlob,
		Name:        "configtest",
		Description: "config test plugin",
		Options: []plugin.PluginOption{
			{
				Name:         "data-dir",
				Type:         plugin.PluginOptionTypeString,
				DefaultValue: "",
				Dest:         &dest,
			},
		},
	})
	return &dest
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	tmpFile := writeConfigFile(t, `
databasePath: "/var/lib/ballot"
blobPlugin: "sqlite"
shutdownTimeout: "10s"
tracing: true
tracingStdout: true
`)
	expected := &Config{
		DatabasePath:    "/var/lib/ballot",
		BlobPlugin:      "sqlite",
		ProgramId:       "",
		ShutdownTimeout: "10s",
		Tracing:         true,
		TracingStdout:   true,
	}
	actual, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	timeout, err := actual.ParsedShutdownTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestLoad_ConfigSection(t *testing.T) {
	resetGlobalConfig()
	tmpFile := writeConfigFile(t, `
config:
  databasePath: "/data"
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.DatabasePath)
	// Unset values keep their defaults
	assert.Equal(t, DefaultBlobPlugin, cfg.BlobPlugin)
}

func TestLoad_DatabasePluginSection(t *testing.T) {
	resetGlobalConfig()
	dest := registerTestPlugin(t)
	tmpFile := writeConfigFile(t, `
database:
  blob:
    plugin: configtest
    configtest:
      data-dir: /tmp/configtest
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "configtest", cfg.BlobPlugin)
	assert.Equal(t, "/tmp/configtest", *dest)
}

func TestLoad_Env(t *testing.T) {
	resetGlobalConfig()
	t.Setenv("BALLOT_DATABASE_PATH", "/env/path")
	t.Setenv("BALLOT_DATABASE_BLOB_PLUGIN", "postgres")
	cfg, err := LoadConfig(writeConfigFile(t, "databasePath: /file/path\n"))
	require.NoError(t, err)
	assert.Equal(t, "/env/path", cfg.DatabasePath)
	assert.Equal(t, "postgres", cfg.BlobPlugin)
}

func TestLoad_ProgramId(t *testing.T) {
	resetGlobalConfig()
	programId := address.ProgramId{0x01, 0x02}
	cfg, err := LoadConfig(
		writeConfigFile(t, "programId: "+programId.String()+"\n"),
	)
	require.NoError(t, err)
	parsed, err := cfg.ParsedProgramId()
	require.NoError(t, err)
	assert.Equal(t, programId, parsed)

	resetGlobalConfig()
	_, err = LoadConfig(writeConfigFile(t, "programId: not-an-address\n"))
	require.Error(t, err)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	resetGlobalConfig()
	_, err := LoadConfig(writeConfigFile(t, "shutdownTimeout: soon\n"))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	resetGlobalConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultProgramId(t *testing.T) {
	cfg := defaultConfig()
	programId, err := cfg.ParsedProgramId()
	require.NoError(t, err)
	assert.Equal(t, address.DefaultProgramId, programId)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := defaultConfig()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
