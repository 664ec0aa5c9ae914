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

package blob

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

// BlobStore is a transactional key-value store. All reads and writes happen
// inside a transaction, and all writes of a transaction are committed
// atomically or not at all
type BlobStore interface {
	plugin.Plugin
	Close() error
	NewTransaction(readWrite bool) types.Txn
	Get(txn types.Txn, key []byte) ([]byte, error)
	Set(txn types.Txn, key, val []byte) error
	Delete(txn types.Txn, key []byte) error
}

// Configurable is implemented by plugins that accept a logger and metrics
// registry before they are started
type Configurable interface {
	Configure(logger *slog.Logger, promRegistry prometheus.Registerer)
}

// New returns the started blob plugin selected by name
func New(
	pluginName string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (BlobStore, error) {
	p := plugin.GetPlugin(plugin.PluginTypeBlob, pluginName)
	if p == nil {
		return nil, fmt.Errorf("blob plugin '%s' not found", pluginName)
	}
	blobStore, ok := p.(BlobStore)
	if !ok {
		// Plugins that failed construction report their error from Start()
		if err := p.Start(); err != nil {
			return nil, fmt.Errorf(
				"failed to start blob plugin '%s': %w",
				pluginName,
				err,
			)
		}
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}
	if c, ok := p.(Configurable); ok {
		c.Configure(logger, promRegistry)
	}
	if err := blobStore.Start(); err != nil {
		return nil, fmt.Errorf(
			"failed to start blob plugin '%s': %w",
			pluginName,
			err,
		)
	}
	return blobStore, nil
}
