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

package badger

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/ballot/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...BlobStoreBadgerOptionFunc) *BlobStoreBadger {
	t.Helper()
	opts = append([]BlobStoreBadgerOptionFunc{WithDataDir("")}, opts...)
	store := New(opts...)
	require.NoError(t, store.Start())
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("unexpected error closing store: %s", err)
		}
	})
	return store
}

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	b := New(
		WithDataDir("/tmp/combined"),
		WithBlockCacheSize(1000000),
		WithIndexCacheSize(2000000),
		WithGc(false),
		WithGcInterval(60),
		WithLogger(logger),
		WithPromRegistry(registry),
	)
	assert.Equal(t, "/tmp/combined", b.dataDir)
	assert.Equal(t, uint64(1000000), b.blockCacheSize)
	assert.Equal(t, uint64(2000000), b.indexCacheSize)
	assert.False(t, b.gcEnabled)
	assert.Equal(t, uint64(60), b.gcIntervalSeconds)
	assert.Same(t, logger, b.logger)
	assert.Equal(t, registry, b.promRegistry)
}

func TestDefaults(t *testing.T) {
	b := New()
	assert.True(t, b.gcEnabled)
	assert.Equal(t, uint64(DefaultBlockCacheSize), b.blockCacheSize)
	assert.Equal(t, uint64(DefaultIndexCacheSize), b.indexCacheSize)
	assert.Equal(t, uint64(DefaultGcIntervalSeconds), b.gcIntervalSeconds)
}

func TestSetGetCommit(t *testing.T) {
	store := newTestStore(t)
	key := []byte("key")
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte("value")))
	// Read-your-writes within the transaction
	val, err := store.Get(txn, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	val, err = store.Get(readTxn, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	key := []byte("key")
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte("value")))
	require.NoError(t, txn.Rollback())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	_, err := store.Get(readTxn, key)
	require.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestReadOnlyTxnRejectsWrites(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	require.ErrorIs(t, store.Set(txn, []byte("key"), []byte("value")), types.ErrTxnReadOnly)
	require.ErrorIs(t, store.Delete(txn, []byte("key")), types.ErrTxnReadOnly)
}

func TestFinishedTxnRejected(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, txn.Commit())
	_, err := store.Get(txn, []byte("key"))
	require.ErrorIs(t, err, types.ErrTxnFinished)
	// Repeated commit/rollback are no-ops
	require.NoError(t, txn.Commit())
	require.NoError(t, txn.Rollback())
}

func TestForeignTxnRejected(t *testing.T) {
	store := newTestStore(t)
	other := newTestStore(t)
	txn := other.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store.Get(txn, []byte("key"))
	require.Error(t, err)
	_, err = store.Get(nil, []byte("key"))
	require.ErrorIs(t, err, types.ErrNilTxn)
}

func TestConflictDetected(t *testing.T) {
	store := newTestStore(t)
	key := []byte("counter")
	setup := store.NewTransaction(true)
	require.NoError(t, store.Set(setup, key, []byte{0}))
	require.NoError(t, setup.Commit())

	txn1 := store.NewTransaction(true)
	txn2 := store.NewTransaction(true)
	_, err := store.Get(txn1, key)
	require.NoError(t, err)
	_, err = store.Get(txn2, key)
	require.NoError(t, err)
	require.NoError(t, store.Set(txn2, key, []byte{2}))
	require.NoError(t, txn2.Commit())
	require.NoError(t, store.Set(txn1, key, []byte{1}))
	err = txn1.Commit()
	if !errors.Is(err, types.ErrTxnConflict) {
		t.Fatalf("expected ErrTxnConflict, got: %v", err)
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	store := newTestStore(t)
	key := []byte("key")
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte("value")))
	require.NoError(t, txn.Commit())
	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, key))
	require.NoError(t, txn.Commit())
	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	_, err := store.Get(readTxn, key)
	require.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestOnDiskStoreAndMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	dataDir := t.TempDir()
	store := New(
		WithDataDir(dataDir),
		WithPromRegistry(registry),
		WithGcInterval(1),
	)
	require.NoError(t, store.Start())
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Commit())
	count, err := testutil.GatherAndCount(
		registry,
		blobMetricNamePrefix+"lsm_size_bytes",
		blobMetricNamePrefix+"vlog_size_bytes",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, store.Close())

	// Data survives reopening
	store = New(WithDataDir(dataDir), WithGc(false))
	require.NoError(t, store.Start())
	defer store.Close()
	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	val, err := store.Get(readTxn, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
}
