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

package sqlite_test

import (
	"testing"

	"github.com/blinklabs-io/ballot/database/plugin/blob/sqlite"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, dataDir string) *sqlite.BlobStoreSqlite {
	t.Helper()
	store := sqlite.New(sqlite.WithDataDir(dataDir))
	require.NoError(t, store.Start())
	return store
}

func TestSetGetCommit(t *testing.T) {
	store := newTestStore(t, "")
	defer store.Close()
	key := []byte("key")

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte("value")))
	// Read-your-writes within the transaction
	val, err := store.Get(txn, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	// Overwrite within the same transaction
	require.NoError(t, store.Set(txn, key, []byte("value2")))
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	val, err = store.Get(readTxn, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value2"), val)
	require.NoError(t, readTxn.Commit())
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t, "")
	defer store.Close()
	key := []byte("key")

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte("value")))
	require.NoError(t, txn.Rollback())

	readTxn := store.NewTransaction(false)
	_, err := store.Get(readTxn, key)
	require.ErrorIs(t, err, types.ErrRecordNotFound)
	require.NoError(t, readTxn.Rollback())
}

func TestReadOnlyTxnRejectsWrites(t *testing.T) {
	store := newTestStore(t, "")
	defer store.Close()
	txn := store.NewTransaction(false)
	require.ErrorIs(t, store.Set(txn, []byte("key"), []byte("value")), types.ErrTxnReadOnly)
	require.ErrorIs(t, store.Delete(txn, []byte("key")), types.ErrTxnReadOnly)
	require.NoError(t, txn.Rollback())
	_, err := store.Get(txn, []byte("key"))
	require.ErrorIs(t, err, types.ErrTxnFinished)
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	store1 := newTestStore(t, "")
	defer store1.Close()
	store2 := newTestStore(t, "")
	defer store2.Close()

	txn := store1.NewTransaction(true)
	require.NoError(t, store1.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Commit())

	readTxn := store2.NewTransaction(false)
	_, err := store2.Get(readTxn, []byte("key"))
	require.ErrorIs(t, err, types.ErrRecordNotFound)
	require.NoError(t, readTxn.Rollback())
}

func TestOnDiskPersistence(t *testing.T) {
	dataDir := t.TempDir()
	store := newTestStore(t, dataDir)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	store = newTestStore(t, dataDir)
	defer store.Close()
	readTxn := store.NewTransaction(false)
	val, err := store.Get(readTxn, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	require.NoError(t, readTxn.Rollback())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("key")))
	require.NoError(t, txn.Commit())
	readTxn = store.NewTransaction(false)
	_, err = store.Get(readTxn, []byte("key"))
	require.ErrorIs(t, err, types.ErrRecordNotFound)
	require.NoError(t, readTxn.Rollback())
}
