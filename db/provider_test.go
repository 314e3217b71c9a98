package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]DatabaseProvider {
	t.Helper()

	mem, err := NewMemLevelDBProvider()
	require.NoError(t, err)
	level, err := NewLevelDBProvider(filepath.Join(t.TempDir(), "level"))
	require.NoError(t, err)
	bolt, err := NewBoltProvider(filepath.Join(t.TempDir(), "bolt"))
	require.NoError(t, err)

	ps := map[string]DatabaseProvider{"leveldb-mem": mem, "leveldb": level, "bolt": bolt}
	t.Cleanup(func() {
		for _, p := range ps {
			p.Close()
		}
	})
	return ps
}

func TestProviderBasicOperations(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			v, err := p.Get([]byte("missing"))
			require.NoError(t, err)
			assert.Nil(t, v)

			ok, err := p.Has([]byte("missing"))
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, p.Put([]byte("k"), []byte("v1")))
			v, err = p.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), v)

			require.NoError(t, p.Put([]byte("k"), []byte("v2")))
			v, err = p.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), v)

			require.NoError(t, p.Delete([]byte("k")))
			ok, err = p.Has([]byte("k"))
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, p.Flush())
		})
	}
}

func TestBatchCommitAndDiscard(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			tm := NewDBTxManager(p)

			err := tm.WithBatch(func(batch DatabaseBatch) error {
				batch.Put([]byte("a"), []byte("1"))
				batch.Put([]byte("b"), []byte("2"))
				return nil
			})
			require.NoError(t, err)

			for key, want := range map[string]string{"a": "1", "b": "2"} {
				v, err := p.Get([]byte(key))
				require.NoError(t, err)
				assert.Equal(t, want, string(v))
			}

			boom := errors.New("boom")
			err = tm.WithBatch(func(batch DatabaseBatch) error {
				batch.Put([]byte("c"), []byte("3"))
				batch.Delete([]byte("a"))
				return boom
			})
			require.ErrorIs(t, err, boom)

			ok, err := p.Has([]byte("c"))
			require.NoError(t, err)
			assert.False(t, ok)
			ok, err = p.Has([]byte("a"))
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestProviderReopenKeepsData(t *testing.T) {
	dir := t.TempDir()

	p, err := NewBoltProvider(dir)
	require.NoError(t, err)
	require.NoError(t, p.Put([]byte("LAST"), []byte("abc")))
	require.NoError(t, p.Flush())
	require.NoError(t, p.Close())
	// second close is harmless
	require.NoError(t, p.Close())

	p, err = NewBoltProvider(dir)
	require.NoError(t, err)
	defer p.Close()

	v, err := p.Get([]byte("LAST"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestBoltValuesOutliveTransaction(t *testing.T) {
	p, err := NewBoltProvider(t.TempDir())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Put([]byte("k"), []byte("value")))
	v, err := p.Get([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, p.Put([]byte("k"), []byte("other")))
	assert.Equal(t, "value", string(v))
}

func TestRocksDBStubWithoutTag(t *testing.T) {
	if _, err := NewRocksDBProvider(t.TempDir()); err == nil {
		t.Skip("built with rocksdb tag")
	}
}
