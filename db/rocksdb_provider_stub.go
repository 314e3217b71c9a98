//go:build !rocksdb
// +build !rocksdb

package db

import "fmt"

// NewRocksDBProvider returns an error when the binary was built without RocksDB
func NewRocksDBProvider(directory string) (DatabaseProvider, error) {
	return nil, fmt.Errorf("RocksDB support not compiled in. Build with -tags rocksdb to enable RocksDB support")
}
