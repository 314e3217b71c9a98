package store

import "strconv"

// Pointer keys. Everything else in the store is a block hash, a decimal
// height or a tx: entry.
const (
	KeyLast  = "LAST"
	KeyFirst = "FIRST"
)

// heightKey addresses index[height], which holds the hash of the block at
// height+1. The entry is written when that child is appended.
func heightKey(height uint64) []byte {
	return []byte(strconv.FormatUint(height, 10))
}

func blockKey(hash string) []byte {
	return []byte(hash)
}

// txKey maps a transaction id to the hash of the block that carries it.
func txKey(id string) []byte {
	return []byte(txKeyPrefix + id)
}

const txKeyPrefix = "tx:"
