package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"chainx/storage"
	"chainx/storage/trie"
)

// Writer stages cell values on top of a parent state root. It backs the
// fixture loader and tests; the query path only ever reads.
type Writer struct {
	trie *trie.Trie
}

// NewWriter opens a writer on top of parentRoot (zero for an empty state).
func NewWriter(db storage.Database, parentRoot common.Hash) (*Writer, error) {
	tr, err := trie.NewTrie(db, parentRoot)
	if err != nil {
		return nil, err
	}
	return &Writer{trie: tr}, nil
}

// Put encodes value and stores it under key.
func (w *Writer) Put(key Key, value any) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", key, err)
	}
	return w.PutRaw(key, encoded)
}

// PutRaw stores already encoded bytes under key.
func (w *Writer) PutRaw(key Key, raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("state: empty value for %s", key)
	}
	return w.trie.Update(key.Physical(), raw)
}

// Commit flushes staged values and returns the new state root.
func (w *Writer) Commit(parent common.Hash, height uint64) (common.Hash, error) {
	return w.trie.Commit(parent, height)
}
