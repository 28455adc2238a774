package trie

import (
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	gethtrie "github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/trie/trienode"
	"github.com/ethereum/go-ethereum/triedb"

	"chainx/storage"
)

// EmptyRoot is the root hash of a trie without any entries.
var EmptyRoot = gethtypes.EmptyRootHash

// Trie wraps go-ethereum's trie implementation to expose a simplified API for
// the state layer while keeping access to the underlying trie database.
//
// Keys passed into Get/Update are physical storage keys; hashing of logical
// keys happens in core/state before they reach the trie.
//
// Trie is not safe for concurrent use. Readers open one Trie per request; the
// shared triedb.Database underneath is safe for concurrent reads.
type Trie struct {
	store  storage.Database
	trieDB *triedb.Database
	trie   *gethtrie.Trie
	root   common.Hash
}

// NewTrie opens a trie backed by the provided storage at root. The zero hash
// and EmptyRoot both denote the empty trie.
func NewTrie(store storage.Database, root common.Hash) (*Trie, error) {
	trieDB := store.TrieDB()
	if root == (common.Hash{}) {
		root = EmptyRoot
	}
	underlying, err := gethtrie.New(gethtrie.TrieID(root), trieDB)
	if err != nil {
		return nil, err
	}
	return &Trie{
		store:  store,
		trieDB: trieDB,
		trie:   underlying,
		root:   root,
	}, nil
}

// Get retrieves a value from the trie for the provided key. Absent keys yield
// a nil slice and a nil error.
func (t *Trie) Get(key []byte) ([]byte, error) {
	return t.trie.Get(key)
}

// Update inserts or updates a value in the trie for the provided key.
func (t *Trie) Update(key, value []byte) error {
	return t.trie.Update(key, value)
}

// Hash returns the root hash of the trie reflecting all in-memory mutations.
func (t *Trie) Hash() common.Hash {
	return t.trie.Hash()
}

// Root returns the last committed root hash.
func (t *Trie) Root() common.Hash {
	return t.root
}

// Commit persists the trie changes to the backing database and returns the new
// root hash. After committing the wrapper recreates the underlying trie so it
// can be reused for subsequent writes.
func (t *Trie) Commit(parent common.Hash, blockNumber uint64) (common.Hash, error) {
	newRoot, nodes := t.trie.Commit(false)
	if nodes != nil {
		merged := trienode.NewMergedNodeSet()
		if err := merged.Merge(nodes); err != nil {
			return common.Hash{}, err
		}
		if err := t.trieDB.Update(newRoot, parent, blockNumber, merged, nil); err != nil {
			return common.Hash{}, err
		}
		if err := t.trieDB.Commit(newRoot, false); err != nil {
			return common.Hash{}, err
		}
	}
	underlying, err := gethtrie.New(gethtrie.TrieID(newRoot), t.trieDB)
	if err != nil {
		return common.Hash{}, err
	}
	t.trie = underlying
	t.root = newRoot
	return newRoot, nil
}
