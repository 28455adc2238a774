package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	gethleveldb "github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	// ErrNotFound is returned by Get when the key is not present.
	ErrNotFound = errors.New("storage: key not found")
	// ErrDecode marks a stored value that does not decode into the shape its
	// reader expects.
	ErrDecode = errors.New("storage: decode failed")
)

// Database is a generic interface for the key-value store backing the chain
// index and the state trie nodes. Implementations must support concurrent
// readers.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// TrieDB returns the trie node database shared by every state snapshot
	// opened on this store.
	TrieDB() *triedb.Database
	Close() // A way to gracefully shut down the database connection.
}

// kvStore adapts an ethdb.Database so the chain index and trie nodes share one
// physical store.
type kvStore struct {
	db ethdb.Database

	trieOnce sync.Once
	trieDB   *triedb.Database
}

func (s *kvStore) Put(key []byte, value []byte) error {
	return s.db.Put(key, value)
}

func (s *kvStore) Get(key []byte) ([]byte, error) {
	ok, err := s.db.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	value, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *kvStore) Has(key []byte) (bool, error) {
	return s.db.Has(key)
}

func (s *kvStore) TrieDB() *triedb.Database {
	s.trieOnce.Do(func() {
		s.trieDB = triedb.NewDatabase(s.db, triedb.HashDefaults)
	})
	return s.trieDB
}

// --- In-Memory DB (for testing) ---

type MemDB struct {
	kvStore
}

func NewMemDB() *MemDB {
	return &MemDB{kvStore: kvStore{db: rawdb.NewDatabase(memorydb.New())}}
}

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() {
	_ = db.db.Close()
}

// --- Persistent DB ---

const (
	levelDBCacheMB   = 256
	levelDBHandles   = 512
	levelDBNamespace = "chainx/db/"
)

// LevelDB is a persistent key-value store using LevelDB.
type LevelDB struct {
	kvStore
	path string
}

// NewLevelDB opens the LevelDB database at the specified path. Query nodes
// open it read-only so a running block producer keeps exclusive write access.
func NewLevelDB(path string, readonly bool) (*LevelDB, error) {
	kv, err := gethleveldb.New(path, levelDBCacheMB, levelDBHandles, levelDBNamespace, readonly)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelDB{kvStore: kvStore{db: rawdb.NewDatabase(kv)}, path: path}, nil
}

// Path returns the directory the database was opened from.
func (ldb *LevelDB) Path() string {
	return ldb.path
}

// Close closes the database connection.
func (ldb *LevelDB) Close() {
	if ldb.trieDB != nil {
		_ = ldb.trieDB.Close()
	}
	_ = ldb.db.Close()
}
