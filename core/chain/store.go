package chain

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru/v2"

	"chainx/core/types"
	"chainx/storage"
)

// ErrUnknownBlock is returned when a block reference does not resolve to a
// committed header.
var ErrUnknownBlock = errors.New("chain: unknown block")

// DefaultHeaderCacheSize bounds the header LRU when no size is configured.
const DefaultHeaderCacheSize = 1024

var (
	headerPrefix    = []byte("chainx/header/")
	canonicalPrefix = []byte("chainx/canonical/")
	headKey         = []byte("chainx/head")
)

func headerKey(hash common.Hash) []byte {
	buf := make([]byte, len(headerPrefix)+common.HashLength)
	copy(buf, headerPrefix)
	copy(buf[len(headerPrefix):], hash[:])
	return buf
}

func canonicalKey(height uint64) []byte {
	buf := make([]byte, len(canonicalPrefix)+8)
	copy(buf, canonicalPrefix)
	binary.BigEndian.PutUint64(buf[len(canonicalPrefix):], height)
	return buf
}

// Store indexes committed block headers by hash and height and tracks the head.
// Headers are immutable once written, so cached entries never go stale.
type Store struct {
	db      storage.Database
	headers *lru.Cache[common.Hash, *types.BlockHeader]
}

// NewStore creates a block index over db with an LRU of cacheSize headers.
func NewStore(db storage.Database, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultHeaderCacheSize
	}
	cache, err := lru.New[common.Hash, *types.BlockHeader](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("chain: header cache: %w", err)
	}
	return &Store{db: db, headers: cache}, nil
}

// Header returns the header with the given hash.
func (s *Store) Header(hash common.Hash) (*types.BlockHeader, error) {
	if header, ok := s.headers.Get(hash); ok {
		return header, nil
	}
	data, err := s.db.Get(headerKey(hash))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, hash.Hex())
		}
		return nil, err
	}
	header := new(types.BlockHeader)
	if err := rlp.DecodeBytes(data, header); err != nil {
		return nil, fmt.Errorf("%w: header %s: %v", storage.ErrDecode, hash.Hex(), err)
	}
	s.headers.Add(hash, header)
	return header, nil
}

// HeaderByHeight returns the canonical header at height.
func (s *Store) HeaderByHeight(height uint64) (*types.BlockHeader, error) {
	data, err := s.db.Get(canonicalKey(height))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: height %d", ErrUnknownBlock, height)
		}
		return nil, err
	}
	return s.Header(common.BytesToHash(data))
}

// Head returns the latest committed header.
func (s *Store) Head() (*types.BlockHeader, error) {
	data, err := s.db.Get(headKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no head committed", ErrUnknownBlock)
		}
		return nil, err
	}
	return s.Header(common.BytesToHash(data))
}

// Commit records header as canonical at its height and advances the head.
// It is used by the fixture loader and tests; the query path never writes.
func (s *Store) Commit(header *types.BlockHeader) (common.Hash, error) {
	if header == nil {
		return common.Hash{}, fmt.Errorf("chain: header required")
	}
	encoded, err := rlp.EncodeToBytes(header)
	if err != nil {
		return common.Hash{}, err
	}
	hash := header.Hash()
	if err := s.db.Put(headerKey(hash), encoded); err != nil {
		return common.Hash{}, err
	}
	if err := s.db.Put(canonicalKey(header.Height), hash.Bytes()); err != nil {
		return common.Hash{}, err
	}
	if err := s.db.Put(headKey, hash.Bytes()); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}
