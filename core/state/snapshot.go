package state

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"chainx/core/chain"
	"chainx/core/types"
	"chainx/storage"
	"chainx/storage/trie"
)

// ErrUnknownBlock is returned when a block reference cannot be resolved.
var ErrUnknownBlock = chain.ErrUnknownBlock

// Snapshot is a read-only view of the state as of one block.
type Snapshot interface {
	// Get returns the raw value stored under the physical key, or nil when
	// nothing is stored there.
	Get(key []byte) ([]byte, error)
	Root() common.Hash
	Header() *types.BlockHeader
}

// Provider resolves block references into snapshots.
type Provider struct {
	db    storage.Database
	chain *chain.Store
}

// NewProvider builds a snapshot provider over the shared trie database and
// block index.
func NewProvider(db storage.Database, blocks *chain.Store) *Provider {
	return &Provider{db: db, chain: blocks}
}

// Chain exposes the block index backing the provider.
func (p *Provider) Chain() *chain.Store {
	return p.chain
}

// At resolves ref to a snapshot. A nil ref selects the latest block. Each
// call opens its own trie handle so snapshots are never shared between
// callers.
func (p *Provider) At(ctx context.Context, ref *common.Hash) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		header *types.BlockHeader
		err    error
	)
	if ref == nil {
		header, err = p.chain.Head()
	} else {
		header, err = p.chain.Header(*ref)
	}
	if err != nil {
		return nil, err
	}
	tr, err := trie.NewTrie(p.db, header.StateRoot)
	if err != nil {
		return nil, fmt.Errorf("state: open trie at %s: %w", header.StateRoot.Hex(), err)
	}
	return &trieSnapshot{trie: tr, header: header}, nil
}

type trieSnapshot struct {
	trie   *trie.Trie
	header *types.BlockHeader
}

func (s *trieSnapshot) Get(key []byte) ([]byte, error) {
	data, err := s.trie.Get(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func (s *trieSnapshot) Root() common.Hash {
	return s.trie.Root()
}

func (s *trieSnapshot) Header() *types.BlockHeader {
	return s.header
}
