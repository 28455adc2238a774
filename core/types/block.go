package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// BlockHeader carries the metadata needed to locate the state committed by a
// block. Bodies are not stored by the query node.
type BlockHeader struct {
	Height     uint64      `json:"height"`
	Timestamp  uint64      `json:"timestamp"`
	ParentHash common.Hash `json:"parentHash"`
	StateRoot  common.Hash `json:"stateRoot"` // Merkle root of the global state after the block executed
}

// Hash returns the keccak256 digest of the RLP-encoded header. It serves as
// the block's unique identifier.
func (h *BlockHeader) Hash() common.Hash {
	encoded, err := rlp.EncodeToBytes(h)
	if err != nil {
		// Encoding a struct of fixed-size fields cannot fail.
		panic(err)
	}
	return crypto.Keccak256Hash(encoded)
}
