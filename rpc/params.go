package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"chainx/core/types"
)

// params wraps the positional parameters of a request. Every method accepts
// its fixed parameters followed by an optional block hash.
type params []json.RawMessage

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// expect checks the parameter count against n fixed parameters and returns
// the optional trailing block hash.
func (p params) expect(n int) (*common.Hash, error) {
	if len(p) < n {
		return nil, invalidParams(fmt.Sprintf("expected at least %d parameters, got %d", n, len(p)))
	}
	if len(p) > n+1 {
		return nil, invalidParams(fmt.Sprintf("expected at most %d parameters, got %d", n+1, len(p)))
	}
	if len(p) == n || isNull(p[n]) {
		return nil, nil
	}
	var hash common.Hash
	if err := json.Unmarshal(p[n], &hash); err != nil {
		return nil, invalidParams(fmt.Sprintf("invalid block hash: %v", err))
	}
	return &hash, nil
}

func (p params) decode(i int, name string, dst interface{}) error {
	if i >= len(p) || isNull(p[i]) {
		return invalidParams(fmt.Sprintf("%s required", name))
	}
	if err := json.Unmarshal(p[i], dst); err != nil {
		return invalidParams(fmt.Sprintf("invalid %s: %v", name, err))
	}
	return nil
}

func (p params) account(i int, name string) (types.AccountID, error) {
	var who types.AccountID
	err := p.decode(i, name, &who)
	return who, err
}

func (p params) chain(i int) (types.Chain, error) {
	var chain types.Chain
	err := p.decode(i, "chain", &chain)
	return chain, err
}

func (p params) uint32(i int, name string) (uint32, error) {
	var v uint32
	err := p.decode(i, name, &v)
	return v, err
}

func (p params) uint64(i int, name string) (uint64, error) {
	var v uint64
	err := p.decode(i, name, &v)
	return v, err
}

func (p params) string(i int, name string) (string, error) {
	var v string
	err := p.decode(i, name, &v)
	return v, err
}

// optionalUint32 returns nil for an absent or null parameter.
func (p params) optionalUint32(i int, name string) (*uint32, error) {
	if i >= len(p) || isNull(p[i]) {
		return nil, nil
	}
	var v uint32
	if err := json.Unmarshal(p[i], &v); err != nil {
		return nil, invalidParams(fmt.Sprintf("invalid %s: %v", name, err))
	}
	return &v, nil
}

// optionalUint64 returns nil for an absent or null parameter.
func (p params) optionalUint64(i int, name string) (*uint64, error) {
	if i >= len(p) || isNull(p[i]) {
		return nil, nil
	}
	var v uint64
	if err := json.Unmarshal(p[i], &v); err != nil {
		return nil, invalidParams(fmt.Sprintf("invalid %s: %v", name, err))
	}
	return &v, nil
}

// pageArgs reads pageIndex and pageSize at i and i+1.
func (p params) pageArgs(i int) (uint32, uint32, error) {
	index, err := p.uint32(i, "pageIndex")
	if err != nil {
		return 0, 0, err
	}
	size, err := p.uint32(i+1, "pageSize")
	if err != nil {
		return 0, 0, err
	}
	return index, size, nil
}
