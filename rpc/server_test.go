package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"chainx/config"
	"chainx/core"
	"chainx/core/chain"
	"chainx/core/genesis"
	"chainx/core/state"
	"chainx/storage"
)

const (
	firstAccount = "0x0101010101010101010101010101010101010101010101010101010101010101"
	unknownHash  = "0x1111111111111111111111111111111111111111111111111111111111111111"
)

func newTestServer(t *testing.T, cfg config.RPC, secret []byte) http.Handler {
	t.Helper()
	spec, err := genesis.LoadSpec("../core/genesis/testdata/devnet.yaml")
	require.NoError(t, err)
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	blocks, err := chain.NewStore(db, chain.DefaultHeaderCacheSize)
	require.NoError(t, err)
	_, err = genesis.Commit(spec, db, blocks)
	require.NoError(t, err)

	querier := core.NewQuerier(state.NewProvider(db, blocks))
	return NewServer(querier, cfg, secret, nil).Handler()
}

type testResponse struct {
	ID     interface{}     `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func call(t *testing.T, h http.Handler, method string, args ...interface{}) (int, testResponse) {
	t.Helper()
	if args == nil {
		args = []interface{}{}
	}
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  args,
	})
	require.NoError(t, err)
	return post(t, h, string(body), nil)
}

func post(t *testing.T, h http.Handler, body string, header http.Header) (int, testResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestQueryMethods(t *testing.T) {
	h := newTestServer(t, config.RPC{}, nil)

	status, resp := call(t, h, "chainx_getTradingPairs")
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)
	var pairs []struct {
		BuyOne  uint64 `json:"buyOne"`
		SellOne uint64 `json:"sellOne"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &pairs))
	require.Len(t, pairs, 1)
	require.Equal(t, uint64(99), pairs[0].BuyOne)
	require.Equal(t, uint64(101), pairs[0].SellOne)

	status, resp = call(t, h, "chainx_getOrders", firstAccount, 0, 1)
	require.Equal(t, http.StatusOK, status)
	var orders struct {
		PageTotal uint32            `json:"pageTotal"`
		Data      []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &orders))
	require.Equal(t, uint32(2), orders.PageTotal)
	require.Len(t, orders.Data, 1)

	status, resp = call(t, h, "chainx_getNextRenominateByAccount", firstAccount)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, "107", string(resp.Result))

	status, resp = call(t, h, "chainx_getTrusteeSessionInfo", "Bitcoin")
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)

	status, resp = call(t, h, "chainx_getWithdrawTx", "Ethereum")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, "null", string(resp.Result))

	status, resp = call(t, h, "chainx_verifyAddressValidity", "BTC", "not-an-address", "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, "false", string(resp.Result))
}

func TestHeaderAtBlock(t *testing.T) {
	h := newTestServer(t, config.RPC{}, nil)

	status, resp := call(t, h, "chain_getHeader")
	require.Equal(t, http.StatusOK, status)
	var head struct {
		Hash   string `json:"hash"`
		Height uint64 `json:"height"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &head))
	require.Equal(t, uint64(0), head.Height)

	status, resp = call(t, h, "chain_getHeader", head.Hash)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)

	status, resp = call(t, h, "chainx_getTradingPairs", nil)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)
}

func TestHeaderByNumber(t *testing.T) {
	h := newTestServer(t, config.RPC{}, nil)

	_, resp := call(t, h, "chain_getHeader")
	var head struct {
		Hash   string `json:"hash"`
		Height uint64 `json:"height"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &head))

	for _, method := range []string{"chain_getHeaderByNumber", "chainx_getBlockByNumber"} {
		for _, args := range [][]interface{}{nil, {nil}, {0}} {
			status, resp := call(t, h, method, args...)
			require.Equal(t, http.StatusOK, status, method)
			require.Nil(t, resp.Error, method)
			var got struct {
				Hash   string `json:"hash"`
				Height uint64 `json:"height"`
			}
			require.NoError(t, json.Unmarshal(resp.Result, &got))
			require.Equal(t, head.Hash, got.Hash, method)
			require.Equal(t, uint64(0), got.Height, method)
		}

		status, resp := call(t, h, method, 7)
		require.Equal(t, http.StatusOK, status)
		require.Nil(t, resp.Error)
		require.Equal(t, "null", string(resp.Result))
	}
}

func TestErrorCodes(t *testing.T) {
	h := newTestServer(t, config.RPC{}, nil)

	cases := []struct {
		name   string
		method string
		args   []interface{}
		status int
		code   int
	}{
		{"unknown method", "chainx_nope", nil, http.StatusNotFound, codeMethodNotFound},
		{"missing params", "chainx_getQuotations", []interface{}{0}, http.StatusBadRequest, codeInvalidParams},
		{"too many params", "chainx_getTradingPairs", []interface{}{nil, nil}, http.StatusBadRequest, codeInvalidParams},
		{"bad account", "chainx_getOrders", []interface{}{"0x01", 0, 1}, http.StatusBadRequest, codeInvalidParams},
		{"bad chain", "chainx_getWithdrawTx", []interface{}{"Dogecoin"}, http.StatusBadRequest, codeInvalidParams},
		{"zero piece", "chainx_getQuotations", []interface{}{0, 0}, http.StatusBadRequest, codeInvalidParams},
		{"unknown pair", "chainx_getQuotations", []interface{}{9, 1}, http.StatusNotFound, codeNotFound},
		{"page size", "chainx_getAssets", []interface{}{0, 0}, http.StatusBadRequest, codeInvalidParams},
		{"page index", "chainx_getAssets", []interface{}{5, 10}, http.StatusBadRequest, codeInvalidParams},
		{"unsupported chain", "chainx_getAddressByAccount", []interface{}{firstAccount, "Polkadot"}, http.StatusBadRequest, codeInvalidParams},
		{"fee without prefix", "chainx_getFeeByCallAndLength", []interface{}{"c1", 10}, http.StatusBadRequest, codeInvalidParams},
		{"fee bad hex", "chainx_getFeeByCallAndLength", []interface{}{"0xzz", 10}, http.StatusBadRequest, codeInvalidParams},
		{"fee undecodable", "chainx_getFeeByCallAndLength", []interface{}{"0xc1", 10}, http.StatusInternalServerError, codeDecode},
		{"deprecated", "chainx_getPseduNominationRecords", []interface{}{firstAccount}, http.StatusGone, codeDeprecated},
		{"unknown block", "chainx_getTradingPairs", []interface{}{unknownHash}, http.StatusNotFound, codeNotFound},
		{"bad block number", "chain_getHeaderByNumber", []interface{}{"tip"}, http.StatusBadRequest, codeInvalidParams},
		{"block number with hash", "chainx_getBlockByNumber", []interface{}{0, unknownHash}, http.StatusBadRequest, codeInvalidParams},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := call(t, h, tc.method, tc.args...)
			require.Equal(t, tc.status, status)
			require.NotNil(t, resp.Error)
			require.Equal(t, tc.code, resp.Error.Code)
			require.Nil(t, resp.Result)
		})
	}
}

func TestCorruptHeaderIsDecodeError(t *testing.T) {
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	hash := common.HexToHash("0xbad")
	require.NoError(t, db.Put([]byte("chainx/head"), hash.Bytes()))
	require.NoError(t, db.Put(append([]byte("chainx/header/"), hash.Bytes()...), []byte{0xff, 0x01}))
	blocks, err := chain.NewStore(db, 4)
	require.NoError(t, err)
	h := NewServer(core.NewQuerier(state.NewProvider(db, blocks)), config.RPC{}, nil, nil).Handler()

	for _, method := range []string{"chain_getHeader", "chain_getHeaderByNumber"} {
		status, resp := call(t, h, method)
		require.Equal(t, http.StatusInternalServerError, status, method)
		require.NotNil(t, resp.Error, method)
		require.Equal(t, codeDecode, resp.Error.Code, method)
	}
}

func TestDeprecatedNamesReplacement(t *testing.T) {
	h := newTestServer(t, config.RPC{}, nil)
	_, resp := call(t, h, "chainx_getPseduNominationRecords", firstAccount)
	require.NotNil(t, resp.Error)
	require.Equal(t, "chainx_getPseduNominationRecordsV1", resp.Error.Data)

	status, resp := call(t, h, "chainx_getPseduNominationRecordsV1", firstAccount)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)
}

func TestMalformedRequests(t *testing.T) {
	h := newTestServer(t, config.RPC{MaxRequestBytes: 64}, nil)

	status, resp := post(t, h, "{", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeParseError, resp.Error.Code)

	status, resp = post(t, h, "  ", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeInvalidRequest, resp.Error.Code)

	status, resp = post(t, h, `{"jsonrpc":"1.0","id":1,"method":"chain_getHeader"}`, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeInvalidRequest, resp.Error.Code)

	status, resp = post(t, h, fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"chain_getHeader","params":[%q]}`, strings.Repeat("a", 80)), nil)
	require.Equal(t, http.StatusRequestEntityTooLarge, status)
	require.Equal(t, codeInvalidRequest, resp.Error.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, config.RPC{RateLimitPerSecond: 0.001, RateBurst: 1}, nil)

	status, _ := call(t, h, "chain_getHeader")
	require.Equal(t, http.StatusOK, status)
	status, resp := call(t, h, "chain_getHeader")
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, codeRateLimited, resp.Error.Code)
}

func TestRateLimitKeysForwardedClients(t *testing.T) {
	h := newTestServer(t, config.RPC{RateLimitPerSecond: 0.001, RateBurst: 1, TrustProxyHeaders: true}, nil)
	body := `{"jsonrpc":"2.0","id":1,"method":"chain_getHeader","params":[]}`

	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		status, _ := post(t, h, body, http.Header{"X-Forwarded-For": {client + ", 10.0.0.1"}})
		require.Equal(t, http.StatusOK, status)
	}
	status, _ := post(t, h, body, http.Header{"X-Forwarded-For": {"203.0.113.1"}})
	require.Equal(t, http.StatusTooManyRequests, status)
}

func TestJWTAuth(t *testing.T) {
	secret := []byte("test-secret")
	h := newTestServer(t, config.RPC{JWT: config.JWT{Enable: true, Issuer: "chainx", Audience: "rpc"}}, secret)
	body := `{"jsonrpc":"2.0","id":7,"method":"chain_getHeader","params":[]}`

	status, resp := post(t, h, body, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	sign := func(claims jwt.MapClaims, key []byte) http.Header {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
		require.NoError(t, err)
		return http.Header{"Authorization": {"Bearer " + token}}
	}
	exp := time.Now().Add(time.Hour).Unix()

	status, _ = post(t, h, body, sign(jwt.MapClaims{"iss": "chainx", "aud": "rpc", "exp": exp}, []byte("other")))
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = post(t, h, body, sign(jwt.MapClaims{"iss": "someone", "aud": "rpc", "exp": exp}, secret))
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = post(t, h, body, sign(jwt.MapClaims{"iss": "chainx", "aud": "rpc", "exp": time.Now().Add(-time.Hour).Unix()}, secret))
	require.Equal(t, http.StatusUnauthorized, status)

	status, resp = post(t, h, body, sign(jwt.MapClaims{"iss": "chainx", "aud": []string{"rpc"}, "sub": "ops", "exp": exp}, secret))
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)
	require.EqualValues(t, 7, resp.ID)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, config.RPC{}, nil)
	call(t, h, "chain_getHeader")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	raw, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), `chainx_query_requests_total{method="chain_getHeader",outcome="success"}`)
}

func TestHealthWithoutHead(t *testing.T) {
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	blocks, err := chain.NewStore(db, 16)
	require.NoError(t, err)
	h := NewServer(core.NewQuerier(state.NewProvider(db, blocks)), config.RPC{}, nil, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
