package rpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"chainx/core"
	"chainx/core/page"
	"chainx/core/state"
	"chainx/native/spot"
)

const jsonRPCVersion = "2.0"

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeNotFound       = -32004
	codeRateLimited    = -32020
	codeDecode         = -32030
	codeDeprecated     = -32031
)

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// resultResponse always carries the result member, null included.
type resultResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// paramsError reports a malformed or missing parameter.
type paramsError struct {
	message string
}

func (e *paramsError) Error() string {
	return e.message
}

func invalidParams(message string) error {
	return &paramsError{message: message}
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := resultResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// classify maps a query failure to its HTTP status and JSON-RPC error.
func classify(err error) (int, *RPCError) {
	var (
		badParams  *paramsError
		deprecated *core.DeprecatedError
		runtime    *core.RuntimeError
		rpcErr     *RPCError
	)
	switch {
	case errors.As(err, &rpcErr):
		return http.StatusBadRequest, rpcErr
	case errors.As(err, &badParams):
		return http.StatusBadRequest, &RPCError{Code: codeInvalidParams, Message: badParams.message}
	case errors.Is(err, page.ErrPageSize),
		errors.Is(err, page.ErrPageIndex),
		errors.Is(err, spot.ErrQuotationsPiece),
		errors.Is(err, core.ErrUnsupportedChain),
		errors.Is(err, core.ErrHexPrefix),
		errors.Is(err, core.ErrHexDecode):
		return http.StatusBadRequest, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	case errors.Is(err, spot.ErrTradingPairIndex),
		errors.Is(err, state.ErrUnknownBlock):
		return http.StatusNotFound, &RPCError{Code: codeNotFound, Message: err.Error()}
	case errors.Is(err, state.ErrDecode):
		return http.StatusInternalServerError, &RPCError{Code: codeDecode, Message: err.Error()}
	case errors.As(err, &deprecated):
		return http.StatusGone, &RPCError{Code: codeDeprecated, Message: err.Error(), Data: deprecated.Method + "V1"}
	case errors.As(err, &runtime):
		return http.StatusInternalServerError, &RPCError{Code: codeServerError, Message: "runtime error", Data: runtime.Hex()}
	default:
		return http.StatusInternalServerError, &RPCError{Code: codeServerError, Message: err.Error()}
	}
}
