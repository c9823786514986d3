package jsonrpc

import (
	"encoding/json"
	"strconv"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

// Handler dispatches host-facing JSON-RPC methods.
type Handler struct {
	host    *runtime.Host
	methods map[string]func(json.RawMessage) (interface{}, error)
}

// NewHandler initializes a Handler serving the given host.
func NewHandler(host *runtime.Host) *Handler {
	h := &Handler{
		host:    host,
		methods: make(map[string]func(json.RawMessage) (interface{}, error)),
	}

	h.methods["call"] = h.handleCall
	h.methods["view"] = h.handleView
	h.methods["logs"] = h.handleLogs
	h.methods["balance"] = h.handleBalance

	return h
}

// Handle dispatches a JSON-RPC method to the appropriate handler.
func (h *Handler) Handle(method string, params json.RawMessage) (interface{}, error) {
	handler, exists := h.methods[method]
	if !exists {
		return nil, &rpcError{Code: CodeMethodNotFound, Message: "method " + method + " not found"}
	}
	return handler(params)
}

type rpcError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *rpcError) Error() string { return e.Message }

func decodeParams(params json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(params, v); err != nil {
		return &rpcError{Code: CodeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	return nil
}

// appError wraps a program failure with its kind as error data.
func appError(err error) error {
	return &rpcError{
		Code:    CodeAppError,
		Message: err.Error(),
		Data:    map[string]string{"kind": runtime.KindOf(err).String()},
	}
}

func (h *Handler) handleCall(params json.RawMessage) (interface{}, error) {
	var p CallParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	var deposit uint64
	if p.Deposit != "" {
		var err error
		deposit, err = strconv.ParseUint(p.Deposit, 10, 64)
		if err != nil {
			return nil, &rpcError{Code: CodeInvalidParams, Message: "malformed deposit " + p.Deposit}
		}
	}
	result, err := h.host.Call(p.SignerID, p.ProgramID, p.Method, p.Args, deposit)
	if err != nil {
		return nil, appError(err)
	}
	return CallResult{Result: result}, nil
}

func (h *Handler) handleView(params json.RawMessage) (interface{}, error) {
	var p ViewParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	result, err := h.host.View(p.ProgramID, p.Method, p.Args)
	if err != nil {
		return nil, appError(err)
	}
	return ViewResult{Result: result}, nil
}

func (h *Handler) handleLogs(json.RawMessage) (interface{}, error) {
	return h.host.Logs(), nil
}

func (h *Handler) handleBalance(params json.RawMessage) (interface{}, error) {
	var p BalanceParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return strconv.FormatUint(h.host.Balance(p.AccountID), 10), nil
}
