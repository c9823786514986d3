package jsonrpc

import "encoding/json"

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

// Standard JSON-RPC error codes, plus the application range.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeAppError       = -32000
)

// CallParams are the parameters of the call method.
type CallParams struct {
	SignerID  string          `json:"signer_id"`
	ProgramID string          `json:"program_id"`
	Method    string          `json:"method"`
	Args      json.RawMessage `json:"args,omitempty"`
	// Deposit is a decimal string to survive JSON number precision.
	Deposit string `json:"deposit,omitempty"`
}

// ViewParams are the parameters of the view method.
type ViewParams struct {
	ProgramID string          `json:"program_id"`
	Method    string          `json:"method"`
	Args      json.RawMessage `json:"args,omitempty"`
}

// BalanceParams are the parameters of the balance method.
type BalanceParams struct {
	AccountID string `json:"account_id"`
}

// CallResult is the response of the call method.
type CallResult struct {
	Result json.RawMessage `json:"result"`
}

// ViewResult is the response of the view method.
type ViewResult struct {
	Result json.RawMessage `json:"result"`
}
