package jsonrpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Server represents a JSON-RPC server.
type Server struct {
	handler *Handler
	log     *zap.Logger
}

// NewServer creates a new JSON-RPC server instance.
func NewServer(handler *Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{handler: handler, log: log}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, CodeParseError, "Parse error", nil)
		return
	}

	result, err := s.handler.Handle(req.Method, req.Params)
	if err != nil {
		var rerr *rpcError
		if errors.As(err, &rerr) {
			writeError(w, req.ID, rerr.Code, rerr.Message, rerr.Data)
		} else {
			writeError(w, req.ID, CodeInternalError, err.Error(), nil)
		}
		s.log.Debug("rpc request failed",
			zap.String("method", req.Method),
			zap.Error(err))
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"result":  result,
		"id":      req.ID,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		"id": id,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
