package utils

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes. Conflict and not-found must be
// distinguishable from each other and from opaque system faults.
const (
	CodeNotFound = "not_found"
	CodeConflict = "conflict"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
