package handlers

import (
	"encoding/json"
	"net/http"
)

// Error codes written in OData error responses
const (
	ErrMsgMethodNotAllowed = "MethodNotAllowed"
	ErrMsgNotFound         = "NotFound"
	ErrMsgModelUnavailable = "ModelUnavailable"
	ErrMsgInternalError    = "InternalError"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Target  string `json:"target,omitempty"`
}

// WriteError writes an OData JSON error response
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json;odata.metadata=minimal")
	w.Header().Set("OData-Version", "4.0")
	w.WriteHeader(status)
	if r != nil && r.Method == http.MethodHead {
		return
	}
	target := ""
	if r != nil {
		target = r.URL.Path
	}
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: message, Target: target}})
}
