package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
)

const apiKeyHeader = "X-API-Key"

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(apiKeyHeader)
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) != 1 {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusOK, data)
}

// sendCreated sends a 201 JSON response
func sendCreated(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusCreated, data)
}

// sendJSON marshals the response before writing the status. A payload that
// cannot be marshalled is answered with a 500.
func sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(APIResponse{
		Success: true,
		Data:    data,
	})
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}

// sendBinary writes an encoded buffer
func sendBinary(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", contentTypeOctetStream)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
