package response

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/futig/jarvis-backend/internal/entity"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON encodes data before touching the response, so an encoding failure
// still produces a clean 500
func JSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&buf).Encode(data); err != nil {
			status = http.StatusInternalServerError
			buf.Reset()
			_ = json.NewEncoder(&buf).Encode(ErrorResponse{Error: http.StatusText(status)})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Chat writes the reply of a chat turn as {"response": ...}
func Chat(w http.ResponseWriter, reply string) {
	Success(w, entity.ChatResponse{Response: reply})
}
