// internal/common/http/response.go
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
)

// MaxBodyBytes caps request bodies read by ReadBody.
const MaxBodyBytes = 1 << 20

var ErrBodyTooLarge = errors.New("request body too large")

// WriteJSON encodes v as JSON with the given status code. On encoding
// failure it falls back to a plain 500 response.
func WriteJSON(w stdhttp.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		stdhttp.Error(w, `{"message":"Server error"}`, stdhttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w stdhttp.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// ReadBody reads at most MaxBodyBytes from the request body. An empty body
// is returned as "{}".
func ReadBody(r *stdhttp.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	if len(body) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}
