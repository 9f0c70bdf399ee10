package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/values"
)

const maxBodyBytes = 4 << 20

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// requestID assigns every request an id, reusing a client supplied one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the id assigned by the request id middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// valuesRequest is the body accepted by the state, render and validate
// endpoints.
type valuesRequest struct {
	Values   json.RawMessage `json:"values"`
	Template string          `json:"template,omitempty"`
}

func (req valuesRequest) snapshot() (model.Values, error) {
	if len(req.Values) == 0 || string(req.Values) == "null" {
		return model.Values{}, nil
	}
	return values.Decode(req.Values)
}

var errEmptyBody = errors.New("request body is empty")

func decodeValuesRequest(r *http.Request) (valuesRequest, model.Values, error) {
	var req valuesRequest
	data, err := readBody(r)
	if err != nil {
		return req, nil, err
	}
	if len(data) == 0 {
		return req, nil, errEmptyBody
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, nil, err
	}
	snapshot, err := req.snapshot()
	if err != nil {
		return req, nil, err
	}
	return req, snapshot, nil
}
