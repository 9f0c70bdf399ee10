package server

import (
	"encoding/json"

	"github.com/goliatone/go-formdoc/pkg/document"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

// Message types exchanged over /ws.
const (
	MessageSession   = "session"
	MessageValues    = "values"
	MessageState     = "state"
	MessageSubmit    = "submit"
	MessageDocuments = "documents"
	MessageConfig    = "config"
	MessagePing      = "ping"
	MessagePong      = "pong"
	MessageError     = "error"
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// SessionData is sent once after the connection is accepted.
type SessionData struct {
	SessionID string `json:"session_id"`
}

// DocumentsData answers a "submit" message.
type DocumentsData struct {
	Documents  document.Result `json:"documents"`
	Validation schema.Result   `json:"validation"`
}

// ConfigData is pushed to every session when the configuration changes.
type ConfigData struct {
	Configuration model.Configuration `json:"configuration"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
