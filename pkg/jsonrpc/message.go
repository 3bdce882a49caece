// Package jsonrpc implements the JSON-RPC 2.0 message types used on both
// the client-facing stream and the backend wire, plus the standard error
// codes and request/response correlation primitive.
package jsonrpc

import (
	"encoding/json"
	"errors"
)

// Version is the JSON-RPC protocol version string carried on every message.
const Version = "2.0"

// RequestId is an opaque scalar: a JSON string or number. It MUST round-trip
// byte-identical to whatever the sender used — "1" and 1 are different ids.
type RequestId any

// Error represents the JSON-RPC 2.0 error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Request is a JSON-RPC request: it carries an id and expects a Response.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      RequestId       `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Notification is a JSON-RPC message with no id. It MUST NEVER receive a
// response — the id field's absence is what distinguishes it from Request.
type Notification struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response carries either a Result or an Error, never both.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      RequestId       `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewRequest builds a Request, marshaling parameters into Params.
func NewRequest(id RequestId, method string, params any) (*Request, error) {
	raw, err := asParams(params)
	if err != nil {
		return nil, err
	}
	return &Request{Jsonrpc: Version, Id: id, Method: method, Params: raw}, nil
}

// NewNotification builds a Notification, marshaling parameters into Params.
func NewNotification(method string, params any) (*Notification, error) {
	raw, err := asParams(params)
	if err != nil {
		return nil, err
	}
	return &Notification{Jsonrpc: Version, Method: method, Params: raw}, nil
}

// NewResult builds a successful Response.
func NewResult(id RequestId, result any) (*Response, error) {
	raw, err := asParams(result)
	if err != nil {
		return nil, err
	}
	return &Response{Jsonrpc: Version, Id: id, Result: raw}, nil
}

// NewErrorResponse builds an error Response.
func NewErrorResponse(id RequestId, code int, message string, data any) *Response {
	raw, _ := asParams(data)
	return &Response{Jsonrpc: Version, Id: id, Error: &Error{Code: code, Message: message, Data: raw}}
}

func asParams(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	switch actual := v.(type) {
	case json.RawMessage:
		return actual, nil
	case []byte:
		return actual, nil
	default:
		return json.Marshal(actual)
	}
}

// rawMessageEnvelope is used to sniff an inbound frame's shape without
// committing to a type: a message with "id" and "method" is a Request, a
// message with "id" and no "method" is a Response, and a message with
// "method" and no "id" is a Notification.
type rawMessageEnvelope struct {
	Id     *json.RawMessage `json:"id"`
	Method *string          `json:"method"`
}

// Kind classifies a raw inbound frame.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest
	KindNotification
	KindResponse
)

// Classify inspects a raw JSON-RPC frame and reports its Kind without fully
// unmarshaling it. A JSON `null` id is treated as absent: it means
// "notification".
func Classify(data []byte) (Kind, error) {
	var env rawMessageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return KindUnknown, err
	}
	hasID := env.Id != nil && string(*env.Id) != "null"
	switch {
	case hasID && env.Method != nil:
		return KindRequest, nil
	case !hasID && env.Method != nil:
		return KindNotification, nil
	case hasID && env.Method == nil:
		return KindResponse, nil
	default:
		return KindUnknown, errors.New("jsonrpc: frame is neither request, notification, nor response")
	}
}
