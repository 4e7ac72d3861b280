package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Payload is the normalized form of a backend response. The concrete types
// are ArrayPayload, WrappedUser, WrappedLeads, Ack and Failure; callers
// switch on them.
type Payload interface {
	// Envelope returns the uniform {success, ...} shape
	Envelope() map[string]any
	// Raw returns the response body as received
	Raw() json.RawMessage
	payload()
}

// ArrayPayload is a bare JSON array, read as a lead list
type ArrayPayload struct {
	Leads json.RawMessage
}

// WrappedUser carries a user object, either under "user" or because the
// backend returned a bare object
type WrappedUser struct {
	User   json.RawMessage
	Fields map[string]json.RawMessage
	raw    json.RawMessage
}

// WrappedLeads is a success envelope with a top-level "leads" array
type WrappedLeads struct {
	Leads  json.RawMessage
	Fields map[string]json.RawMessage
	raw    json.RawMessage
}

// Ack is a success envelope carrying neither user nor leads
type Ack struct {
	Fields map[string]json.RawMessage
	raw    json.RawMessage
}

// Failure is any response that did not succeed
type Failure struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	raw        json.RawMessage
}

func (ArrayPayload) payload() {}
func (WrappedUser) payload()  {}
func (WrappedLeads) payload() {}
func (Ack) payload()          {}
func (Failure) payload()      {}

func (p ArrayPayload) Envelope() map[string]any {
	return map[string]any{"success": true, "leads": p.Leads}
}

func (p ArrayPayload) Raw() json.RawMessage { return p.Leads }

func (p WrappedUser) Envelope() map[string]any {
	env := fieldsEnvelope(p.Fields)
	env["user"] = p.User
	return env
}

func (p WrappedUser) Raw() json.RawMessage { return p.raw }

func (p WrappedLeads) Envelope() map[string]any {
	env := fieldsEnvelope(p.Fields)
	env["leads"] = p.Leads
	return env
}

func (p WrappedLeads) Raw() json.RawMessage { return p.raw }

func (p Ack) Envelope() map[string]any { return fieldsEnvelope(p.Fields) }

func (p Ack) Raw() json.RawMessage { return p.raw }

// Field returns one top-level field of the envelope
func (p Ack) Field(name string) (json.RawMessage, bool) {
	v, ok := p.Fields[name]
	return v, ok
}

func (p Failure) Envelope() map[string]any {
	return map[string]any{"success": false, "error": p.Message}
}

func (p Failure) Raw() json.RawMessage { return p.raw }

// Err converts the failure into the client error type
func (p Failure) Err() *Error {
	return &Error{Kind: p.Kind, StatusCode: p.StatusCode, Message: p.Message}
}

func fieldsEnvelope(fields map[string]json.RawMessage) map[string]any {
	env := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		env[k] = v
	}
	env["success"] = true
	return env
}

// Normalize turns a status code and body into a Payload. It never fails:
// empty or unparseable bodies become a Failure.
func Normalize(statusCode int, body []byte) Payload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return Failure{Kind: KindMalformed, StatusCode: statusCode, Message: MsgNotResponding, raw: trimmed}
	}
	raw := json.RawMessage(trimmed)
	ok := statusCode >= 200 && statusCode < 300

	switch trimmed[0] {
	case '[':
		if !ok {
			return Failure{Kind: KindHTTP, StatusCode: statusCode, Message: MsgRequestFailed, raw: raw}
		}
		return ArrayPayload{Leads: raw}
	case '{':
	default:
		return Failure{Kind: KindMalformed, StatusCode: statusCode, Message: MsgNotResponding, raw: raw}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Failure{Kind: KindMalformed, StatusCode: statusCode, Message: MsgNotResponding, raw: raw}
	}

	successRaw, hasSuccess := fields["success"]
	success := ok
	if hasSuccess {
		success = truthy(successRaw)
	}

	if !success {
		kind := KindDomain
		if !ok {
			kind = KindHTTP
		}
		return Failure{Kind: kind, StatusCode: statusCode, Message: serverMessage(fields, MsgRequestFailed), raw: raw}
	}

	user, hasUser := fields["user"]
	if !hasSuccess && !hasUser {
		return WrappedUser{User: raw, Fields: map[string]json.RawMessage{}, raw: raw}
	}
	if hasUser {
		return WrappedUser{User: user, Fields: fields, raw: raw}
	}
	if leads, hasLeads := fields["leads"]; hasLeads {
		return WrappedLeads{Leads: leads, Fields: fields, raw: raw}
	}
	return Ack{Fields: fields, raw: raw}
}

// serverMessage picks the first human message the backend supplied
func serverMessage(fields map[string]json.RawMessage, fallback string) string {
	for _, key := range []string{"error", "message"} {
		if v, ok := fields[key]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return fallback
}

// truthy reads PHP-style success flags: true, 1, "1", "true"
func truthy(v json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n != 0
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		parsed, err := strconv.ParseBool(strings.TrimSpace(s))
		return err == nil && parsed
	}
	return false
}
