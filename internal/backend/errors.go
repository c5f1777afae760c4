package backend

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind tags the shape of a failed backend call.
type ErrorKind int

const (
	// KindUnknown is a failure whose body carried nothing usable.
	KindUnknown ErrorKind = iota
	// KindUnreachable is a transport failure: the backend was never reached.
	KindUnreachable
	// KindMessage is a business error with a message to show verbatim.
	KindMessage
	// KindFieldValidation is a map of per-field validation messages.
	KindFieldValidation
)

// Fallback messages shown to the user.
const (
	MsgUnreachable = "Erreur de connexion au serveur"
	MsgValidation  = "Erreur de validation"
	MsgUnknown     = "Erreur inattendue du serveur"
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindMessage:
		return "message"
	case KindFieldValidation:
		return "field_validation"
	default:
		return "unknown"
	}
}

// APIError is the result of every failed backend call.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Fields holds the per-field messages of a KindFieldValidation error.
	Fields map[string]string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error onto a status for the portal's own response.
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindUnreachable:
		return http.StatusBadGateway
	case KindFieldValidation:
		return http.StatusUnprocessableEntity
	}
	if e.Status >= 400 && e.Status < 600 {
		return e.Status
	}
	return http.StatusBadRequest
}

func unreachable(err error) *APIError {
	return &APIError{Kind: KindUnreachable, Message: MsgUnreachable, Err: err}
}

// failureBody is the error part of the backend envelope.
type failureBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// parseFailure classifies a failed response body. message wins over error;
// a string error is shown as is; an object error with an errors map becomes
// a field-validation error.
func parseFailure(status int, body []byte) *APIError {
	var fb failureBody
	if err := json.Unmarshal(body, &fb); err != nil {
		return &APIError{Kind: KindUnknown, Status: status, Message: MsgUnknown, Err: err}
	}

	if msg := strings.TrimSpace(fb.Message); msg != "" {
		return &APIError{Kind: KindMessage, Status: status, Message: msg}
	}

	raw := []byte(strings.TrimSpace(string(fb.Error)))
	if len(raw) == 0 || string(raw) == "null" {
		return &APIError{Kind: KindUnknown, Status: status, Message: MsgUnknown}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text == "" {
			return &APIError{Kind: KindUnknown, Status: status, Message: MsgUnknown}
		}
		return &APIError{Kind: KindMessage, Status: status, Message: text}
	}

	var obj struct {
		Errors map[string]struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Errors != nil {
		fields := make(map[string]string, len(obj.Errors))
		for k, v := range obj.Errors {
			fields[k] = v.Message
		}
		return &APIError{
			Kind:    KindFieldValidation,
			Status:  status,
			Message: joinFieldMessages(fields),
			Fields:  fields,
		}
	}

	return &APIError{Kind: KindUnknown, Status: status, Message: MsgUnknown}
}

// joinFieldMessages joins the messages in field-name order.
func joinFieldMessages(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		if m := strings.TrimSpace(fields[k]); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return MsgValidation
	}
	return strings.Join(msgs, ", ")
}
