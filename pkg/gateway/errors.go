package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
)

// ErrorBody is the gateway's error payload.
type ErrorBody struct {
	Message string `json:"message"`
}

// CodeForStatus maps a gateway HTTP status to the storefront error taxonomy.
func CodeForStatus(status int) pkgerrors.Code {
	switch {
	case status == http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case status == http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status == http.StatusPaymentRequired,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		return pkgerrors.CodeConflict
	case status == http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		return pkgerrors.CodeDependency
	}
}

// StatusError builds the typed error for a non-2xx gateway response.
func StatusError(status int, body []byte) *pkgerrors.Error {
	code := CodeForStatus(status)
	msg := messageFromBody(body)
	if msg == "" {
		msg = strings.ToLower(http.StatusText(status))
	}
	if msg == "" {
		msg = "gateway request failed"
	}
	return pkgerrors.New(code, msg).WithDetails(map[string]any{"status": status})
}

func messageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload ErrorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

// IsTransport reports whether err is a transport-class failure that should
// trip the circuit breaker.
func IsTransport(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeDependency)
}
