package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"farmlink/internal/common"
)

// ErrorCollector counts failed responses; wired from main so the metrics
// package does not depend on this one.
type ErrorCollector interface {
	IncErrors()
}

var collector ErrorCollector

func SetErrorCollector(c ErrorCollector) {
	collector = c
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Code    common.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func Error(w http.ResponseWriter, err error) {
	code := common.CodeOf(err)
	status := StatusOf(code)
	if status >= http.StatusInternalServerError && collector != nil {
		collector.IncErrors()
	}
	body := errorBody{Code: code, Message: "internal error"}
	var coded *common.Error
	if errors.As(err, &coded) {
		body.Message = coded.Message
		body.Fields = coded.Fields
	}
	JSON(w, status, map[string]errorBody{"error": body})
}

// StatusOf maps an error code to the HTTP status the UI branches on.
// Every precondition refusal in the validation family that is not a plain
// bad-input error lands on 409: the request was well formed but the record's
// current state forbids it.
func StatusOf(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict, common.CodeWageLocked, common.CodeNotEligible, common.CodeCooldownActive, common.CodeTerminalState:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
