package server

import (
	"encoding/json"
	"net/http"

	"github.com/jdalgard/pageplan/pkg/errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidTemplate,
		errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidRegion,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidSegment:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodeJobNotFound,
		errors.ErrCodePlanNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMeasurementIncomplete:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
