package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"whiteknight/core"
	"whiteknight/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxRequestBodyBytes caps JSON request bodies, evidence payloads included
const maxRequestBodyBytes = 1 << 20

var (
	connectionStringPattern = regexp.MustCompile(`(?:sqlite|redis|rediss|file)://[^\s"']+`)
	filePathPattern         = regexp.MustCompile(`(?:[A-Za-z]:\\|/)(?:[^\\/:*?"<>|\s]+[\\/])+[^\\/:*?"<>|\s]+`)
	credentialPattern       = regexp.MustCompile(`(?i)(password|secret|token|key)[:=]\s*["']?[^"'\s]+["']?`)
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// sanitizeErrorMessage removes sensitive information from error messages before sending to clients
func sanitizeErrorMessage(message string) string {
	message = connectionStringPattern.ReplaceAllString(message, "[CONNECTION]")
	message = filePathPattern.ReplaceAllString(message, "[FILE_PATH]")
	message = credentialPattern.ReplaceAllString(message, "$1=[REDACTED]")

	if len(message) > core.MaxErrorMessageLength {
		cut := core.MaxErrorMessageLength - 3
		for cut > 0 && !utf8.RuneStart(message[cut]) {
			cut--
		}
		message = message[:cut] + "..."
	}
	return message
}

// respondJSON writes data as JSON with the given status code
func (a *API) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Errorw("Failed to encode JSON response",
			"error", err,
			"data_type", fmt.Sprintf("%T", data))
	}
}

// writeError writes an error response to the client and logs it with proper sanitization
func writeError(w http.ResponseWriter, statusCode int, message string, err error, logger *zap.SugaredLogger) {
	if logger != nil {
		fields := []interface{}{"status_code", statusCode}
		if err != nil {
			fields = append(fields, "error", err.Error())
		}
		if statusCode >= http.StatusInternalServerError {
			logger.Errorw(message, fields...)
		} else {
			logger.Debugw(message, fields...)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Success: false,
		Message: sanitizeErrorMessage(message),
	})
}

// writeServiceError maps a service error to 404 or 500
func (a *API) writeServiceError(w http.ResponseWriter, err error, notFoundMessage, failureMessage string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFoundMessage, err, a.logger)
		return
	}
	writeError(w, http.StatusInternalServerError, failureMessage, err, a.logger)
}

// decodeJSONBody decodes a required JSON request body. Malformed input is
// reported as 422 so that it matches field validation failures.
func (a *API) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	err := decodeBody(w, r, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		writeError(w, http.StatusUnprocessableEntity, "Request body is required", err, a.logger)
		return err
	}
	a.writeDecodeError(w, err)
	return err
}

// decodeOptionalJSONBody decodes a JSON body when one is present. An empty
// body leaves dst untouched.
func (a *API) decodeOptionalJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	err := decodeBody(w, r, dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	a.writeDecodeError(w, err)
	return err
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return io.EOF
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func (a *API) writeDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxError):
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid JSON syntax at byte offset %d", syntaxError.Offset), err, a.logger)
	case errors.As(err, &unmarshalTypeError):
		field := unmarshalTypeError.Field
		if field == "" {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid JSON body: expected %s, got %s", unmarshalTypeError.Type, unmarshalTypeError.Value), err, a.logger)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid type for field '%s': expected %s, got %s", field, unmarshalTypeError.Type, unmarshalTypeError.Value), err, a.logger)
	case errors.As(err, &maxBytesError):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", err, a.logger)
	case errors.Is(err, io.ErrUnexpectedEOF):
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body: unexpected end of input", err, a.logger)
	default:
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body", err, a.logger)
	}
}

// validateRequest runs struct-tag validation and writes a 422 on failure
func (a *API) validateRequest(w http.ResponseWriter, req interface{}) error {
	err := a.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, describeFieldError(fe))
		}
		writeError(w, http.StatusUnprocessableEntity, "Validation failed: "+strings.Join(messages, "; "), err, a.logger)
		return err
	}

	writeError(w, http.StatusUnprocessableEntity, "Validation failed", err, a.logger)
	return err
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", fe.Field())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("field '%s' failed '%s' validation", fe.Field(), fe.Tag())
	}
}

// jsonFieldName reports validation errors under the JSON name of a field
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// firstNonEmpty returns the first non-empty string, used to let query
// parameters take precedence over body fields
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
