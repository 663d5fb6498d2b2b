package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/mboard/shared/domain"
	internal_errors "github.com/itchan-dev/mboard/shared/errors"
	"github.com/itchan-dev/mboard/shared/logger"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteErrorAndStatusCode renders err as {"error": code, "message": msg}.
// Errors outside the taxonomy are reported as a bare 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	e, ok := internal_errors.As(err)
	if !ok {
		logger.Log.Error("unhandled error", "error", err)
		e = &internal_errors.ErrorWithStatusCode{Code: "internal_error", Message: "Internal error", StatusCode: http.StatusInternalServerError}
	}
	code := e.Code
	if code == "" {
		code = "internal_error"
	}
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: code, Message: e.Message})
}

// WriteJSON encodes v with status 200. Encoding failures become a 500.
func WriteJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		WriteErrorAndStatusCode(w, internal_errors.Storage("Internal error", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(body, '\n'))
}

// GetIP extracts the client IP from RemoteAddr.
// Forwarding headers are not trusted.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

// ClientDetails captures the request metadata stored with every message.
func ClientDetails(r *http.Request) domain.ClientDetails {
	ip, err := GetIP(r)
	if err != nil {
		logger.Log.Warn("could not determine client ip", "remote_addr", r.RemoteAddr, "error", err)
		ip = ""
	}
	return domain.ClientDetails{
		IpAddress: truncate(ip, domain.MaxIpAddressLen),
		UserAgent: truncate(r.UserAgent(), domain.MaxUserAgentLen),
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// DecodeValidate decodes a JSON body into body and runs its validate tags.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return Validate(body)
}

func Decode(r io.ReadCloser, body any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodySize))
	if err := dec.Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return internal_errors.Validation("Body is invalid json")
	}
	return nil
}

// Validate runs validate tags and reports the first failing field.
func Validate(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return internal_errors.Validation(fieldMessage(verrs[0]))
	}
	return internal_errors.Validation("Required fields missing")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
