package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/usestring/kismetrest/pkg/client"
)

// Error codes for MCP tool responses.
const (
	ErrCodeLoginRequired     = "LOGIN_REQUIRED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeKismetError       = "KISMET_ERROR"
	ErrCodeUnreachable       = "UNREACHABLE"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE"
	ErrCodeInvalidInput      = "INVALID_INPUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapKismetError converts a client error to a coded error.
func WrapKismetError(err error) error {
	if err == nil {
		return nil
	}

	coded := &CodedError{Code: ErrCodeKismetError, Message: "kismet request failed", Cause: err}

	var (
		loginErr     *client.LoginRequiredError
		failedErr    *client.RequestFailedError
		malformedErr *client.MalformedResponseError
	)
	switch {
	case errors.As(err, &loginErr):
		coded.Code = ErrCodeLoginRequired
		coded.Message = "login required; set KISMET_USERNAME and KISMET_PASSWORD"
	case errors.As(err, &malformedErr):
		coded.Code = ErrCodeMalformedResponse
		coded.Message = "kismet sent a response that is not valid JSON"
	case errors.As(err, &failedErr):
		switch {
		case failedErr.Timeout():
			coded.Code = ErrCodeTimeout
			coded.Message = "request timed out"
		case failedErr.Unreachable():
			coded.Code = ErrCodeUnreachable
			coded.Message = "kismet server is not reachable"
		case failedErr.StatusCode == http.StatusNotFound:
			coded.Code = ErrCodeNotFound
			coded.Message = "not found"
		case failedErr.Message != "":
			coded.Message = failedErr.Message
		}
	case isTimeout(err):
		coded.Code = ErrCodeTimeout
		coded.Message = "request timed out"
	}

	slog.Warn("kismet API error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
