package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"dinebook/shared/constant"
	"dinebook/shared/failure"
	"dinebook/shared/logger"
)

const msgInternal = "internal server error"

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type ErrorBody struct {
	Kind    failure.Kind `json:"kind"    swaggertype:"string" example:"not_found"`
	Message string       `json:"message" example:"availability not found"`
}

type Error struct {
	Error ErrorBody `json:"error"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Message: &message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload interface{}) {
	response(writer, code, Data[any]{Data: &jsonPayload})
}

// WithNoContent sends an empty 204 response
func WithNoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// WithError sends the error envelope. Anything that is not a Failure is
// reported as internal without its text.
func WithError(writer http.ResponseWriter, err error) {
	var fail *failure.Failure
	if !errors.As(err, &fail) {
		response(writer, http.StatusInternalServerError, Error{Error: ErrorBody{Kind: failure.KindInternal, Message: msgInternal}})

		return
	}

	response(writer, fail.Code, Error{Error: ErrorBody{Kind: fail.Kind, Message: fail.Message}})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
