package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"estate-chat/internal/domain"
	"estate-chat/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// ChatUseCase is the endpoint core the transports delegate to.
type ChatUseCase interface {
	CheckConfig() error
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// Handler exposes the chat endpoint over API Gateway proxy events and net/http.
type Handler struct {
	uc     ChatUseCase
	logger *slog.Logger
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(uc ChatUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	h := &Handler{uc: uc, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle serves a Lambda API Gateway proxy event.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)

	status, payload := h.respond(ctx, event.HTTPMethod, corrID, func() ([]byte, error) {
		if !event.IsBase64Encoded {
			return []byte(event.Body), nil
		}
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decode base64 body: %w", err)
		}
		return decoded, nil
	})
	return proxyResponse(status, payload, corrID), nil
}

// ServeHTTP serves the same endpoint for a plain HTTP listener. Like the
// Lambda path it puts no size limit on the body.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	corrID := strings.TrimSpace(r.Header.Get(correlationHeader))
	if corrID == "" {
		corrID = newCorrelationID()
	}

	status, payload := h.respond(r.Context(), r.Method, corrID, func() ([]byte, error) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(correlationHeader, corrID)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// respond reads the body through readBody only after the method and the
// credential check pass.
func (h *Handler) respond(ctx context.Context, method, corrID string, readBody func() ([]byte, error)) (int, []byte) {
	if method != http.MethodPost {
		return http.StatusMethodNotAllowed, mustJSON(domain.ErrorBody{Error: "method not allowed"})
	}

	if err := h.uc.CheckConfig(); err != nil {
		return h.fail(ctx, corrID, err)
	}

	body, err := readBody()
	if err != nil {
		return h.fail(ctx, corrID, usecase.InvalidInput(err))
	}

	var req domain.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return h.fail(ctx, corrID, usecase.InvalidInput(err))
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{Messages: req.Messages})
	if err != nil {
		return h.fail(ctx, corrID, err)
	}
	h.logger.InfoContext(ctx, "chat request served", "correlation_id", corrID, "messages", len(req.Messages))
	return http.StatusOK, out.Completion
}

// fail maps every error to a 500 with a caller-safe message.
func (h *Handler) fail(ctx context.Context, corrID string, err error) (int, []byte) {
	msg := usecase.MessageInternalServer
	code := usecase.ErrorInternal
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		msg = ucErr.PublicMessage()
		code = ucErr.Code
	}
	h.logger.ErrorContext(ctx, "chat request failed", "correlation_id", corrID, "code", string(code), "err", err)
	return http.StatusInternalServerError, mustJSON(domain.ErrorBody{Error: msg})
}

func proxyResponse(status int, body []byte, corrID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return newCorrelationID()
}

var newCorrelationID = func() string {
	return uuid.NewString()
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"Internal Server Error"}`)
	}
	return b
}
