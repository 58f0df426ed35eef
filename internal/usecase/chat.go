package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"estate-chat/internal/domain"
)

// Fixed completion parameters. The model is a small instruction-tuned one.
const (
	DefaultModel       = "llama-3.1-8b-instant"
	DefaultTemperature = 1.0
	DefaultMaxTokens   = 512
	DefaultTopP        = 1.0
)

const (
	OutcomeSuccess  = "success"
	OutcomeConfig   = "configuration_error"
	OutcomeProvider = "provider_error"
)

// Completer is the upstream completion provider.
type Completer interface {
	Complete(ctx context.Context, apiKey string, req domain.CompletionRequest) (json.RawMessage, error)
}

// Recorder observes endpoint outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveChat(outcome string)
	ObserveUpstream(d time.Duration, err error)
}

type providerMessager interface {
	ProviderMessage() string
}

type nopRecorder struct{}

func (nopRecorder) ObserveChat(string)                   {}
func (nopRecorder) ObserveUpstream(time.Duration, error) {}

type ChatInput struct {
	Messages []domain.Message
}

type ChatOutput struct {
	Completion json.RawMessage
}

// ChatService forwards a conversation to the provider. It is the only holder
// of the provider credential and keeps no state between calls.
type ChatService struct {
	llm      Completer
	apiKey   string
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

type ServiceOption func(*ChatService)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *ChatService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRecorder(r Recorder) ServiceOption {
	return func(s *ChatService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewChatService builds the service. An empty apiKey is accepted; every call
// then fails with a configuration error instead of reaching the provider.
func NewChatService(llm Completer, apiKey string, opts ...ServiceOption) (*ChatService, error) {
	if llm == nil {
		return nil, errors.New("usecase: completer must not be nil")
	}
	s := &ChatService{
		llm:      llm,
		apiKey:   strings.TrimSpace(apiKey),
		logger:   slog.New(slog.DiscardHandler),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Configured reports whether a provider credential is present.
func (s *ChatService) Configured() bool {
	return s.apiKey != ""
}

// CheckConfig returns the configuration error, if any, without touching the
// network.
func (s *ChatService) CheckConfig() error {
	if s.Configured() {
		return nil
	}
	return newError(ErrorConfiguration, "api_key_missing", MessageAPIKeyMissing, nil)
}

func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if err := s.CheckConfig(); err != nil {
		s.recorder.ObserveChat(OutcomeConfig)
		s.logger.ErrorContext(ctx, "chat request rejected", "outcome", OutcomeConfig, "reason", "api_key_missing")
		return ChatOutput{}, err
	}

	req := domain.CompletionRequest{
		Model:       DefaultModel,
		Messages:    in.Messages,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
	}

	s.logger.DebugContext(ctx, "forwarding chat completion", "model", req.Model, "messages", len(req.Messages))
	start := s.now()
	raw, err := s.llm.Complete(ctx, s.apiKey, req)
	elapsed := s.now().Sub(start)
	s.recorder.ObserveUpstream(elapsed, err)

	if err != nil {
		s.recorder.ObserveChat(OutcomeProvider)
		s.logger.ErrorContext(ctx, "chat completion failed",
			"outcome", OutcomeProvider,
			"messages", len(req.Messages),
			"duration_ms", elapsed.Milliseconds(),
			"err", err,
		)
		return ChatOutput{}, newError(ErrorProvider, "upstream_error", providerMessage(err), err)
	}

	s.recorder.ObserveChat(OutcomeSuccess)
	s.logger.InfoContext(ctx, "chat completion forwarded",
		"outcome", OutcomeSuccess,
		"messages", len(req.Messages),
		"duration_ms", elapsed.Milliseconds(),
	)
	return ChatOutput{Completion: raw}, nil
}

func providerMessage(err error) string {
	var pm providerMessager
	if errors.As(err, &pm) {
		if msg := pm.ProviderMessage(); msg != "" {
			return msg
		}
	}
	return MessageInternalServer
}
