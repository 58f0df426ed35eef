package domain

// Role identifies the author of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversational turn. Content may carry lightweight markdown.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body the widget posts to the chat endpoint.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// CompletionRequest is the request sent upstream to the completion provider.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
}

// Completion is the minimal shape of a provider completion the widget reads.
// The endpoint forwards the provider body untouched; this type is for consumers.
type Completion struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

// ErrorBody is the failure body returned by the chat endpoint.
type ErrorBody struct {
	Error string `json:"error"`
}
