package models

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply to a chat message. It is never persisted.
type ChatResponse struct {
	Response string `json:"response"`
}

// CompletionMessage is a single role/content pair sent to the completion API.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the fixed request schema of the completion API.
type CompletionRequest struct {
	Model     string              `json:"model"`
	Messages  []CompletionMessage `json:"messages"`
	MaxTokens int                 `json:"max_tokens"`
}
