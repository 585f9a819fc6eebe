package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/filechat/backend/internal/metrics"
	"github.com/filechat/backend/internal/models"
)

const systemPromptPrefix = "You are a helpful assistant for a file management application. "

// FileSource is the read side of the storage dispatcher.
type FileSource interface {
	// Names returns the current file names, or nil when listing fails.
	Names(ctx context.Context) []string
	Stat(ctx context.Context, name string) (*models.FileMetadata, error)
}

// Completer sends a system+user exchange to a completion API.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Responder answers chat messages. It keeps no state between calls.
type Responder struct {
	files     FileSource
	completer Completer
	rules     []Rule
	logger    *slog.Logger
}

// NewResponder creates a responder. A nil completer disables the completion
// API and every message goes through DefaultRules.
func NewResponder(files FileSource, completer Completer, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		files:     files,
		completer: completer,
		rules:     DefaultRules(),
		logger:    logger.With("component", "chat"),
	}
}

// Respond produces a reply for message. Completion failures are logged and
// answered by the rules instead.
func (r *Responder) Respond(ctx context.Context, message string) string {
	files := r.files.Names(ctx)

	if r.completer != nil {
		reply, err := r.completer.Complete(ctx, SystemPrompt(files), message)
		if err == nil {
			metrics.RecordChatResponse(metrics.SourceCompletion)
			return reply
		}
		r.logger.Error("completion failed, using rules", "error", err)
	}

	rule, reply := Evaluate(ctx, r.rules, Input{
		Message: strings.ToLower(message),
		Files:   files,
		Stat:    r.files.Stat,
		Logger:  r.logger,
	})
	r.logger.Debug("rule matched", "rule", rule)
	metrics.RecordChatResponse(metrics.SourceRules)
	return reply
}

// SystemPrompt embeds the file list into the completion system message.
func SystemPrompt(files []string) string {
	if len(files) == 0 {
		return systemPromptPrefix + "No files uploaded yet."
	}
	return systemPromptPrefix + "Available files: " + strings.Join(files, ", ")
}
