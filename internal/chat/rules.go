// Package chat answers free-text questions about the uploaded files.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/filechat/backend/internal/models"
)

// Input is the snapshot a Rule matches against.
type Input struct {
	// Message is the user's message, lowercased.
	Message string
	Files   []string
	// Stat fetches metadata from the active backend.
	Stat func(ctx context.Context, name string) (*models.FileMetadata, error)
	// Logger may be nil.
	Logger *slog.Logger
}

// Rule produces a reply when it matches. Rules are evaluated in order and
// the first match wins.
type Rule struct {
	Name    string
	Respond func(ctx context.Context, in Input) (string, bool)
}

const (
	noFilesReply = "You haven't uploaded any files yet. You can upload files in the Upload tab."

	greetingReply = "Hello! I'm your AI assistant. I can help you analyze and discuss your uploaded files. What would you like to know?"

	thanksReply = "You're welcome! Is there anything else I can help you with?"

	helpReply = "I can help you with your uploaded files in several ways:\n\n" +
		"1. List all your uploaded files\n" +
		"2. Provide information about specific files\n" +
		"3. Answer questions about file types and formats\n" +
		"4. Guide you on how to upload, view, and download files\n\n" +
		"Just let me know what you need!"

	fallbackReply = "I'm here to help you with your uploaded files. You can ask me to list your files, provide information about specific files, or help you navigate the application. What would you like to know?"
)

var (
	filesKeywords    = []string{"list", "show", "what", "files", "documents", "uploaded"}
	greetingKeywords = []string{"hello", "hi", "hey", "greetings"}
	thanksKeywords   = []string{"thank", "thanks"}
	helpKeywords     = []string{"help", "how", "can you"}
)

// DefaultRules returns the rule chain used when no completion is available.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "files", Respond: summarizeFiles},
		{Name: "file-detail", Respond: describeFile},
		{Name: "greeting", Respond: keywordReply(greetingKeywords, greetingReply)},
		{Name: "thanks", Respond: keywordReply(thanksKeywords, thanksReply)},
		{Name: "help", Respond: keywordReply(helpKeywords, helpReply)},
		{Name: "fallback", Respond: func(context.Context, Input) (string, bool) { return fallbackReply, true }},
	}
}

// Evaluate runs rules in order and returns the first reply. It returns the
// generic fallback when nothing matches.
func Evaluate(ctx context.Context, rules []Rule, in Input) (string, string) {
	for _, rule := range rules {
		if reply, ok := rule.Respond(ctx, in); ok {
			return rule.Name, reply
		}
	}
	return "fallback", fallbackReply
}

// containsAny is a plain substring test, so "hi" also matches "this".
func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

func keywordReply(keywords []string, reply string) func(context.Context, Input) (string, bool) {
	return func(_ context.Context, in Input) (string, bool) {
		if containsAny(in.Message, keywords) {
			return reply, true
		}
		return "", false
	}
}

func summarizeFiles(_ context.Context, in Input) (string, bool) {
	if !containsAny(in.Message, filesKeywords) {
		return "", false
	}
	if len(in.Files) == 0 {
		return noFilesReply, true
	}

	var images, pdfs, videos []string
	for _, name := range in.Files {
		switch Classify(name) {
		case TypeImage:
			images = append(images, name)
		case TypePDF:
			pdfs = append(pdfs, name)
		case TypeVideo:
			videos = append(videos, name)
		}
	}

	var b strings.Builder
	b.WriteString("Here are the files you've uploaded:\n\n")
	writeGroup(&b, "Images", images)
	writeGroup(&b, "PDFs", pdfs)
	writeGroup(&b, "Videos", videos)
	b.WriteString("You can view or download these files in the Gallery tab.")
	return b.String(), true
}

func writeGroup(b *strings.Builder, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d): %s\n\n", label, len(names), strings.Join(names, ", "))
}

func describeFile(ctx context.Context, in Input) (string, bool) {
	if in.Stat == nil {
		return "", false
	}
	for _, name := range in.Files {
		if !strings.Contains(in.Message, strings.ToLower(name)) {
			continue
		}
		meta, err := in.Stat(ctx, name)
		if err != nil {
			if in.Logger != nil {
				in.Logger.Error("failed to get file metadata", "file", name, "error", err)
			}
			continue
		}
		return fmt.Sprintf("I found information about '%s':\n\n"+
			"Type: %s\n"+
			"Size: %s\n"+
			"Last modified: %s\n\n"+
			"You can view or download this file in the Gallery tab.",
			name, Classify(name), FormatSize(meta.Size), meta.ModTime.Format(TimestampLayout)), true
	}
	return "", false
}
