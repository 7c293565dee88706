package chat

import (
	"fmt"
	"strings"

	"github.com/futig/jarvis-backend/internal/entity"
)

// PromptInput holds everything the generation prompt is assembled from
type PromptInput struct {
	Persona     string
	History     string
	Memories    string
	Attachments string
	Message     string
}

// BuildPrompt assembles the generation prompt. Sections always appear in the
// same order: persona, recent conversation, relevant memories, attached
// files, the user message and the reply cue. Empty sections keep their
// heading.
func BuildPrompt(in PromptInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, a super helpful and friendly AI assistant.\n\n", in.Persona)

	writeSection(&sb, "Recent conversation", in.History)
	writeSection(&sb, "Relevant memories", in.Memories)
	writeSection(&sb, "Attached files", in.Attachments)

	fmt.Fprintf(&sb, "User: %s\n", in.Message)
	fmt.Fprintf(&sb, "%s (be concise and fun):", in.Persona)

	return sb.String()
}

func writeSection(sb *strings.Builder, title, body string) {
	sb.WriteString(title)
	sb.WriteString(":\n")
	if body = strings.TrimSpace(body); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// joinAttachments renders every attachment as a titled block, including
// placeholders for files that could not be read
func joinAttachments(attachments []entity.Attachment) string {
	blocks := make([]string, 0, len(attachments))
	for _, a := range attachments {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			continue
		}
		if a.Failed {
			blocks = append(blocks, text)
			continue
		}
		blocks = append(blocks, fmt.Sprintf("--- %s ---\n%s", a.Filename, text))
	}
	return strings.Join(blocks, "\n\n")
}

// joinMatches concatenates stored texts in result order
func joinMatches(matches []entity.MemoryMatch) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if t := m.Text(); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n")
}

// exchangeText is the serialized form stored with every exchange
func exchangeText(userText, reply string) string {
	return "User: " + userText + "\nAssistant: " + reply
}
