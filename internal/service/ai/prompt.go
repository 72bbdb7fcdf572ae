package ai

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
)

// DefaultAssistantName prefixes assistant lines in flattened prompts.
const DefaultAssistantName = "Jarvis"

// FlattenPrompt renders a single text prompt for models without chat
// structure:
//
//	{system}\n\nUser: {prompt}\n\n{assistant}:
//
// With history set, earlier user and assistant messages of the window are
// rendered in the same form before the new prompt.
func FlattenPrompt(window []*schema.Message, prompt, assistant string, history bool) string {
	if assistant == "" {
		assistant = DefaultAssistantName
	}

	var b strings.Builder
	b.WriteString(chat.SystemPrompt(window, chat.DefaultSystemPrompt))

	if history {
		for _, msg := range priorTurns(window, prompt) {
			switch msg.Role {
			case schema.User:
				b.WriteString("\n\nUser: ")
			case schema.Assistant:
				b.WriteString("\n\n" + assistant + ": ")
			default:
				continue
			}
			b.WriteString(msg.Content)
		}
	}

	b.WriteString("\n\nUser: ")
	b.WriteString(prompt)
	b.WriteString("\n\n" + assistant + ":")
	return b.String()
}

// priorTurns drops the trailing prompt if the window already ends with it.
func priorTurns(window []*schema.Message, prompt string) []*schema.Message {
	if chat.HasUserTail(window, prompt) {
		return window[:len(window)-1]
	}
	return window
}

// ExtractReply returns the text after the last marker, or the whole output
// when the marker is absent.
func ExtractReply(output, marker string) string {
	if marker != "" {
		if idx := strings.LastIndex(output, marker); idx >= 0 {
			output = output[idx+len(marker):]
		}
	}
	return strings.TrimSpace(output)
}
