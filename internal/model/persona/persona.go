package persona

import "github.com/Jarvistrey/Jarvis-AI/internal/model/chat"

// DefaultID names the persona used when none is configured.
const DefaultID = "jarvis"

// Persona describes the assistant identity presented to both backends.
type Persona struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	SystemPrompt string `json:"systemPrompt"`
	// Marker prefixes the assistant's turn in flattened prompts. Local model
	// output is cut after its last occurrence.
	Marker string `json:"marker"`
}

// Seed provides the built-in personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:           DefaultID,
			Name:         "Jarvis",
			Title:        "Tony Stark's AI",
			SystemPrompt: chat.DefaultSystemPrompt,
			Marker:       "Jarvis:",
		},
	}
}
