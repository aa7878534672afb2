package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/edchat/internal/llm"
)

// Actions a tutor reply can request.
const (
	ActionNone       = "none"
	ActionStartQuiz  = "start_quiz"
	ActionFlashcards = "flashcards"
)

// Request is what the backend receives for one turn.
type Request struct {
	History  []Message
	Subject  string
	Socratic bool
}

// Reply is the tutor's answer.
type Reply struct {
	ResponseText  string `json:"response_text"`
	VoiceText     string `json:"voice_text"`
	ActionSubject string `json:"subject"`
	ActionTopic   string `json:"topic"`
	Action        string `json:"action"`
}

// Backend produces tutor replies.
type Backend interface {
	Reply(ctx context.Context, req Request) (Reply, error)
}

// Purpose labels tutor calls in the LLM event log.
const Purpose = "tutor-chat"

// maxBackendHistory bounds the transcript sent per call.
const maxBackendHistory = 20

var replySchema = &llm.Schema{
	Name:        "tutor-reply",
	Description: "The tutor's reply plus the subject and topic under discussion",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response_text": map[string]any{
				"type":        "string",
				"description": "The reply shown to the student",
			},
			"voice_text": map[string]any{
				"type":        "string",
				"description": "The reply as it should be read aloud, without markup",
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "The school subject being discussed, or \"general\"",
			},
			"topic": map[string]any{
				"type":        "string",
				"description": "The specific topic being discussed, or \"general\"",
			},
			"action": map[string]any{
				"type":        "string",
				"enum":        []any{ActionNone, ActionStartQuiz, ActionFlashcards},
				"description": "start_quiz or flashcards when the student asked to be tested, otherwise none",
			},
		},
		"required":             []any{"response_text", "voice_text", "subject", "topic", "action"},
		"additionalProperties": false,
	},
}

const tutorPrompt = `You are a friendly, patient tutor helping a student learn.

Rules:
- Explain clearly and briefly. Use short paragraphs and concrete examples.
- Use plain text. Write symbols such as →, ×, ≤ directly instead of LaTeX.
- Report the school subject and the specific topic being discussed. Use "general" when there is none.
- When the student asks to be quizzed or tested, set action to "start_quiz". When they ask for flashcards, set it to "flashcards". Otherwise "none".`

const socraticPrompt = `
- Socratic mode is on: do not give answers outright. Guide the student with one question at a time so they reach the answer themselves.`

// LLMBackend implements Backend on an llm.Provider.
type LLMBackend struct {
	provider  llm.Provider
	maxTokens int
}

// NewLLMBackend creates a backend using provider.
func NewLLMBackend(provider llm.Provider) *LLMBackend {
	return &LLMBackend{provider: provider, maxTokens: 1024}
}

func (b *LLMBackend) Reply(ctx context.Context, req Request) (Reply, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	system := tutorPrompt
	if req.Socratic {
		system += socraticPrompt
	}
	if req.Subject != "" {
		system += fmt.Sprintf("\n\nThe current subject is %s.", req.Subject)
	}

	history := req.History
	if len(history) > maxBackendHistory {
		history = history[len(history)-maxBackendHistory:]
	}
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Text})
	}

	resp, err := b.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    msgs,
		Schema:      replySchema,
		MaxTokens:   b.maxTokens,
		Temperature: 0.5,
	})
	if err != nil {
		// A reply that ignored the schema is still a reply.
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) && len(invalid.Content) > 0 {
			return plainReply(string(invalid.Content)), nil
		}
		return Reply{}, err
	}

	var r Reply
	if err := json.Unmarshal(resp.Content, &r); err != nil || strings.TrimSpace(r.ResponseText) == "" {
		return plainReply(resp.Text()), nil
	}
	if r.VoiceText == "" {
		r.VoiceText = r.ResponseText
	}
	return r, nil
}

func plainReply(text string) Reply {
	text = strings.TrimSpace(text)
	return Reply{ResponseText: text, VoiceText: text, Action: ActionNone}
}
