// Package assist serves the AI-assist intents. Requests go to the configured
// AI provider once; when there is none, or it fails, the offline synthesizer
// answers instead so the user always gets usable text.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/llm"
	"github.com/notely/notely/internal/logging"
)

// MaxAITags caps the tags taken from an AI reply
const MaxAITags = 7

// Completer is the AI backend the gateway talks to (llm.Router)
type Completer interface {
	IsConfigured() bool
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Options carries the optional inputs of an assist request
type Options struct {
	// Instructions are extra guidance appended to the system prompt
	Instructions string
	// Messages is the running chat history (chat only)
	Messages []core.Message
	// NoteContext is the note the user is chatting about (chat only)
	NoteContext string
	// TargetLanguage for the translate intent
	TargetLanguage string
}

// Result is the outcome of one assist call
type Result struct {
	Intent   core.Intent `json:"intent"`
	Text     string      `json:"text,omitempty"`
	Tags     []string    `json:"tags,omitempty"`
	Provider string      `json:"provider"`
	Fallback bool        `json:"fallback"`
}

// Gateway builds prompts per intent and falls back to the synthesizer
type Gateway struct {
	ai       Completer
	fallback *Synthesizer
	log      *logging.Logger
}

// NewGateway creates a gateway. ai may be nil, which means offline only.
func NewGateway(ai Completer, fallback *Synthesizer) *Gateway {
	if fallback == nil {
		fallback = NewSynthesizer(nil)
	}
	return &Gateway{
		ai:       ai,
		fallback: fallback,
		log:      logging.WithField("component", "assist"),
	}
}

// prompt is the per-intent request shape
type prompt struct {
	system      string
	user        string // %s receives the input text
	maxTokens   int
	temperature float64
}

var prompts = map[core.Intent]prompt{
	core.IntentSummarize: {
		system:      "You are a helpful assistant that creates concise, informative summaries. Focus on the key points and main ideas while maintaining clarity and coherence.",
		user:        "Please summarize the following text, keeping the main points and key information:\n\n%s",
		maxTokens:   500,
		temperature: 0.3,
	},
	core.IntentExpand: {
		system:      "You are a helpful assistant that expands and elaborates on text content. Add relevant details, examples, and explanations while maintaining the original meaning and context.",
		user:        "Please expand and elaborate on the following text, adding relevant details and examples:\n\n%s",
		maxTokens:   1000,
		temperature: 0.5,
	},
	core.IntentImprove: {
		system:      "You are a helpful assistant that improves text quality. Focus on enhancing clarity, grammar, structure, and readability while preserving the original meaning and intent.",
		user:        "%s",
		maxTokens:   1000,
		temperature: 0.4,
	},
	core.IntentTitle: {
		system:      "You are a helpful assistant that suggests concise, descriptive titles for text content. Return only the title, no additional text or formatting.",
		user:        "Suggest a concise title for the following text:\n\n%s",
		maxTokens:   50,
		temperature: 0.4,
	},
	core.IntentTags: {
		system:      "You are a helpful assistant that generates relevant tags for text content. Return only a comma-separated list of 3-7 relevant tags based on the content.",
		user:        "Generate relevant tags for the following text:\n\n%s",
		maxTokens:   100,
		temperature: 0.3,
	},
	core.IntentTranslate: {
		system:      "You are a helpful assistant that translates text accurately while preserving the original meaning and context. Provide only the translated text without additional commentary.",
		user:        "Translate the following text to %s:\n\n%s",
		maxTokens:   1000,
		temperature: 0.3,
	},
	core.IntentChat: {
		system:      "You are a helpful AI assistant integrated into a note-taking application. Help users with their notes by providing insights, suggestions, answering questions, and assisting with content creation and organization.",
		maxTokens:   800,
		temperature: 0.7,
	},
}

// Assist runs one intent. Only invalid input is returned as an error; every
// provider problem degrades to the offline synthesizer.
func (g *Gateway) Assist(ctx context.Context, intent core.Intent, text string, opts Options) (*Result, error) {
	if !intent.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", core.ErrInvalidInput, intent)
	}

	req, err := g.buildRequest(intent, text, opts)
	if err != nil {
		return nil, err
	}

	log := g.log.WithField("intent", string(intent))

	if g.ai == nil || !g.ai.IsConfigured() {
		log.Debug("no AI provider configured, using offline fallback")
		return g.synthesize(intent, text, opts, req), nil
	}

	resp, err := g.ai.Complete(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrProviderAuth):
			log.Warn("AI provider rejected the request, using offline fallback: %v", err)
		case errors.Is(err, core.ErrConfigurationMissing):
			log.Debug("no AI provider configured, using offline fallback")
		default:
			log.Warn("AI provider failed, using offline fallback: %v", err)
		}
		return g.synthesize(intent, text, opts, req), nil
	}

	result := &Result{Intent: intent, Provider: resp.Provider}
	content := strings.TrimSpace(resp.Content)

	if intent == core.IntentTags {
		result.Tags = parseTags(content)
		if len(result.Tags) == 0 {
			log.Warn("AI provider returned no tags, using offline fallback")
			return g.synthesize(intent, text, opts, req), nil
		}
		return result, nil
	}

	if content == "" {
		log.Warn("AI provider returned an empty completion, using offline fallback")
		return g.synthesize(intent, text, opts, req), nil
	}
	result.Text = content
	return result, nil
}

func (g *Gateway) buildRequest(intent core.Intent, text string, opts Options) (llm.Request, error) {
	p := prompts[intent]
	system := p.system
	if opts.Instructions != "" {
		system += "\n\n" + strings.TrimSpace(opts.Instructions)
	}

	if intent == core.IntentChat {
		messages := make([]core.Message, 0, len(opts.Messages)+2)
		if ctx := strings.TrimSpace(opts.NoteContext); ctx != "" {
			messages = append(messages, core.Message{
				Role:    core.RoleSystem,
				Content: "The user is working on this note:\n\n" + ctx,
			})
		}
		for _, m := range opts.Messages {
			if strings.TrimSpace(m.Content) == "" {
				continue
			}
			if m.Role != core.RoleAssistant {
				m.Role = core.RoleUser
			}
			messages = append(messages, m)
		}
		if t := strings.TrimSpace(text); t != "" {
			messages = append(messages, core.Message{Role: core.RoleUser, Content: t})
		}
		if len(messages) == 0 || messages[len(messages)-1].Role == core.RoleSystem {
			return llm.Request{}, fmt.Errorf("%w: messages are required for chat", core.ErrInvalidInput)
		}
		return llm.Request{System: system, Messages: messages, MaxTokens: p.maxTokens, Temperature: p.temperature}, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return llm.Request{}, fmt.Errorf("%w: text is required for %s", core.ErrInvalidInput, intent)
	}

	var user string
	switch intent {
	case core.IntentTranslate:
		target := strings.TrimSpace(opts.TargetLanguage)
		if target == "" {
			return llm.Request{}, fmt.Errorf("%w: target language is required for translation", core.ErrInvalidInput)
		}
		user = fmt.Sprintf(p.user, target, text)
	case core.IntentTitle:
		if utf8.RuneCountInString(text) > 500 {
			text = string([]rune(text)[:500])
		}
		user = fmt.Sprintf(p.user, text)
	default:
		user = fmt.Sprintf(p.user, text)
	}

	return llm.UserPrompt(system, user, p.maxTokens, p.temperature), nil
}

func (g *Gateway) synthesize(intent core.Intent, text string, opts Options, req llm.Request) *Result {
	result := &Result{Intent: intent, Provider: "offline", Fallback: true}

	switch intent {
	case core.IntentSummarize:
		result.Text = g.fallback.Summary(text)
	case core.IntentExpand:
		result.Text = g.fallback.Expansion(text)
	case core.IntentImprove:
		result.Text = g.fallback.Improvement(text)
	case core.IntentTitle:
		result.Text = g.fallback.Title(text)
	case core.IntentTranslate:
		result.Text = g.fallback.Translation(text, req.Messages[len(req.Messages)-1].Content)
	case core.IntentTags:
		result.Tags = g.fallback.Tags(text)
	case core.IntentChat:
		result.Text = g.fallback.Chat()
	}
	return result
}

// parseTags splits a comma-separated reply into at most MaxAITags tags
func parseTags(reply string) []string {
	var tags []string
	for _, part := range strings.Split(reply, ",") {
		tag := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "#"))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	tags = core.UniqueTags(tags)
	if len(tags) > MaxAITags {
		tags = tags[:MaxAITags]
	}
	return tags
}

// Summarize shortens text
func (g *Gateway) Summarize(ctx context.Context, text string) (string, error) {
	return g.text(ctx, core.IntentSummarize, text, Options{})
}

// Expand elaborates on text
func (g *Gateway) Expand(ctx context.Context, text string) (string, error) {
	return g.text(ctx, core.IntentExpand, text, Options{})
}

// Improve rewrites text for clarity
func (g *Gateway) Improve(ctx context.Context, text, instructions string) (string, error) {
	return g.text(ctx, core.IntentImprove, text, Options{Instructions: instructions})
}

// Title suggests a title for text
func (g *Gateway) Title(ctx context.Context, text string) (string, error) {
	return g.text(ctx, core.IntentTitle, text, Options{})
}

// Chat answers the last user message in messages
func (g *Gateway) Chat(ctx context.Context, messages []core.Message, noteContext string) (string, error) {
	return g.text(ctx, core.IntentChat, "", Options{Messages: messages, NoteContext: noteContext})
}

// Tags suggests tags for text
func (g *Gateway) Tags(ctx context.Context, text string) ([]string, error) {
	res, err := g.Assist(ctx, core.IntentTags, text, Options{})
	if err != nil {
		return nil, err
	}
	return res.Tags, nil
}

func (g *Gateway) text(ctx context.Context, intent core.Intent, text string, opts Options) (string, error) {
	res, err := g.Assist(ctx, intent, text, opts)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
