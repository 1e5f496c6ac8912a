package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/pable/footstats/internal/actions"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

const routeSystemPrompt = `You route football statistics questions to exactly one data action.

Reply with a single JSON object and nothing else:
{"action": "<action name>", "params": {<parameter name>: <value>, ...}}

Rules:
- Use only the actions and parameter names listed below.
- Team and player names must be copied exactly as the user wrote them.
- Omit optional parameters you do not need.
- If nothing fits, use "list_teams".

Actions:
`

const narrateSystemPrompt = `You are a football analyst answering questions about a league dataset.
You are given the question and the structured result of a data query.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- A null value means the data is not available; say so instead of treating it as zero.
- If the result holds an "error" key, explain what was missing in plain words.
- When several players are listed as tied, name all of them.
- Be concise.`

// Anthropic implements Router and Narrator with the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	catalog   string
	limiter   *rate.Limiter

	// Echo, when set, receives narration text as it streams in.
	Echo io.Writer
}

// NewAnthropic returns an adapter. catalog is the dispatcher's action
// description, listed in the routing prompt. rps paces API calls.
func NewAnthropic(apiKey, model string, catalog []actions.Spec, rps float64) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}
	if model == "" {
		model = DefaultModel
	}
	if rps <= 0 {
		rps = 1
	}
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 1024,
		catalog:   DescribeCatalog(catalog),
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// DescribeCatalog renders action specs one per line for the routing prompt.
func DescribeCatalog(specs []actions.Spec) string {
	var b strings.Builder
	for _, s := range specs {
		fmt.Fprintf(&b, "- %s: %s", s.Name, s.Doc)
		if len(s.Params) > 0 {
			parts := make([]string, 0, len(s.Params))
			for _, p := range s.Params {
				flag := "optional"
				if p.Required {
					flag = "required"
				}
				parts = append(parts, fmt.Sprintf("%s (%s, %s)", p.Name, p.Kind, flag))
			}
			fmt.Fprintf(&b, " [params: %s]", strings.Join(parts, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Route asks the model for an action object and decodes it.
func (a *Anthropic) Route(ctx context.Context, text string) (Intent, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return Intent{}, err
	}
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: routeSystemPrompt + a.catalog},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return Intent{}, cleanAPIError(err)
	}
	var reply strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}
	return ParseIntent(reply.String())
}

// Narrate streams a grounded answer for the result.
func (a *Anthropic) Narrate(ctx context.Context, question string, result any) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", data, question)
	stream := a.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: narrateSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	var out strings.Builder
	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				chunk := delta.Delta.AsTextDelta().Text
				out.WriteString(chunk)
				if a.Echo != nil {
					fmt.Fprint(a.Echo, chunk)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return out.String(), cleanAPIError(err)
	}
	return out.String(), nil
}

func cleanAPIError(err error) error {
	errStr := err.Error()
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
		return fmt.Errorf("API authentication failed, check your API key")
	}
	return fmt.Errorf("anthropic: %w", err)
}
