// Package chat is the port between free-text questions and the action
// dispatcher. A Router turns text into an Intent, the dispatcher computes
// the result, and a Narrator turns the result back into prose. The core
// never depends on a particular model vendor; Anthropic is one adapter.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Intent is a structured action request.
type Intent struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// Router turns free text into an Intent.
type Router interface {
	Route(ctx context.Context, text string) (Intent, error)
}

// Narrator turns a structured result into an answer for question.
type Narrator interface {
	Narrate(ctx context.Context, question string, result any) (string, error)
}

// Performer runs a named action. *actions.Dispatcher implements it.
type Performer interface {
	Perform(name string, params map[string]any) any
}

// Answer is the outcome of one question.
type Answer struct {
	Question string `json:"question"`
	Intent   Intent `json:"intent"`
	Result   any    `json:"result"`
	Text     string `json:"text"`
}

// Assistant wires a Router, the dispatcher and a Narrator.
type Assistant struct {
	Router   Router
	Narrator Narrator
	Actions  Performer
	Logger   *slog.Logger
}

// ErrNoIntent is returned when the router reply holds no action object.
var ErrNoIntent = errors.New("no action in router reply")

// Ask answers one question. Router and narrator errors are returned; an
// action failure is a result like any other and gets narrated.
func (a *Assistant) Ask(ctx context.Context, question string) (Answer, error) {
	ans := Answer{Question: question}
	intent, err := a.Router.Route(ctx, question)
	if err != nil {
		return ans, fmt.Errorf("route question: %w", err)
	}
	if intent.Params == nil {
		intent.Params = map[string]any{}
	}
	ans.Intent = intent
	a.logger().Debug("routed question", "action", intent.Action, "params", intent.Params)

	ans.Result = a.Actions.Perform(intent.Action, intent.Params)

	text, err := a.Narrator.Narrate(ctx, question, ans.Result)
	if err != nil {
		return ans, fmt.Errorf("narrate result: %w", err)
	}
	ans.Text = text
	return ans, nil
}

func (a *Assistant) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// ParseIntent decodes the first JSON object found in reply. Prose or code
// fences around the object are ignored.
func ParseIntent(reply string) (Intent, error) {
	obj, ok := firstObject(reply)
	if !ok {
		return Intent{}, ErrNoIntent
	}
	var in Intent
	if err := json.Unmarshal([]byte(obj), &in); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	in.Action = strings.TrimSpace(in.Action)
	if in.Action == "" {
		return Intent{}, ErrNoIntent
	}
	if in.Params == nil {
		in.Params = map[string]any{}
	}
	return in, nil
}

// firstObject returns the first balanced {...} span of s, honouring JSON
// string quoting.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth, inStr, esc := 0, false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
