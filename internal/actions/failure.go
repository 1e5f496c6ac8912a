package actions

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Failure is a structured query-layer error. It serializes as
// {"error": reason, ...context} so callers can explain it to a user.
type Failure struct {
	Reason  string
	Context map[string]any
}

func (f *Failure) Error() string { return f.Reason }

// MarshalJSON flattens Context next to the "error" key.
func (f *Failure) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Context)+1)
	for k, v := range f.Context {
		out[k] = v
	}
	out["error"] = f.Reason
	return json.Marshal(out)
}

func fail(ctx map[string]any, format string, args ...any) *Failure {
	return &Failure{Reason: fmt.Sprintf(format, args...), Context: ctx}
}

// AsFailure reports whether result is a structured failure.
func AsFailure(result any) (*Failure, bool) {
	switch r := result.(type) {
	case *Failure:
		return r, true
	case error:
		var f *Failure
		if errors.As(r, &f) {
			return f, true
		}
	}
	return nil, false
}

// scope renders an optional team filter the way results report it.
func scope(team string) string {
	if team == "" {
		return "ALL"
	}
	return team
}

// nullable maps "" to nil for optional context values.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
