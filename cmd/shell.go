package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/footstats/internal/actions"
	"github.com/pable/footstats/internal/chat"
	"github.com/pable/footstats/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the dataset. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shell struct {
	app       *app
	assistant *chat.Assistant
	json      bool
}

func runShell(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	sh := &shell{app: a, json: jsonOut}
	if assistant, err := newAssistant(a, os.Stdout); err == nil {
		sh.assistant = assistant
	}

	cGreeting.Println("footstats shell")
	cMuted.Printf("%s: %d rows, %d teams\n", a.src.Path(), a.src.Table().Len(), len(a.src.Table().Teams()))
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("footstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens, err := splitArgs(line)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			sh.help()
		case "actions":
			report.PrintActions(os.Stdout, a.actions.Describe())
		case "json":
			sh.json = len(args) == 0 || args[0] != "off"
			cMuted.Printf("json output %s\n", onOff(sh.json))
		case "reload":
			if err := a.src.Reload(); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			cMuted.Printf("reloaded %d rows\n", a.src.Table().Len())
		case "ask":
			sh.ask(cmd, strings.TrimSpace(strings.TrimPrefix(line, name)))
		case "teams":
			sh.perform("list_teams", nil)
		case "players":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, `usage: players "<team>"`)
				continue
			}
			sh.perform("list_players", map[string]any{"team": args[0]})
		case "player":
			if len(args) != 2 {
				cError.Fprintln(os.Stderr, `usage: player "<team>" "<player>"`)
				continue
			}
			sh.perform("player_summary", map[string]any{"team": args[0], "player": args[1]})
		case "games":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, `usage: games "<team>"`)
				continue
			}
			sh.perform("team_games", map[string]any{"team": args[0]})
		default:
			if !contains(a.actions.Actions(), name) {
				cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
				continue
			}
			params, err := keyValues(args)
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			sh.perform(name, params)
		}
	}
	return nil
}

func (sh *shell) help() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"teams", "list all teams"},
		{`players "<team>"`, "list a team's players"},
		{`player "<team>" "<player>"`, "season summary of one player"},
		{`games "<team>"`, "list a team's games and keys"},
		{"<action> key=value ...", "run any action, e.g. top_players metric=xG top_n=10"},
		{"actions", "list actions and their parameters"},
		{"ask <question>", "ask in plain language (needs ANTHROPIC_API_KEY)"},
		{"reload", "re-read the dataset file"},
		{"json [on|off]", "toggle raw JSON output"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (sh *shell) perform(name string, params map[string]any) {
	result := sh.app.actions.Perform(name, params)
	sh.print(result)
}

func (sh *shell) print(result any) {
	if sh.json {
		report.PrintJSON(os.Stdout, result)
		return
	}
	if f, ok := actions.AsFailure(result); ok {
		printFailure(os.Stderr, f)
		return
	}
	report.PrintResult(os.Stdout, result)
}

// printFailure writes a failure with its context keys in sorted order.
func printFailure(w io.Writer, f *actions.Failure) {
	cError.Fprintf(w, "error: %s\n", f.Reason)
	keys := make([]string, 0, len(f.Context))
	for k := range f.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cMuted.Fprintf(w, "  %s: %v\n", k, f.Context[k])
	}
}

func (sh *shell) ask(cmd *cobra.Command, question string) {
	if sh.assistant == nil {
		cWarn.Fprintln(os.Stderr, "chat is disabled: set ANTHROPIC_API_KEY")
		return
	}
	if question == "" {
		cError.Fprintln(os.Stderr, "usage: ask <question>")
		return
	}
	ans, err := sh.assistant.Ask(cmd.Context(), question)
	fmt.Println()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cHeader.Printf("\n[%s]\n", ans.Intent.Action)
}

// splitArgs splits a line on whitespace, keeping single- or double-quoted
// runs together.
func splitArgs(line string) ([]string, error) {
	var out []string
	var cur strings.Builder
	var quote rune
	inToken := false
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				out = append(out, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inToken {
		out = append(out, cur.String())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return out, nil
}

// keyValues parses key=value tokens into action parameters.
func keyValues(tokens []string) (map[string]any, error) {
	params := make(map[string]any, len(tokens))
	for _, t := range tokens {
		k, v, ok := strings.Cut(t, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", t)
		}
		params[k] = v
	}
	return params, nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
