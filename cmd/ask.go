package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/footstats/internal/chat"
	"github.com/pable/footstats/internal/report"
)

var (
	askModel  string
	askAPIKey string
	askShow   bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question in plain language (requires ANTHROPIC_API_KEY)",
	Long: `Route a free-text question to one action with a language model, run it
against the dataset and narrate the result. Answers are grounded only in the
action result.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askModel, "model", "", "Anthropic model to use (or $FOOTSTATS_MODEL)")
	askCmd.Flags().StringVar(&askAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	askCmd.Flags().BoolVar(&askShow, "show", false, "also print the routed action and its result")

	rootCmd.AddCommand(askCmd)
}

// newAssistant builds the chat assistant over an open dataset. Narration
// streams to echo when it is non-nil.
func newAssistant(a *app, echo *os.File) (*chat.Assistant, error) {
	key := cfg.Chat.APIKey
	if askAPIKey != "" {
		key = askAPIKey
	}
	model := cfg.Chat.Model
	if askModel != "" {
		model = askModel
	}
	llm, err := chat.NewAnthropic(key, model, a.actions.Describe(), cfg.Chat.RPS)
	if err != nil {
		return nil, err
	}
	if echo != nil {
		llm.Echo = echo
	}
	return &chat.Assistant{Router: llm, Narrator: llm, Actions: a.actions}, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	var echo *os.File
	if !jsonOut {
		echo = os.Stdout
	}
	assistant, err := newAssistant(a, echo)
	if err != nil {
		return err
	}

	ans, err := assistant.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if jsonOut {
		return report.PrintJSON(os.Stdout, ans)
	}
	fmt.Println()
	if askShow {
		fmt.Printf("\naction: %s %v\n", ans.Intent.Action, ans.Intent.Params)
		return report.PrintResult(os.Stdout, ans.Result)
	}
	return nil
}
