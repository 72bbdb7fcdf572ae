package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/store"
)

var (
	historySession string
	historyLimit   int
	historyFormat  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent turns of a session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("--limit must be positive, got %d", historyLimit)
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		turns, err := a.Router.History(cmd.Context(), historySession, historyLimit)
		if err != nil {
			return err
		}
		return writeTurns(cmd.OutOrStdout(), turns, historyFormat, a.Persona.Name)
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historySession, "session", "s", "", "Session id (required)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", store.DefaultRecentLimit, "Number of turns to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format: text, json or yaml")
	_ = historyCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(historyCmd)
}

// writeTurns prints turns most recent first.
func writeTurns(w io.Writer, turns []chat.Turn, format, assistant string) error {
	if turns == nil {
		turns = []chat.Turn{}
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(turns)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(turns); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		if len(turns) == 0 {
			fmt.Fprintln(w, hintStyle.Render("no turns recorded"))
			return nil
		}
		for _, turn := range turns {
			fmt.Fprintf(w, "%s %s\n", idStyle.Render(fmt.Sprintf("#%d", turn.ID)), hintStyle.Render(turn.Timestamp.Local().Format("2006-01-02 15:04:05")))
			fmt.Fprintf(w, "%s %s\n", userStyle.Render("You:"), turn.UserInput)
			fmt.Fprintf(w, "%s %s\n\n", assistantStyle.Render(assistant+":"), turn.Response)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (use text, json or yaml)", format)
	}
}
