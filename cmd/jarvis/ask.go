package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askSession string
	askBackend string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		backend := askBackend
		if backend == "" {
			backend = a.DefaultBackend()
		}
		res := a.Router.Route(cmd.Context(), askSession, strings.Join(args, " "), backend)
		printResult(cmd.OutOrStdout(), a.Persona.Name, res)
		if !res.OK() {
			return errors.New(string(res.Err.Kind) + " error")
		}
		if verbose {
			cmd.PrintErrln(idStyle.Render("session " + res.SessionID))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Session to continue (default: a new session)")
	askCmd.Flags().StringVarP(&askBackend, "backend", "b", "", "Backend to use (openai or llama)")
	rootCmd.AddCommand(askCmd)
}
