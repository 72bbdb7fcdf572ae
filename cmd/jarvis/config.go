package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Jarvistrey/Jarvis-AI/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		row := func(name string, value any) {
			fmt.Fprintf(tw, "%s\t%v\n", labelStyle.Render(name), value)
		}
		row("config_file", cfg.Path)
		row("remote_provider", cfg.Remote.Provider)
		row("openai_api_key", orUnset(config.Mask(cfg.Remote.APIKey)))
		row("remote_model", orUnset(cfg.Remote.Model))
		row("remote_base_url", orUnset(cfg.Remote.BaseURL))
		row("remote_timeout", cfg.Remote.Timeout)
		row("llama_model_path", orUnset(cfg.Local.ModelPath))
		row("llama_command", cfg.Local.Command)
		row("llama_timeout", cfg.Local.Timeout)
		row("llama_flatten_history", cfg.Local.FlattenHistory)
		row("default_backend", cfg.Chat.DefaultBackend)
		row("persona", orUnset(cfg.Chat.Persona))
		row("rehydrate_turns", cfg.Chat.RehydrateTurns)
		row("database_path", cfg.Store.Path)
		row("voice_output", cfg.Voice.Enabled)
		row("voice_command", cfg.Voice.Command)
		row("voice_rate", cfg.Voice.Rate)
		return tw.Flush()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Write one setting to the config file",
	Long:  "Write one setting to the config file. Fields: " + strings.Join(config.Fields(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile()
		file, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		if err := file.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(path, file); err != nil {
			return err
		}
		cmd.Println(hintStyle.Render(fmt.Sprintf("%s updated in %s", args[0], path)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
