package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Jarvistrey/Jarvis-AI/internal/app"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/ai"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/router"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/speech"
)

var (
	chatSession string
	chatBackend string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation. Lines starting with a slash are commands:

  /use openai|llama   Switch the backend for the following messages
  /clear              Forget the in-memory context of this session
  /voice on|off       Toggle spoken replies
  /session            Show the session id
  /help               Show this help
  /exit               Leave the conversation`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return newREPL(a, chatSession, chatBackend).run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "Resume an existing session")
	chatCmd.Flags().StringVarP(&chatBackend, "backend", "b", "", "Backend to start with (openai or llama)")
	rootCmd.AddCommand(chatCmd)
}

type repl struct {
	app       *app.App
	sessionID string
	backend   string
	voice     bool
	speaker   speech.Speaker
}

func newREPL(a *app.App, sessionID, backend string) *repl {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if backend == "" {
		backend = a.DefaultBackend()
	}
	return &repl{
		app:       a,
		sessionID: sessionID,
		backend:   backend,
		voice:     a.Config.Voice.Enabled,
		speaker:   a.Speaker,
	}
}

func (r *repl) run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, bannerStyle.Render(r.app.Persona.Title))
	fmt.Fprintln(out, hintStyle.Render(fmt.Sprintf("session %s, backend %s, /help for commands", r.sessionID, r.backend)))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, userStyle.Render("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/"):
			if r.command(out, line) {
				return nil
			}
		default:
			r.send(ctx, out, line)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *repl) send(ctx context.Context, out io.Writer, prompt string) {
	res := r.app.Router.Route(ctx, r.sessionID, prompt, r.backend)
	printResult(out, r.app.Persona.Name, res)

	if res.OK() && r.voice {
		if err := r.speaker.Speak(ctx, res.Text); err != nil {
			fmt.Fprintln(out, errorStyle.Render("voice output failed: "+err.Error()))
		}
	}
}

// command handles a slash command and reports whether the REPL should exit.
func (r *repl) command(out io.Writer, line string) bool {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch strings.ToLower(fields[0]) {
	case "/exit", "/quit":
		fmt.Fprintln(out, hintStyle.Render("Goodbye."))
		return true
	case "/use":
		kind := ai.ParseKind(arg)
		if !kind.Valid() {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("unknown backend %q, use openai or llama", arg)))
			return false
		}
		r.backend = kind.String()
		fmt.Fprintln(out, hintStyle.Render("backend: "+r.backend))
	case "/clear":
		r.app.Router.Reset(r.sessionID)
		fmt.Fprintln(out, hintStyle.Render("context cleared"))
	case "/voice":
		switch strings.ToLower(arg) {
		case "on":
			r.voice = true
			if _, ok := r.speaker.(speech.Nop); ok {
				voice := r.app.Config.Voice
				r.speaker = &speech.CommandSpeaker{Command: voice.Command, Rate: voice.Rate}
			}
		case "off":
			r.voice = false
		default:
			fmt.Fprintln(out, errorStyle.Render("usage: /voice on|off"))
			return false
		}
		fmt.Fprintln(out, hintStyle.Render(fmt.Sprintf("voice output: %t", r.voice)))
	case "/session":
		fmt.Fprintln(out, idStyle.Render(r.sessionID))
	case "/help":
		fmt.Fprintln(out, hintStyle.Render("/use openai|llama, /clear, /voice on|off, /session, /exit"))
	default:
		fmt.Fprintln(out, errorStyle.Render("unknown command "+fields[0]+", try /help"))
	}
	return false
}

func printResult(out io.Writer, assistant string, res router.Result) {
	if !res.OK() {
		fmt.Fprintln(out, errorStyle.Render(res.Text))
		return
	}
	fmt.Fprintf(out, "%s %s\n", assistantStyle.Render(assistant+":"), res.Text)
}
