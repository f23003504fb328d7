package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairpilot/model"
	"pairpilot/orchestrator"
	"pairpilot/storage"
)

type chatOptions struct {
	project    string
	session    string
	newSession bool
	copy       bool
	plain      bool
}

// chatSession binds one stored conversation to a turn runner.
type chatSession struct {
	app     *app
	orch    *orchestrator.Orchestrator
	session *storage.Session
	project *model.Project
	opts    chatOptions
	out     io.Writer
}

func newChatCmd(st *state) *cobra.Command {
	var opts chatOptions
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the assistant about a project",
		Long: `Send a message to the assistant. With a message argument one turn is run
and the command exits. Without one an interactive prompt is started.

Inside the prompt:
  /new              start a new session
  /project <query>  switch the active project
  /home             clear the active project
  /exit             quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, st, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "active project by name, ID or path")
	cmd.Flags().StringVarP(&opts.session, "session", "s", "", "resume the session with this ID prefix")
	cmd.Flags().BoolVarP(&opts.newSession, "new", "n", false, "start a new session")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "copy each reply to the clipboard")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print replies without markdown rendering")
	return cmd
}

func runChat(cmd *cobra.Command, st *state, opts chatOptions, message string) error {
	lock := storage.NewInstanceLock(st.cfg.DataDir())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			st.logger.Warn("failed to release instance lock", zap.Error(err))
		}
	}()

	a, err := st.open(appOptions{completion: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			st.logger.Warn("shutdown", zap.Error(err))
		}
	}()

	if a.providerErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Completion provider unavailable: "+a.providerErr.Error()))
	}

	cs := &chatSession{
		app:  a,
		orch: a.orchestrator(),
		opts: opts,
		out:  cmd.OutOrStdout(),
	}
	if err := cs.openSession(); err != nil {
		return err
	}
	if err := cs.selectProject(cmd.Context()); err != nil {
		return err
	}

	if strings.TrimSpace(message) != "" {
		return cs.send(cmd.Context(), message)
	}
	return cs.repl(cmd.Context(), cmd.InOrStdin())
}

func (cs *chatSession) openSession() error {
	sessions := cs.app.sessions
	switch {
	case cs.opts.session != "":
		id, err := findSessionID(sessions, cs.opts.session)
		if err != nil {
			return err
		}
		s, err := sessions.Load(id)
		if err != nil {
			return err
		}
		cs.session = s
		return nil
	case !cs.opts.newSession:
		if id, err := sessions.LoadCurrentSessionID(); err == nil && id != "" {
			if s, err := sessions.Load(id); err == nil {
				cs.session = s
				return nil
			}
			cs.app.logger.Debug("current session not loadable; starting a new one", zap.String("session_id", id))
		}
	}
	cs.newSession()
	return nil
}

func (cs *chatSession) newSession() {
	cs.session = &storage.Session{}
	if p := cs.app.provider; p != nil {
		cs.session.Provider = cs.app.cfg.Completion.Provider
		cs.session.Model = p.GetModel()
	}
	if cs.project != nil {
		id := cs.project.ID
		cs.session.ProjectID = &id
	}
}

// selectProject applies --project, falling back to the session's project.
func (cs *chatSession) selectProject(ctx context.Context) error {
	if cs.opts.project != "" {
		return cs.switchProject(ctx, cs.opts.project)
	}
	if cs.session.ProjectID == nil {
		return nil
	}
	p, err := cs.app.projects.Get(ctx, *cs.session.ProjectID)
	if err != nil {
		cs.app.logger.Warn("session project no longer available", zap.Int64("project_id", *cs.session.ProjectID), zap.Error(err))
		cs.session.ProjectID = nil
		return nil
	}
	cs.project = p
	return nil
}

func (cs *chatSession) switchProject(ctx context.Context, query string) error {
	p, err := resolveProject(ctx, cs.app.projects, query)
	if err != nil {
		return err
	}
	cs.project = p
	id := p.ID
	cs.session.ProjectID = &id
	return nil
}

func (cs *chatSession) repl(ctx context.Context, in io.Reader) error {
	scope := "home directory"
	if cs.project != nil {
		scope = cs.project.Name
	}
	fmt.Fprintln(cs.out, TitleStyle.Render("pairpilot")+DimStyle.Render(" "+Version+" | "+scope+" | /exit to quit"))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(cs.out, UserStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Fprintln(cs.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := cs.command(ctx, line)
			if err != nil {
				fmt.Fprintln(cs.out, ErrorStyle.Render(err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		if err := cs.send(ctx, line); err != nil {
			return err
		}
	}
}

func (cs *chatSession) command(ctx context.Context, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/exit", "/quit":
		return true, nil
	case "/new":
		cs.newSession()
		fmt.Fprintln(cs.out, DimStyle.Render("Started a new session."))
	case "/project":
		if arg == "" {
			return false, errors.New("usage: /project <query>")
		}
		if err := cs.switchProject(ctx, arg); err != nil {
			return false, err
		}
		fmt.Fprintln(cs.out, DimStyle.Render("Active project: ")+HighlightStyle.Render(cs.project.Name))
	case "/home":
		cs.project = nil
		cs.session.ProjectID = nil
		fmt.Fprintln(cs.out, DimStyle.Render("Active project cleared."))
	default:
		return false, fmt.Errorf("unknown command %s", name)
	}
	return false, nil
}

// send runs one turn. A failed turn is reported to the user and leaves the
// stored conversation untouched; only persistence errors are returned.
func (cs *chatSession) send(ctx context.Context, text string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	history := cs.session.ModelMessages()
	user := model.Message{Role: model.RoleUser, Content: text}
	messages := append(history, user)

	var active *int64
	if cs.project != nil {
		id := cs.project.ID
		active = &id
	}
	turn, err := cs.orch.Run(ctx, orchestrator.Request{Messages: messages, ActiveProjectID: active})
	cs.printDiagnostics(turn.Diagnostics)
	if err != nil {
		cs.app.logger.Debug("turn aborted", zap.Error(err))
		fmt.Fprintln(cs.out, ErrorStyle.Render(orchestrator.UserMessage(err)))
		return nil
	}

	for _, run := range turn.ToolRuns {
		fmt.Fprintln(cs.out, DimStyle.Render("  ran "+run.Call.Name))
	}
	cs.printReply(turn.Reply)

	if len(history) == 0 {
		cs.session.Name = storage.GenerateSessionName(text)
	}
	cs.session.SetMessages(append(messages, turn.NewMessages...))
	if err := cs.app.sessions.Save(cs.session); err != nil {
		return err
	}
	return cs.app.sessions.SaveCurrentSessionID(cs.session.ID)
}

func (cs *chatSession) printReply(reply string) {
	if cs.opts.plain {
		fmt.Fprintln(cs.out, reply)
	} else {
		fmt.Fprintln(cs.out, AssistantStyle.Render("assistant"))
		fmt.Fprintln(cs.out, renderMarkdown(reply, terminalWidth()))
	}
	if cs.opts.copy {
		if err := clipboard.WriteAll(reply); err != nil {
			fmt.Fprintln(cs.out, WarningStyle.Render("Copy failed: "+err.Error()))
		}
	}
}

func (cs *chatSession) printDiagnostics(diags model.Diagnostics) {
	for _, d := range diags {
		style := DimStyle
		if d.Severity == model.SeverityWarning {
			style = WarningStyle
		}
		fmt.Fprintln(cs.out, style.Render("  "+d.Message))
	}
}
