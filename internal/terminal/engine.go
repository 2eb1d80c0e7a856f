package terminal

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/dvaldez/termfolio/internal/provider"
)

// ChatRelay obtains an assistant reply for a chat-session message. The wire
// client absorbs upstream failures into a displayable string; a non-nil error
// indicates the relay itself could not be reached at all.
type ChatRelay interface {
	SendMessage(ctx context.Context, message string, repos []provider.Repository) (string, error)
}

// Submitter receives completed contact forms. Submissions are fire-and-forget:
// the engine never learns or surfaces the delivery outcome.
type Submitter interface {
	Submit(form ContactForm)
}

// Options configures a terminal engine instance.
type Options struct {
	// PromptName is the cosmetic username segment of the prompt.
	PromptName string
	// RootPassword guards the root command when non-empty. When empty,
	// root promotes directly.
	RootPassword string
	// UserTheme and RootTheme are the display color sets for the two modes.
	UserTheme Theme
	RootTheme Theme
	// ResumeURL and SourceURL are handed to the presentation layer by the
	// resume and code commands alongside the startDownload flag.
	ResumeURL string
	SourceURL string
	// Agent is the chat persona opened by the chat command.
	Agent ChatAgent
	// OwnerName is the portfolio subject's display name.
	OwnerName string
}

// defaults fills zero-valued options.
func (o Options) defaults() Options {
	if o.PromptName == "" {
		o.PromptName = "visitor"
	}
	if o.UserTheme == (Theme{}) {
		o.UserTheme = Theme{
			PromptColor:  "#50fa7b",
			TextColor:    "#f8f8f2",
			ErrorColor:   "#ff5555",
			SuccessColor: "#50fa7b",
		}
	}
	if o.RootTheme == (Theme{}) {
		o.RootTheme = Theme{
			PromptColor:  "#ff5555",
			TextColor:    "#f8f8f2",
			ErrorColor:   "#ff5555",
			SuccessColor: "#f1fa8c",
		}
	}
	if o.Agent == (ChatAgent{}) {
		o.Agent = ChatAgent{
			ID:          "folio",
			Name:        "folio",
			Description: "Portfolio assistant",
			Status:      "online",
			Icon:        "◆",
		}
	}
	if o.OwnerName == "" {
		o.OwnerName = "the site owner"
	}
	return o
}

// Engine routes raw input lines to flow handlers, the chat relay, or the
// command registry, and owns the session state. One engine per terminal
// session; methods are safe for concurrent use because the serving layer may
// push repository snapshots from a background goroutine.
type Engine struct {
	mu       sync.Mutex
	state    State
	repos    []provider.Repository
	opts     Options
	relay    ChatRelay
	submit   Submitter
	registry *registry
}

// NewEngine creates an engine in the anonymous user state. relay and submit
// are injected capabilities; either may be nil, in which case chatting reports
// the assistant as unavailable and completed contact forms go nowhere.
func NewEngine(opts Options, relay ChatRelay, submit Submitter) *Engine {
	opts = opts.defaults()
	e := &Engine{
		opts:   opts,
		relay:  relay,
		submit: submit,
	}
	e.registry = newRegistry(e)
	e.state = e.userState()
	return e
}

// userState is the baseline anonymous session state.
func (e *Engine) userState() State {
	return State{
		IsRoot:      false,
		CurrentPath: "~",
		PromptName:  e.opts.PromptName,
		Theme:       e.opts.UserTheme,
	}
}

// SetRepositories stores a fresh repository snapshot. The snapshot is passed
// through to the projects command and the chat relay.
func (e *Engine) SetRepositories(repos []provider.Repository) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.repos = repos
}

// State returns a copy of the current session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Prompt returns the rendered prompt string.
func (e *Engine) Prompt() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Prompt()
}

// PromptColor returns the active theme's prompt color.
func (e *Engine) PromptColor() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Theme.PromptColor
}

// Execute routes one raw input line and returns the result. Active flows take
// precedence over command dispatch in a fixed order: password prompt, then
// contact form, then chat session. Every path returns a well-formed Result;
// Execute never panics on hostile input and never returns an error.
func (e *Engine) Execute(ctx context.Context, raw string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	input := strings.TrimSpace(raw)
	if input == "" {
		return Result{Output: []string{}}
	}

	// Password prompt owns the very next input outright.
	if pp := e.state.PasswordPrompt; pp != nil && pp.IsActive {
		return e.finish(e.resolvePassword(input))
	}

	// An active contact form captures everything except the literal exit.
	if e.state.ContactForm != nil {
		if input == exitCommand {
			return e.finish(e.abortContactForm())
		}
		return e.finish(e.advanceContactForm(input))
	}

	// An active chat session captures everything except the literal bye.
	if cs := e.state.ChatSession; cs != nil && cs.IsActive {
		if input == byeCommand {
			return e.finish(e.closeChat())
		}
		return e.finish(e.chatTurn(ctx, input))
	}

	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]

	cmd, ok := e.registry.lookup(name)
	if !ok {
		slog.Debug("unknown terminal command", "command", name)
		return Result{Output: []string{
			"Command not found: " + name,
			"Type help for available commands.",
		}}
	}

	res := cmd.run(ctx, request{args: args, state: e.state, repos: e.repos})
	return e.finish(res)
}

// finish merges the result's state patch and returns the result unchanged.
func (e *Engine) finish(res Result) Result {
	res.NewState.apply(&e.state)
	if res.Output == nil {
		res.Output = []string{}
	}
	return res
}
