package terminal

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvaldez/termfolio/internal/provider"
)

const (
	exitCommand = "exit"
	byeCommand  = "bye"
)

// request carries the inputs a command handler may consult. Handlers are pure
// with respect to engine state: they read the snapshot they were given and
// describe changes through the returned Result.
type request struct {
	args  []string
	state State
	repos []provider.Repository
}

// command is one registry entry: a name, a help description, and a handler.
type command struct {
	name        string
	description string
	rootOnly    bool
	run         func(ctx context.Context, req request) Result
}

// registry maps case-sensitive command names to handlers. Lookup is exact;
// privilege checks live in the handlers themselves so the registry stays a
// plain table.
type registry struct {
	order    []string
	commands map[string]command
}

func newRegistry(e *Engine) *registry {
	r := &registry{commands: make(map[string]command)}
	for _, c := range []command{
		{name: "help", description: "List available commands", run: e.cmdHelp},
		{name: "projects", description: "Browse my GitHub repositories", run: e.cmdProjects},
		{name: "resume", description: "Download my resume", run: e.cmdResume},
		{name: "code", description: "Download the source of this site", run: e.cmdCode},
		{name: "chat", description: "Talk to my AI assistant", run: e.cmdChat},
		{name: "contact", description: "Send me a message", run: e.cmdContact},
		{name: "home", description: "Return to the home directory", run: e.cmdHome},
		{name: "root", description: "Switch to root mode", run: e.cmdRoot},
		{name: "clear", description: "Clear the terminal", run: e.cmdClear},
		{name: "play", description: "Play a game", rootOnly: true, run: e.cmdPlay},
		{name: "schedule", description: "Schedule a meeting", rootOnly: true, run: e.cmdSchedule},
		{name: exitCommand, description: "Abort the current form", run: e.cmdExit},
		{name: byeCommand, description: "End the chat session", run: e.cmdBye},
	} {
		r.order = append(r.order, c.name)
		r.commands[c.name] = c
	}
	return r
}

func (r *registry) lookup(name string) (command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// cmdHelp lists commands. Root-only entries appear only in root mode; the
// flow-control commands (exit, bye) are left out of the listing since they
// only mean something inside their flows.
func (e *Engine) cmdHelp(_ context.Context, req request) Result {
	out := []string{"Available commands:", ""}
	for _, name := range e.registry.order {
		c := e.registry.commands[name]
		if c.name == exitCommand || c.name == byeCommand {
			continue
		}
		if c.rootOnly && !req.state.IsRoot {
			continue
		}
		out = append(out, fmt.Sprintf("  %-10s %s", c.name, c.description))
	}
	return Result{Output: out}
}

// cmdProjects lists the repository snapshot, pinned and personal repositories
// first. An empty snapshot means the fetch hasn't landed yet, not an error.
func (e *Engine) cmdProjects(_ context.Context, req request) Result {
	if len(req.repos) == 0 {
		return Result{Output: []string{
			"Projects are still loading from GitHub...",
			"Try again in a moment.",
		}}
	}

	out := []string{"My GitHub projects:", ""}
	var orgRepos []provider.Repository
	for _, repo := range req.repos {
		if repo.IsOrganizationRepo {
			orgRepos = append(orgRepos, repo)
			continue
		}
		out = append(out, formatRepoLine(repo))
	}
	if len(orgRepos) > 0 {
		out = append(out, "", "Organization projects:")
		for _, repo := range orgRepos {
			out = append(out, formatRepoLine(repo))
		}
	}
	out = append(out, "", "Ask the chat assistant about any of them — type chat.")
	return Result{Output: out}
}

func formatRepoLine(repo provider.Repository) string {
	desc := repo.Description
	if desc == "" {
		desc = "(no description)"
	}
	line := fmt.Sprintf("  %-24s %s", repo.Name, desc)
	if len(repo.Languages) > 0 {
		line += " [" + strings.Join(repo.Languages, ", ") + "]"
	}
	return line
}

// cmdResume describes the resume and asks the presentation layer to trigger
// the actual file save. The engine itself never downloads anything.
func (e *Engine) cmdResume(_ context.Context, _ request) Result {
	out := []string{"Preparing resume download..."}
	if e.opts.ResumeURL != "" {
		out = append(out, "Resume available at "+e.opts.ResumeURL)
	}
	return Result{Output: out, StartDownload: true}
}

// cmdCode points at the source of the site; like resume, the download itself
// is the presentation layer's job.
func (e *Engine) cmdCode(_ context.Context, _ request) Result {
	out := []string{"This terminal is open source."}
	if e.opts.SourceURL != "" {
		out = append(out, "Source: "+e.opts.SourceURL)
	}
	return Result{Output: out, StartDownload: true}
}

// cmdChat opens an AI chat session. Entering chat does not require or change
// privilege; the prompt path collapses to empty while chatting.
func (e *Engine) cmdChat(_ context.Context, _ request) Result {
	agent := e.opts.Agent
	return Result{
		Output: []string{
			fmt.Sprintf("%s %s — %s", agent.Icon, agent.Name, agent.Description),
			"Ask me anything about " + e.opts.OwnerName + "'s projects and experience.",
			"Type bye to end the chat.",
		},
		NewState: &Patch{
			ChatSession: &ChatSession{Agent: agent, IsActive: true},
			CurrentPath: strPtr(""),
		},
	}
}

// cmdContact starts the 4-step contact wizard. While the form is active the
// engine routes all input here, so the handler only needs to open it.
func (e *Engine) cmdContact(_ context.Context, _ request) Result {
	return Result{
		Output: []string{
			"Let's get in touch. Type exit at any time to cancel.",
			"",
			"Step 1/4 — What's your name?",
		},
		NewState: &Patch{ContactForm: &ContactForm{Step: 1}},
	}
}

// cmdHome returns to the anonymous user state. Idempotent in user mode; from
// root mode it demotes unconditionally rather than erroring.
func (e *Engine) cmdHome(_ context.Context, req request) Result {
	if !req.state.IsRoot && req.state.CurrentPath == "~" {
		return Result{Output: []string{"Already in home directory."}}
	}
	return Result{
		Output:   []string{"Returned home."},
		NewState: e.userPatch(),
	}
}

// cmdRoot promotes to root mode. Idempotent: already-root replies with a
// notice and a no-op patch. When a root password is configured, the promotion
// is deferred behind the password prompt flow.
func (e *Engine) cmdRoot(_ context.Context, req request) Result {
	if req.state.IsRoot {
		return Result{
			Output:   []string{"Already in root mode."},
			NewState: &Patch{IsRoot: boolPtr(true)},
		}
	}
	if e.opts.RootPassword != "" {
		return Result{
			Output: []string{"Password required. Enter the root password:"},
			NewState: &Patch{PasswordPrompt: &PasswordPrompt{
				IsActive: true,
				Command:  "root",
				Expected: e.opts.RootPassword,
			}},
		}
	}
	return e.promoteToRoot()
}

// promoteToRoot applies the root state patch with the standard warning line.
func (e *Engine) promoteToRoot() Result {
	return Result{
		Output: []string{
			"Entered root mode.",
			"Careful now — with great power comes great responsibility.",
		},
		NewState: &Patch{
			IsRoot:      boolPtr(true),
			CurrentPath: strPtr("/"),
			PromptName:  strPtr("root"),
			Theme:       themePtr(e.opts.RootTheme),
		},
	}
}

// userPatch is the standard demote-to-user state patch.
func (e *Engine) userPatch() *Patch {
	return &Patch{
		IsRoot:      boolPtr(false),
		CurrentPath: strPtr("~"),
		PromptName:  strPtr(e.opts.PromptName),
		Theme:       themePtr(e.opts.UserTheme),
	}
}

// cmdClear signals the presentation layer to wipe visible history; the engine
// keeps no scroll-back of its own.
func (e *Engine) cmdClear(_ context.Context, _ request) Result {
	return Result{Output: []string{}, Clear: true}
}

// cmdPlay is root-gated. The privilege check is the handler's own, not the
// registry's, so the registry stays a plain name table.
func (e *Engine) cmdPlay(_ context.Context, req request) Result {
	if !req.state.IsRoot {
		return Result{Output: []string{"Access denied: play requires root mode."}}
	}
	return Result{Output: []string{"Games are coming soon. Check back later."}}
}

// cmdSchedule is root-gated like play.
func (e *Engine) cmdSchedule(_ context.Context, req request) Result {
	if !req.state.IsRoot {
		return Result{Output: []string{"Access denied: schedule requires root mode."}}
	}
	return Result{Output: []string{"Meeting scheduling is coming soon."}}
}

// cmdExit outside an active contact form has nothing to abort; the in-form
// case is routed by the engine before command dispatch.
func (e *Engine) cmdExit(_ context.Context, _ request) Result {
	return Result{Output: []string{"Nothing to exit."}}
}

// cmdBye outside a chat session has nothing to close; the in-session case is
// routed by the engine before command dispatch.
func (e *Engine) cmdBye(_ context.Context, _ request) Result {
	return Result{Output: []string{"No active chat session."}}
}
