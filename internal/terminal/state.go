// Package terminal implements the portfolio terminal core: a line-oriented
// command dispatcher with session state, a contact-form wizard, a one-shot
// password prompt, and an AI chat-session mode. The presentation layer feeds
// it raw input lines and renders the results; the engine never errors out to
// its caller.
package terminal

import "time"

// Theme is a display-only color set carried in session state for the
// presentation layer to read.
type Theme struct {
	PromptColor  string `json:"promptColor"`
	TextColor    string `json:"textColor"`
	ErrorColor   string `json:"errorColor"`
	SuccessColor string `json:"successColor"`
}

// ChatAgent describes the assistant persona shown while a chat session is open.
type ChatAgent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Icon        string `json:"icon"`
}

// ChatMessage is one turn in a chat session's message log.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession holds an open AI conversation. While IsActive, every input that
// is not the literal bye command is forwarded to the agent.
type ChatSession struct {
	Agent    ChatAgent     `json:"agent"`
	Messages []ChatMessage `json:"messages"`
	IsActive bool          `json:"isActive"`
}

// ContactForm is the in-progress (or completed) 4-step contact wizard state.
// Values are captured verbatim from user input, one field per step.
type ContactForm struct {
	Step           int    `json:"step"` // 1..4
	Name           string `json:"name"`
	ContactOption  string `json:"contactOption"`
	ContactDetails string `json:"contactDetails"`
	Message        string `json:"message"`
}

// PasswordPrompt is the one-shot authentication state for a privileged
// command. The next input resolves it either way; there is no retry loop.
type PasswordPrompt struct {
	IsActive bool   `json:"isActive"`
	Command  string `json:"command"`
	Expected string `json:"-"`
}

// State is the full session record. It is owned exclusively by the Engine and
// mutated only by merging patches returned from handlers.
type State struct {
	IsRoot               bool            `json:"isRoot"`
	CurrentPath          string          `json:"currentPath"`
	PromptName           string          `json:"promptName"`
	Theme                Theme           `json:"theme"`
	ChatSession          *ChatSession    `json:"chatSession,omitempty"`
	ContactForm          *ContactForm    `json:"contactForm,omitempty"`
	CompletedContactForm *ContactForm    `json:"completedContactForm,omitempty"`
	PasswordPrompt       *PasswordPrompt `json:"passwordPrompt,omitempty"`
	IsTyping             bool            `json:"isTyping"`
}

// Prompt renders the cosmetic prompt string for the presentation layer.
func (s State) Prompt() string {
	return s.PromptName + ":" + s.CurrentPath + "$"
}

// Patch is a partial state update returned by a handler. Nil pointer fields
// are left untouched; the Clear flags remove the corresponding optional field.
type Patch struct {
	IsRoot               *bool
	CurrentPath          *string
	PromptName           *string
	Theme                *Theme
	ChatSession          *ChatSession
	ClearChatSession     bool
	ContactForm          *ContactForm
	ClearContactForm     bool
	CompletedContactForm *ContactForm
	PasswordPrompt       *PasswordPrompt
	ClearPasswordPrompt  bool
	IsTyping             *bool
}

// apply merges the patch into the given state.
func (p *Patch) apply(s *State) {
	if p == nil {
		return
	}
	if p.IsRoot != nil {
		s.IsRoot = *p.IsRoot
	}
	if p.CurrentPath != nil {
		s.CurrentPath = *p.CurrentPath
	}
	if p.PromptName != nil {
		s.PromptName = *p.PromptName
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.ClearChatSession {
		s.ChatSession = nil
	} else if p.ChatSession != nil {
		s.ChatSession = p.ChatSession
	}
	if p.ClearContactForm {
		s.ContactForm = nil
	} else if p.ContactForm != nil {
		s.ContactForm = p.ContactForm
	}
	if p.CompletedContactForm != nil {
		s.CompletedContactForm = p.CompletedContactForm
	}
	if p.ClearPasswordPrompt {
		s.PasswordPrompt = nil
	} else if p.PasswordPrompt != nil {
		s.PasswordPrompt = p.PasswordPrompt
	}
	if p.IsTyping != nil {
		s.IsTyping = *p.IsTyping
	}
}

// Result is the sole channel through which a handler affects session state or
// signals side effects to the presentation layer.
type Result struct {
	// Output is the ordered list of display lines; may be empty, never nil
	// for a handled input.
	Output []string `json:"output"`
	// NewState is an optional partial state update merged by the engine.
	NewState *Patch `json:"-"`
	// Clear asks the presentation layer to wipe visible history.
	Clear bool `json:"clear,omitempty"`
	// StartDownload asks the presentation layer to trigger a file save.
	StartDownload bool `json:"startDownload,omitempty"`
	// StartSubmitting signals that a contact submission was fired.
	StartSubmitting bool `json:"startSubmitting,omitempty"`
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func themePtr(t Theme) *Theme { return &t }
