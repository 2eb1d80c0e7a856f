package terminal

import (
	"log/slog"
	"strings"
)

// contactMethods are the known contact options. Matching one only phrases the
// next prompt more naturally; the stored value is always the raw input.
var contactMethods = []string{"email", "linkedin", "phone", "whatsapp", "telegram", "discord"}

// advanceContactForm consumes one input line for the active contact form.
// Each step captures its field verbatim with no validation; even text that
// looks like a command is form data while the form is open.
func (e *Engine) advanceContactForm(input string) Result {
	form := *e.state.ContactForm

	switch form.Step {
	case 1:
		form.Name = input
		form.Step = 2
		return Result{
			Output: []string{
				"Nice to meet you, " + form.Name + ".",
				"Step 2/4 — How should I reach you? (email, linkedin, phone, whatsapp, telegram, discord)",
			},
			NewState: &Patch{ContactForm: &form},
		}

	case 2:
		form.ContactOption = input
		form.Step = 3
		prompt := "Step 3/4 — Where can I reach you?"
		if method := matchContactMethod(input); method != "" {
			prompt = "Step 3/4 — What's your " + method + "?"
		}
		return Result{
			Output:   []string{prompt},
			NewState: &Patch{ContactForm: &form},
		}

	case 3:
		form.ContactDetails = input
		form.Step = 4
		return Result{
			Output:   []string{"Step 4/4 — What's your message?"},
			NewState: &Patch{ContactForm: &form},
		}

	case 4:
		form.Message = input
		completed := form
		e.fireSubmission(completed)
		return Result{
			Output: []string{
				"Thanks, " + completed.Name + ". Your message is on its way.",
			},
			NewState: &Patch{
				ClearContactForm:     true,
				CompletedContactForm: &completed,
			},
			StartSubmitting: true,
		}
	}

	// Unreachable for well-formed state; recover by discarding the form.
	slog.Warn("contact form in unknown step", "step", form.Step)
	return Result{
		Output:   []string{"Something went wrong with the form. Starting over — type contact to retry."},
		NewState: &Patch{ClearContactForm: true},
	}
}

// abortContactForm discards the active form with no submission.
func (e *Engine) abortContactForm() Result {
	return Result{
		Output:   []string{"Contact form cancelled."},
		NewState: &Patch{ClearContactForm: true},
	}
}

// fireSubmission dispatches the completed form to the submitter without
// waiting. The user-visible confirmation is optimistic: delivery success or
// failure never feeds back into the terminal.
func (e *Engine) fireSubmission(form ContactForm) {
	if e.submit == nil {
		slog.Debug("no submitter configured, dropping contact form", "name", form.Name)
		return
	}
	go e.submit.Submit(form)
}

// matchContactMethod returns the known method the input names, if any,
// by case-insensitive substring match.
func matchContactMethod(input string) string {
	lower := strings.ToLower(input)
	for _, m := range contactMethods {
		if strings.Contains(lower, m) {
			return m
		}
	}
	return ""
}
