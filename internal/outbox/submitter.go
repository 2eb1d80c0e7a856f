package outbox

import (
	"log/slog"
	"time"

	"github.com/dvaldez/termfolio/internal/terminal"
)

// StoreSubmitter persists completed contact forms to an outbox. Submissions
// are fire-and-forget from the terminal's point of view, so failures are
// logged rather than surfaced to the visitor.
type StoreSubmitter struct {
	outbox *Outbox
}

var _ terminal.Submitter = (*StoreSubmitter)(nil)

// NewStoreSubmitter wraps an outbox as a contact-form submitter.
func NewStoreSubmitter(o *Outbox) *StoreSubmitter {
	return &StoreSubmitter{outbox: o}
}

// Submit saves one completed form.
func (s *StoreSubmitter) Submit(form terminal.ContactForm) {
	sub := Submission{
		Name:           form.Name,
		ContactOption:  form.ContactOption,
		ContactDetails: form.ContactDetails,
		Message:        form.Message,
		ReceivedAt:     time.Now(),
	}
	path, err := s.outbox.Save(sub)
	if err != nil {
		slog.Error("saving contact submission", "error", err)
		return
	}
	slog.Info("contact submission saved", "path", path, "from", sub.Name)
}
