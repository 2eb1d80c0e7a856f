// Package outbox persists contact-form submissions as markdown documents
// with YAML frontmatter, one file per submission.
package outbox

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Submission is one completed contact form.
type Submission struct {
	Name           string    `json:"name"`
	ContactOption  string    `json:"contactOption"`
	ContactDetails string    `json:"contactDetails"`
	Message        string    `json:"message"`
	ReceivedAt     time.Time `json:"receivedAt"`
}

// Outbox stores submissions under a single directory. Writes are guarded by
// a file lock so a CLI reader and the server can share the directory.
type Outbox struct {
	dir         string
	lockTimeout time.Duration
}

// New returns an outbox rooted at dir. The directory is created on first save.
func New(dir string) *Outbox {
	return &Outbox{dir: dir, lockTimeout: DefaultLockTimeout}
}

// Dir returns the outbox directory.
func (o *Outbox) Dir() string {
	return o.dir
}

// Save writes one submission to disk and returns the file path.
func (o *Outbox) Save(sub Submission) (string, error) {
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = time.Now()
	}
	path := filepath.Join(o.dir, fileNameFor(sub))

	matter := map[string]any{
		"name":            sub.Name,
		"contact_option":  sub.ContactOption,
		"contact_details": sub.ContactDetails,
		"received_at":     sub.ReceivedAt.Format(time.RFC3339),
	}

	err := withLock(o.dir, o.lockTimeout, func() error {
		return writeDocument(path, matter, sub.Message)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// List reads every submission in the outbox, newest first.
func (o *Outbox) List() ([]Submission, error) {
	var subs []Submission
	err := withReadLock(o.dir, o.lockTimeout, func() error {
		entries, err := os.ReadDir(o.dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("reading outbox %s: %w", o.dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			sub, err := readSubmission(filepath.Join(o.dir, e.Name()))
			if err != nil {
				return err
			}
			subs = append(subs, sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ReceivedAt.After(subs[j].ReceivedAt) })
	return subs, nil
}

// --- Internal helpers ---

// fileNameFor builds a sortable, collision-resistant file name from the
// submission time and sender name.
func fileNameFor(sub Submission) string {
	slug := strings.ToLower(sub.Name)
	slug = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "anonymous"
	}
	return fmt.Sprintf("%s-%s.md", sub.ReceivedAt.UTC().Format("20060102-150405.000000000"), slug)
}

func readSubmission(path string) (Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Submission{}, fmt.Errorf("reading submission %s: %w", path, err)
	}

	var matter map[string]any
	body, err := frontmatter.Parse(strings.NewReader(string(data)), &matter)
	if err != nil {
		return Submission{}, fmt.Errorf("parsing submission %s: %w", path, err)
	}

	sub := Submission{
		Name:           getString(matter, "name"),
		ContactOption:  getString(matter, "contact_option"),
		ContactDetails: getString(matter, "contact_details"),
		Message:        strings.TrimSpace(string(body)),
	}
	if raw := getString(matter, "received_at"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			sub.ReceivedAt = t
		}
	}
	return sub, nil
}

// writeDocument writes a markdown file with YAML frontmatter, atomically.
func writeDocument(path string, matter map[string]any, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	fm, err := yaml.Marshal(matter)
	if err != nil {
		return fmt.Errorf("marshaling frontmatter: %w", err)
	}
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func getString(fm map[string]any, key string) string {
	if v, ok := fm[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
