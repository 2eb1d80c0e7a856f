// Package provider defines the repository snapshot contract consumed by the
// terminal engine and the chat relay. Implementations fetch repository
// metadata from a code-hosting service; failures are theirs to report and the
// consumers' to absorb.
package provider

import "context"

// Repository is one entry of the repository snapshot. The terminal core and
// the chat relay treat it as an immutable input.
type Repository struct {
	// ID is the hosting service's numeric repository identifier.
	ID int64 `json:"id"`
	// Name is the repository name without the owner prefix.
	Name string `json:"name"`
	// Description is the short repository description, possibly empty.
	Description string `json:"description"`
	// HTMLURL is the web URL of the repository.
	HTMLURL string `json:"html_url"`
	// Languages lists the languages reported by the hosting service,
	// ordered by byte count descending.
	Languages []string `json:"languages"`
	// ReadmeContent is the decoded README body, possibly empty.
	ReadmeContent string `json:"readme_content"`
	// Owner is the login of the owning user or organization.
	Owner string `json:"owner"`
	// IsOrganizationRepo is true when the repository belongs to an
	// organization rather than the portfolio owner personally.
	IsOrganizationRepo bool `json:"is_organization_repo"`
	// Pinned is true for repositories the owner pinned on their profile.
	// Pinned repositories sort first in the snapshot.
	Pinned bool `json:"pinned"`
}

// Source lists the repositories that make up the snapshot.
type Source interface {
	// ListRepositories fetches the repository snapshot for the configured
	// account. It may return an error on network or API failure; callers
	// treat any failure as "zero repositories available".
	ListRepositories(ctx context.Context) ([]Repository, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Repository, error)

// ListRepositories calls f.
func (f SourceFunc) ListRepositories(ctx context.Context) ([]Repository, error) {
	return f(ctx)
}
