package lit

import (
	"fmt"
	"os"
	"time"

	"github.com/firiho/lit/plumbing/object"
)

// AuthorSignature resolves the identity used for a commit's "author" line:
// LIT_AUTHOR_NAME / LIT_AUTHOR_EMAIL override user.name / user.email.
func (r *Repository) AuthorSignature() (object.Signature, error) {
	return r.signature("LIT_AUTHOR_NAME", "LIT_AUTHOR_EMAIL")
}

// CommitterSignature resolves the identity used for a commit's "committer"
// line: LIT_COMMITTER_NAME / LIT_COMMITTER_EMAIL override user.name /
// user.email.
func (r *Repository) CommitterSignature() (object.Signature, error) {
	return r.signature("LIT_COMMITTER_NAME", "LIT_COMMITTER_EMAIL")
}

func (r *Repository) signature(nameEnv, emailEnv string) (object.Signature, error) {
	cfg, err := r.Config()
	if err != nil {
		return object.Signature{}, err
	}

	name := os.Getenv(nameEnv)
	email := os.Getenv(emailEnv)

	if user := cfg.Section("user"); user != nil {
		if name == "" {
			name = user.Option("name")
		}
		if email == "" {
			email = user.Option("email")
		}
	}

	if name == "" {
		return object.Signature{}, fmt.Errorf("lit: no identity configured: set user.name or %s", nameEnv)
	}
	if email == "" {
		return object.Signature{}, fmt.Errorf("lit: no identity configured: set user.email or %s", emailEnv)
	}

	return object.Signature{Name: name, Email: email, When: now()}, nil
}

// now is a seam so tests can't observe wall-clock nondeterminism in the
// signatures they assert against; production always uses time.Now.
var now = time.Now
