package audience

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nibrashq/nibras/internal/domain/models"
)

// Directory is the slice of the user store the resolver queries per token
// category. Every lookup is capped by the store's page size; resolution
// is best-effort beyond that.
type Directory interface {
	FindBySchoolKey(ctx context.Context, schoolKey string) ([]models.User, error)
	FindByUnit(ctx context.Context, unit string) ([]models.User, error)
	FindByRole(ctx context.Context, role string) ([]models.User, error)
	FindByTag(ctx context.Context, tag string) ([]models.User, error)
}

// StaffTag is the tag "broadcast to everyone" resolves through: all:all
// reaches every subject carrying this tag, not literally every registered
// identity. Callers see this as the documented meaning of "everyone".
const StaffTag = "staff"

// Resolver turns token sets into concrete recipient identities.
type Resolver struct {
	dir      Directory
	staffTag string
}

// NewResolver builds a resolver over the user directory. An empty
// staffTag falls back to StaffTag.
func NewResolver(dir Directory, staffTag string) *Resolver {
	if staffTag == "" {
		staffTag = StaffTag
	}
	return &Resolver{dir: dir, staffTag: staffTag}
}

// ResolveRecipients resolves a token set to the union of recipient uids.
// Categories are queried independently and concurrently; an identity
// matching several tokens appears once. Query failures don't abort the
// union — the partial result is returned along with the joined error so
// the caller can log and carry on.
func (r *Resolver) ResolveRecipients(ctx context.Context, tokens []string) ([]string, error) {
	type lookup func(context.Context) ([]models.User, error)
	var lookups []lookup

	for _, tok := range tokens {
		category, value, ok := strings.Cut(tok, ":")
		if !ok {
			continue
		}
		switch category {
		case CategoryAll:
			tag := r.staffTag
			lookups = append(lookups, func(ctx context.Context) ([]models.User, error) {
				return r.dir.FindByTag(ctx, tag)
			})
		case CategorySchoolKey:
			v := value
			lookups = append(lookups, func(ctx context.Context) ([]models.User, error) {
				return r.dir.FindBySchoolKey(ctx, v)
			})
		case CategoryUnit:
			v := value
			lookups = append(lookups, func(ctx context.Context) ([]models.User, error) {
				return r.dir.FindByUnit(ctx, v)
			})
		case CategoryRole:
			v := value
			lookups = append(lookups, func(ctx context.Context) ([]models.User, error) {
				return r.dir.FindByRole(ctx, v)
			})
		case CategoryTag:
			v := value
			lookups = append(lookups, func(ctx context.Context) ([]models.User, error) {
				return r.dir.FindByTag(ctx, v)
			})
		}
		// schoolType tokens only appear on the subject side; no one
		// authors a broadcast to a school type, so there is nothing to
		// resolve for them.
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[string]struct{})
		uids []string
		errs []error
	)

	for _, fn := range lookups {
		wg.Add(1)
		go func(fn lookup) {
			defer wg.Done()
			users, err := fn(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			for _, u := range users {
				if u.UID == "" {
					continue
				}
				if _, ok := seen[u.UID]; ok {
					continue
				}
				seen[u.UID] = struct{}{}
				uids = append(uids, u.UID)
			}
		}(fn)
	}
	wg.Wait()

	return uids, errors.Join(errs...)
}
