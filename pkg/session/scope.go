package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/ports"
)

const separator = "/"

// ValidateID rejects IDs that are empty or would nest under another
// session's prefix.
func ValidateID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidSessionID)
	}
	if strings.Contains(sessionID, separator) {
		return fmt.Errorf("%w: %q contains %q", domain.ErrInvalidSessionID, sessionID, separator)
	}
	return nil
}

// scoped prefixes every key with the session ID.
type scoped struct {
	store  ports.KVStore
	prefix string
}

// Scope returns a view of store that only sees keys of sessionID.
func Scope(store ports.KVStore, sessionID string) ports.KVStore {
	return &scoped{store: store, prefix: sessionID + separator}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.prefix+key)
}

func (s *scoped) Keys(ctx context.Context) ([]string, error) {
	all, err := s.store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	keys := []string{}
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, s.prefix); ok {
			keys = append(keys, rest)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Purge deletes every key of sessionID from store.
func Purge(ctx context.Context, store ports.KVStore, sessionID string) error {
	if err := ValidateID(sessionID); err != nil {
		return err
	}
	view := Scope(store, sessionID)
	keys, err := view.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list session keys: %w", err)
	}
	var errs []error
	for _, k := range keys {
		if err := view.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StoredIDs returns the IDs of sessions that have data in store.
func StoredIDs(ctx context.Context, store ports.KVStore) ([]string, error) {
	all, err := store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	ids := []string{}
	for _, k := range all {
		id, _, ok := strings.Cut(k, separator)
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
