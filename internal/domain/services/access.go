package services

import (
	"fmt"
	"slices"

	"github.com/omnsight/omndapi/internal/domain/entities"
)

// Guard evaluates an actor's identity and role set against a record's
// owner/read/write lists. It is pure policy: identities arrive already
// authenticated from the transport layer.
type Guard struct{}

// CanCreate reports whether the actor may create records. Only the admin and
// pro roles may create.
func (Guard) CanCreate(actor entities.Identity) error {
	if actor.HasRole(entities.RoleAdmin) || actor.HasRole(entities.RolePro) {
		return nil
	}
	return fmt.Errorf("%w: only admin or pro roles can create records", entities.ErrPermissionDenied)
}

// CanRead reports whether the actor may read the record. The owner, anyone in
// the read or write lists, and anyone whose roles intersect the read list may
// read; an administrator bypasses the lists entirely.
func (Guard) CanRead(actor entities.Identity, rec entities.Controlled) error {
	if actor.HasRole(entities.RoleAdmin) {
		return nil
	}
	if rec.GetOwner() == actor.Subject {
		return nil
	}
	if slices.Contains(rec.GetRead(), actor.Subject) || slices.Contains(rec.GetWrite(), actor.Subject) {
		return nil
	}
	if intersects(rec.GetRead(), actor.Roles) {
		return nil
	}
	return fmt.Errorf("%w: actor %q cannot read this record", entities.ErrPermissionDenied, actor.Subject)
}

// CanWrite reports whether the actor may mutate the record. The owner, anyone
// in the write list, and anyone whose roles intersect the write list may
// write; an administrator bypasses the lists entirely.
func (Guard) CanWrite(actor entities.Identity, rec entities.Controlled) error {
	if actor.HasRole(entities.RoleAdmin) {
		return nil
	}
	if rec.GetOwner() == actor.Subject {
		return nil
	}
	if slices.Contains(rec.GetWrite(), actor.Subject) {
		return nil
	}
	if intersects(rec.GetWrite(), actor.Roles) {
		return nil
	}
	return fmt.Errorf("%w: actor %q cannot modify this record", entities.ErrPermissionDenied, actor.Subject)
}

// CanDelete reports whether the actor may delete the record. Deletion follows
// the write policy.
func (g Guard) CanDelete(actor entities.Identity, rec entities.Controlled) error {
	if err := g.CanWrite(actor, rec); err != nil {
		return fmt.Errorf("%w: actor %q cannot delete this record", entities.ErrPermissionDenied, actor.Subject)
	}
	return nil
}

// intersects reports whether the two string sets share any element.
func intersects(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}
