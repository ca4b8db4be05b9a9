package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// reRelationName matches normalized relation names.
var reRelationName = regexp.MustCompile(`^[a-z0-9_]+$`)

// Relationship is a typed, directed edge between two entities. From and To
// hold entity IDs; Collection is the logical address space derived from the
// endpoint kinds and the relation name, and Key is unique within it.
type Relationship struct {
	ID         string   `json:"id,omitempty"`
	Key        string   `json:"key,omitempty"`
	Collection string   `json:"collection,omitempty"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Name       string   `json:"name"`
	Owner      string   `json:"owner"`
	Read       []string `json:"read"`
	Write      []string `json:"write"`

	Attributes map[string]RelationAttributes `json:"attributes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the relationship.
func (r *Relationship) Clone() *Relationship {
	if r == nil {
		return nil
	}
	out := *r
	out.Read = cloneStrings(r.Read)
	out.Write = cloneStrings(r.Write)
	if r.Attributes != nil {
		out.Attributes = make(map[string]RelationAttributes, len(r.Attributes))
		for locale, attrs := range r.Attributes {
			out.Attributes[locale] = attrs
		}
	}
	return &out
}

// GetOwner returns the owner identity.
func (r *Relationship) GetOwner() string { return r.Owner }

// GetRead returns the read access list.
func (r *Relationship) GetRead() []string { return r.Read }

// GetWrite returns the write access list.
func (r *Relationship) GetWrite() []string { return r.Write }

// NormalizeRelationName lowercases a relation name and maps spaces to
// underscores, rejecting anything that is not slug-shaped afterwards.
func NormalizeRelationName(name string) (string, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	if normalized == "" {
		return "", fmt.Errorf("%w: relation name is required", ErrValidation)
	}
	if !reRelationName.MatchString(normalized) {
		return "", fmt.Errorf("%w: relation name %q is not a valid slug", ErrValidation, name)
	}
	return normalized, nil
}

// CollectionName derives the logical collection for edges of the given
// relation between the given endpoint kinds: {fromKind}_{name}_{toKind}.
// Heterogeneous edge types share one store without collision because the
// triple is part of the address.
func CollectionName(fromKind Kind, name string, toKind Kind) (string, error) {
	if !fromKind.Valid() {
		return "", fmt.Errorf("%w: unknown entity kind %q", ErrValidation, fromKind)
	}
	if !toKind.Valid() {
		return "", fmt.Errorf("%w: unknown entity kind %q", ErrValidation, toKind)
	}
	normalized, err := NormalizeRelationName(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s", fromKind, normalized, toKind), nil
}
