package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind identifies one of the supported entity variants.
type Kind string

const (
	KindEvent        Kind = "event"
	KindPerson       Kind = "person"
	KindOrganization Kind = "organization"
	KindWebsite      Kind = "website"
	KindSource       Kind = "source"
)

// Kinds lists all supported entity kinds.
var Kinds = []Kind{KindEvent, KindPerson, KindOrganization, KindWebsite, KindSource}

// reKey matches valid record keys (slugs used for addressing and deletion).
var reKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidKey reports whether s can address a record. Keys are slugs of
// letters, digits, underscores and hyphens.
func ValidKey(s string) bool {
	return reKey.MatchString(s)
}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrValidation, s)
}

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

// Entity is a typed node in the graph. Exactly one variant pointer is set;
// the kind is derived from it, never from field-presence guessing elsewhere.
// ID is set if and only if the entity has been persisted.
type Entity struct {
	ID    string   `json:"id,omitempty"`
	Key   string   `json:"key,omitempty"`
	Owner string   `json:"owner"`
	Read  []string `json:"read"`
	Write []string `json:"write"`
	Tags  []string `json:"tags,omitempty"`

	// Attributes maps a locale code to a partial override of display fields.
	Attributes map[string]AttributeSet `json:"attributes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Event        *EventDetails        `json:"event,omitempty"`
	Person       *PersonDetails       `json:"person,omitempty"`
	Organization *OrganizationDetails `json:"organization,omitempty"`
	Website      *WebsiteDetails      `json:"website,omitempty"`
	Source       *SourceDetails       `json:"source,omitempty"`
}

// Kind returns the variant discriminant, or an error when zero or more than
// one variant is populated.
func (e *Entity) Kind() (Kind, error) {
	var kind Kind
	count := 0
	if e.Event != nil {
		kind, count = KindEvent, count+1
	}
	if e.Person != nil {
		kind, count = KindPerson, count+1
	}
	if e.Organization != nil {
		kind, count = KindOrganization, count+1
	}
	if e.Website != nil {
		kind, count = KindWebsite, count+1
	}
	if e.Source != nil {
		kind, count = KindSource, count+1
	}
	switch count {
	case 0:
		return "", fmt.Errorf("%w: entity content missing", ErrValidation)
	case 1:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: entity populates %d variants, want exactly one", ErrValidation, count)
	}
}

// Validate checks that the entity belongs to exactly one variant matching the
// addressed kind, that required variant fields are present, and that any
// client-supplied key is a valid slug.
func (e *Entity) Validate(kind Kind) error {
	actual, err := e.Kind()
	if err != nil {
		return err
	}
	if actual != kind {
		return fmt.Errorf("%w: entity variant %q does not match collection %q", ErrValidation, actual, kind)
	}
	if e.Key != "" && !ValidKey(e.Key) {
		return fmt.Errorf("%w: key %q is not a valid slug", ErrValidation, e.Key)
	}

	switch kind {
	case KindEvent:
		if e.Event.Title == "" {
			return fmt.Errorf("%w: event title is required", ErrValidation)
		}
	case KindPerson:
		if e.Person.Name == "" {
			return fmt.Errorf("%w: person name is required", ErrValidation)
		}
	case KindOrganization:
		if e.Organization.Name == "" {
			return fmt.Errorf("%w: organization name is required", ErrValidation)
		}
	case KindWebsite:
		if e.Website.URL == "" {
			return fmt.Errorf("%w: website url is required", ErrValidation)
		}
	case KindSource:
		if e.Source.Name == "" {
			return fmt.Errorf("%w: source name is required", ErrValidation)
		}
	}
	return nil
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := *e
	out.Read = cloneStrings(e.Read)
	out.Write = cloneStrings(e.Write)
	out.Tags = cloneStrings(e.Tags)
	if e.Attributes != nil {
		out.Attributes = make(map[string]AttributeSet, len(e.Attributes))
		for locale, attrs := range e.Attributes {
			attrs.Tags = cloneStrings(attrs.Tags)
			out.Attributes[locale] = attrs
		}
	}
	if e.Event != nil {
		ev := *e.Event
		if e.Event.Location != nil {
			loc := *e.Event.Location
			ev.Location = &loc
		}
		out.Event = &ev
	}
	if e.Person != nil {
		p := *e.Person
		p.Aliases = cloneStrings(e.Person.Aliases)
		out.Person = &p
	}
	if e.Organization != nil {
		o := *e.Organization
		out.Organization = &o
	}
	if e.Website != nil {
		w := *e.Website
		out.Website = &w
	}
	if e.Source != nil {
		s := *e.Source
		out.Source = &s
	}
	return &out
}

// SearchText builds the text used for semantic indexing of the entity.
func (e *Entity) SearchText() string {
	var parts []string
	switch {
	case e.Event != nil:
		parts = append(parts, e.Event.Title, e.Event.Description)
		parts = append(parts, e.Tags...)
	case e.Person != nil:
		parts = append(parts, e.Person.Name, e.Person.Role)
	case e.Organization != nil:
		parts = append(parts, e.Organization.Name, e.Organization.Type)
	case e.Website != nil:
		parts = append(parts, e.Website.Title, e.Website.URL)
	case e.Source != nil:
		parts = append(parts, e.Source.Name, e.Source.Title, e.Source.Description)
	}
	fields := parts[:0]
	for _, p := range parts {
		if p != "" {
			fields = append(fields, p)
		}
	}
	return strings.Join(fields, " ")
}

// GetOwner returns the owner identity.
func (e *Entity) GetOwner() string { return e.Owner }

// GetRead returns the read access list.
func (e *Entity) GetRead() []string { return e.Read }

// GetWrite returns the write access list.
func (e *Entity) GetWrite() []string { return e.Write }

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
