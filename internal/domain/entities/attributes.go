package entities

// AttributeSet is a locale-specific partial override of display fields.
// Zero-valued fields mean "not overridden"; a nil Tags slice leaves the base
// tags in place.
type AttributeSet struct {
	Title       string   `json:"title,omitempty"`
	Name        string   `json:"name,omitempty"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Role        string   `json:"role,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Localize returns a view of the entity with the overlay for the requested
// locale applied on top of the base fields. The stored base record is never
// mutated; an empty locale or a missing overlay returns the entity unchanged.
func Localize(e *Entity, locale string) *Entity {
	if e == nil || locale == "" {
		return e
	}
	overlay, ok := e.Attributes[locale]
	if !ok {
		return e
	}

	out := e.Clone()
	if overlay.Tags != nil {
		out.Tags = cloneStrings(overlay.Tags)
	}

	switch {
	case out.Event != nil:
		applyString(&out.Event.Title, overlay.Title)
		applyString(&out.Event.Type, overlay.Type)
		applyString(&out.Event.Description, overlay.Description)
	case out.Person != nil:
		applyString(&out.Person.Name, overlay.Name)
		applyString(&out.Person.Role, overlay.Role)
		applyString(&out.Person.Nationality, overlay.Nationality)
	case out.Organization != nil:
		applyString(&out.Organization.Name, overlay.Name)
		applyString(&out.Organization.Type, overlay.Type)
	case out.Website != nil:
		applyString(&out.Website.Title, overlay.Title)
		applyString(&out.Website.Description, overlay.Description)
	case out.Source != nil:
		applyString(&out.Source.Name, overlay.Name)
		applyString(&out.Source.Type, overlay.Type)
		applyString(&out.Source.Title, overlay.Title)
		applyString(&out.Source.Description, overlay.Description)
	}
	return out
}

// RelationAttributes is the locale overlay for relationship display fields.
type RelationAttributes struct {
	Name string `json:"name,omitempty"`
}

// LocalizeRelationship returns a view of the relationship with the overlay
// for the requested locale applied. The stored base record is never mutated.
func LocalizeRelationship(r *Relationship, locale string) *Relationship {
	if r == nil || locale == "" {
		return r
	}
	overlay, ok := r.Attributes[locale]
	if !ok || overlay.Name == "" {
		return r
	}
	out := r.Clone()
	out.Name = overlay.Name
	return out
}

func applyString(dst *string, override string) {
	if override != "" {
		*dst = override
	}
}
