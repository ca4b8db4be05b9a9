package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/omnsight/omndapi/internal/domain/entities"
)

// entityColumnValues holds the JSON-encoded column payloads of an entity row.
type entityColumnValues struct {
	readACL    string
	writeACL   string
	tags       string
	attributes string
	details    string
}

func encodeEntityColumns(entity *entities.Entity) (*entityColumnValues, error) {
	readACL, err := encodeJSON(entity.Read, "[]")
	if err != nil {
		return nil, fmt.Errorf("encoding read list: %w", err)
	}
	writeACL, err := encodeJSON(entity.Write, "[]")
	if err != nil {
		return nil, fmt.Errorf("encoding write list: %w", err)
	}
	tags, err := encodeJSON(entity.Tags, "[]")
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}
	attributes, err := encodeJSON(entity.Attributes, "{}")
	if err != nil {
		return nil, fmt.Errorf("encoding attributes: %w", err)
	}
	details, err := encodeJSON(entityDetails(entity), "{}")
	if err != nil {
		return nil, fmt.Errorf("encoding details: %w", err)
	}
	return &entityColumnValues{
		readACL:    readACL,
		writeACL:   writeACL,
		tags:       tags,
		attributes: attributes,
		details:    details,
	}, nil
}

// entityDetails returns the variant payload to store in the details column.
func entityDetails(entity *entities.Entity) any {
	switch {
	case entity.Event != nil:
		return entity.Event
	case entity.Person != nil:
		return entity.Person
	case entity.Organization != nil:
		return entity.Organization
	case entity.Website != nil:
		return entity.Website
	case entity.Source != nil:
		return entity.Source
	default:
		return nil
	}
}

func encodeJSON(v any, empty string) (string, error) {
	if v == nil {
		return empty, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*entities.Entity, error) {
	var entity entities.Entity
	var kind, readACL, writeACL, tags, attributes, details string

	err := row.Scan(
		&entity.ID,
		&kind,
		&entity.Key,
		&entity.Owner,
		&readACL,
		&writeACL,
		&tags,
		&attributes,
		&details,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(readACL), &entity.Read); err != nil {
		return nil, fmt.Errorf("decoding read list: %w", err)
	}
	if err := json.Unmarshal([]byte(writeACL), &entity.Write); err != nil {
		return nil, fmt.Errorf("decoding write list: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &entity.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal([]byte(attributes), &entity.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	if err := decodeEntityDetails(&entity, entities.Kind(kind), []byte(details)); err != nil {
		return nil, err
	}
	return &entity, nil
}

// decodeEntityDetails unmarshals the details column into the variant the kind
// column selects.
func decodeEntityDetails(entity *entities.Entity, kind entities.Kind, details []byte) error {
	var err error
	switch kind {
	case entities.KindEvent:
		entity.Event = &entities.EventDetails{}
		err = json.Unmarshal(details, entity.Event)
	case entities.KindPerson:
		entity.Person = &entities.PersonDetails{}
		err = json.Unmarshal(details, entity.Person)
	case entities.KindOrganization:
		entity.Organization = &entities.OrganizationDetails{}
		err = json.Unmarshal(details, entity.Organization)
	case entities.KindWebsite:
		entity.Website = &entities.WebsiteDetails{}
		err = json.Unmarshal(details, entity.Website)
	case entities.KindSource:
		entity.Source = &entities.SourceDetails{}
		err = json.Unmarshal(details, entity.Source)
	default:
		return fmt.Errorf("unknown entity kind in row: %q", kind)
	}
	if err != nil {
		return fmt.Errorf("decoding %s details: %w", kind, err)
	}
	return nil
}

func collectEntities(rows *sql.Rows) ([]*entities.Entity, error) {
	var result []*entities.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return result, nil
}

func encodeRelationshipColumns(rel *entities.Relationship) (readACL, writeACL, attributes string, err error) {
	readACL, err = encodeJSON(rel.Read, "[]")
	if err != nil {
		return "", "", "", fmt.Errorf("encoding read list: %w", err)
	}
	writeACL, err = encodeJSON(rel.Write, "[]")
	if err != nil {
		return "", "", "", fmt.Errorf("encoding write list: %w", err)
	}
	attributes, err = encodeJSON(rel.Attributes, "{}")
	if err != nil {
		return "", "", "", fmt.Errorf("encoding attributes: %w", err)
	}
	return readACL, writeACL, attributes, nil
}

func scanRelationship(row rowScanner) (*entities.Relationship, error) {
	var rel entities.Relationship
	var readACL, writeACL, attributes string

	err := row.Scan(
		&rel.ID,
		&rel.Collection,
		&rel.Key,
		&rel.From,
		&rel.To,
		&rel.Name,
		&rel.Owner,
		&readACL,
		&writeACL,
		&attributes,
		&rel.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(readACL), &rel.Read); err != nil {
		return nil, fmt.Errorf("decoding read list: %w", err)
	}
	if err := json.Unmarshal([]byte(writeACL), &rel.Write); err != nil {
		return nil, fmt.Errorf("decoding write list: %w", err)
	}
	if err := json.Unmarshal([]byte(attributes), &rel.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	return &rel, nil
}

func collectRelationships(rows *sql.Rows) ([]*entities.Relationship, error) {
	var result []*entities.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}
	return result, nil
}
