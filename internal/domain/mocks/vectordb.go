package mocks

import (
	"context"

	"github.com/omnsight/omndapi/internal/domain/ports"
)

// VectorDB is a mock implementation of ports.VectorDB.
type VectorDB struct {
	Points []ports.EntityPoint
	Err    error

	// Collection errors (separate from Err for fine-grained control)
	EnsureCollectionErr error
	DeleteCollectionErr error

	// Call tracking
	SaveCallCount             int
	DeleteCallCount           int
	DeleteLastID              string
	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
}

// EnsureCollection creates the collection if it doesn't exist.
func (m *VectorDB) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	m.EnsureCollectionCallCount++
	return m.EnsureCollectionErr
}

// DeleteCollection removes the collection and all its data.
func (m *VectorDB) DeleteCollection(ctx context.Context) error {
	m.DeleteCollectionCallCount++
	return m.DeleteCollectionErr
}

// Save stores a single point, replacing any existing point with the same ID.
func (m *VectorDB) Save(ctx context.Context, point ports.EntityPoint) error {
	m.SaveCallCount++
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Points {
		if m.Points[i].ID == point.ID {
			m.Points[i] = point
			return nil
		}
	}
	m.Points = append(m.Points, point)
	return nil
}

// Delete removes a point by ID.
func (m *VectorDB) Delete(ctx context.Context, id string) error {
	m.DeleteCallCount++
	m.DeleteLastID = id
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Points {
		if m.Points[i].ID == id {
			m.Points = append(m.Points[:i], m.Points[i+1:]...)
			return nil
		}
	}
	return nil
}

// Search returns the stored points as scored refs, in insertion order.
func (m *VectorDB) Search(ctx context.Context, embedding []float32, limit int) ([]ports.ScoredRef, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	points := m.Points
	if limit > 0 && limit < len(points) {
		points = points[:limit]
	}
	refs := make([]ports.ScoredRef, len(points))
	for i, p := range points {
		refs[i] = ports.ScoredRef{ID: p.ID, Score: 1.0 - float32(i)*0.01}
	}
	return refs, nil
}

// Close closes the connection.
func (m *VectorDB) Close() error {
	return nil
}
