package claims

import (
	"context"
	"fmt"
	"sync"
)

// memStore is an in-memory StoreAPI used by the service tests. It enforces
// the same version guard the postgres store does.
type memStore struct {
	mu        sync.Mutex
	claims    map[string]*Claim
	documents map[string][]Document
	nextID    int

	failCreate error
	failAddDoc error
}

func newMemStore() *memStore {
	return &memStore{
		claims:    map[string]*Claim{},
		documents: map[string][]Document{},
	}
}

func (m *memStore) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memStore) CreateClaim(_ context.Context, claim Claim, documents []Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return "", m.failCreate
	}

	id := m.newID("claim")
	claim.ID = id
	stored := claim
	m.claims[id] = &stored
	for _, doc := range documents {
		doc.ID = m.newID("doc")
		doc.ClaimID = id
		m.documents[id] = append(m.documents[id], doc)
	}
	return id, nil
}

func (m *memStore) GetClaim(_ context.Context, id string) (Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.claims[id]
	if !ok {
		return Claim{}, ErrNotFound
	}
	claim := *stored
	claim.Documents = append([]Document(nil), m.documents[id]...)
	return claim, nil
}

func (m *memStore) ListClaimsByUser(_ context.Context, userID string) ([]Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Claim
	for _, stored := range m.claims {
		if stored.UserID == userID {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (m *memStore) ListClaimsByStatus(_ context.Context, status Status) ([]Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Claim
	for _, stored := range m.claims {
		if stored.Status == status {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (m *memStore) UpdateClaimStatus(_ context.Context, id string, expectedVersion int, newStatus Status, fields ReviewFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.claims[id]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrConcurrencyConflict
	}

	stored.Status = newStatus
	stored.Version++
	if fields.CoordinatorReviewedAt != nil {
		stored.CoordinatorReviewedAt = fields.CoordinatorReviewedAt
	}
	if fields.CoordinatorComment != nil {
		stored.CoordinatorComment = fields.CoordinatorComment
	}
	if fields.ManagerReviewedAt != nil {
		stored.ManagerReviewedAt = fields.ManagerReviewedAt
	}
	if fields.ManagerComment != nil {
		stored.ManagerComment = fields.ManagerComment
	}
	return nil
}

func (m *memStore) AddDocument(_ context.Context, claimID string, doc Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAddDoc != nil {
		return "", m.failAddDoc
	}
	if _, ok := m.claims[claimID]; !ok {
		return "", ErrNotFound
	}
	doc.ID = m.newID("doc")
	doc.ClaimID = claimID
	m.documents[claimID] = append(m.documents[claimID], doc)
	return doc.ID, nil
}

func (m *memStore) ListDocuments(_ context.Context, claimID string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Document(nil), m.documents[claimID]...), nil
}

func (m *memStore) GetDocument(_ context.Context, claimID, documentID string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.documents[claimID] {
		if doc.ID == documentID {
			return doc, nil
		}
	}
	return Document{}, ErrDocumentNotFound
}
