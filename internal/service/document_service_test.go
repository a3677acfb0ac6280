package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottocrm/ottocrm/internal/domain"
)

type fakeDocumentRepo struct {
	docs   map[string]*domain.Document
	nextID int
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	r.nextID++
	doc.ID = fmt.Sprintf("doc-%d", r.nextID)
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	clone := *doc
	r.docs[doc.ID] = &clone
	return nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *domain.Document) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *doc
	r.docs[doc.ID] = &clone
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *doc
	return &clone, nil
}

func (r *fakeDocumentRepo) ListAll(_ context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, *d)
	}
	return out, nil
}

func TestCreateDocumentAdminOnly(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo())
	ctx := context.Background()
	input := DocumentInput{Title: "Getting Started", Content: "Open a ticket."}

	_, err := svc.CreateDocument(ctx, agentPrincipal, input)
	assertCode(t, err, "FORBIDDEN")
	_, err = svc.CreateDocument(ctx, customerPrincipal, input)
	assertCode(t, err, "FORBIDDEN")

	doc, err := svc.CreateDocument(ctx, adminPrincipal, input)
	require.NoError(t, err)
	assert.Equal(t, "Getting Started", doc.Title)
}

func TestCreateDocumentValidation(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo())

	_, err := svc.CreateDocument(context.Background(), adminPrincipal, DocumentInput{Title: " ", Content: ""})
	assertCode(t, err, "VALIDATION_FAILED")
}

func strPtr(s string) *string { return &s }

func TestUpdateDocumentKeepsOmittedFields(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo())
	ctx := context.Background()

	doc, err := svc.CreateDocument(ctx, adminPrincipal, DocumentInput{
		Title:       "FAQ",
		Description: "Common questions",
		Content:     "Q and A",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateDocument(ctx, adminPrincipal, doc.ID, DocumentUpdateInput{Content: strPtr("Revised Q and A")})
	require.NoError(t, err)
	assert.Equal(t, "FAQ", updated.Title)
	assert.Equal(t, "Common questions", updated.Description)
	assert.Equal(t, "Revised Q and A", updated.Content)

	_, err = svc.UpdateDocument(ctx, agentPrincipal, doc.ID, DocumentUpdateInput{Content: strPtr("nope")})
	assertCode(t, err, "FORBIDDEN")

	_, err = svc.UpdateDocument(ctx, adminPrincipal, "missing", DocumentUpdateInput{Content: strPtr("x")})
	assertCode(t, err, "NOT_FOUND")
}

func TestUpdateDocumentClearsDescription(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo())
	ctx := context.Background()

	doc, err := svc.CreateDocument(ctx, adminPrincipal, DocumentInput{
		Title:       "FAQ",
		Description: "Stale summary",
		Content:     "Q and A",
	})
	require.NoError(t, err)

	// Explicit empty string clears; omission would have kept it.
	updated, err := svc.UpdateDocument(ctx, adminPrincipal, doc.ID, DocumentUpdateInput{Description: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Equal(t, "FAQ", updated.Title)

	_, err = svc.UpdateDocument(ctx, adminPrincipal, doc.ID, DocumentUpdateInput{Title: strPtr("  ")})
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = svc.UpdateDocument(ctx, adminPrincipal, doc.ID, DocumentUpdateInput{Content: strPtr("")})
	assertCode(t, err, "VALIDATION_FAILED")
}

func TestGetAndListDocuments(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo())
	ctx := context.Background()

	created, err := svc.CreateDocument(ctx, adminPrincipal, DocumentInput{Title: "One", Content: "c"})
	require.NoError(t, err)
	_, err = svc.CreateDocument(ctx, adminPrincipal, DocumentInput{Title: "Two", Content: "c"})
	require.NoError(t, err)

	got, err := svc.GetDocument(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "One", got.Title)

	docs, err := svc.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = svc.GetDocument(ctx, "missing")
	assertCode(t, err, "NOT_FOUND")
}
