package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ottocrm/ottocrm/internal/domain"
	"github.com/ottocrm/ottocrm/internal/policy"
	"github.com/ottocrm/ottocrm/internal/repository"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

// DocumentService manages the documentation/FAQ section: admin-authored,
// readable by every authenticated role.
type DocumentService struct {
	docs repository.DocumentRepository
}

// NewDocumentService builds the service.
func NewDocumentService(docs repository.DocumentRepository) *DocumentService {
	return &DocumentService{docs: docs}
}

// DocumentInput describes authoring payload.
type DocumentInput struct {
	Title       string
	Description string
	Content     string
}

// CreateDocument creates an entry. Admin only.
func (s *DocumentService) CreateDocument(ctx context.Context, principal policy.Principal, input DocumentInput) (*domain.Document, error) {
	if !policy.CanCreateDocument(principal) {
		return nil, apperrors.NewForbidden("documentation authoring not permitted")
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content required", nil)
	}
	doc := &domain.Document{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Content:     content,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return doc, nil
}

// DocumentUpdateInput describes an edit. Nil fields are left as they are;
// description may be set to the empty string to clear it.
type DocumentUpdateInput struct {
	Title       *string
	Description *string
	Content     *string
}

// UpdateDocument edits an entry. Admin only.
func (s *DocumentService) UpdateDocument(ctx context.Context, principal policy.Principal, id string, input DocumentUpdateInput) (*domain.Document, error) {
	if !policy.CanEditDocument(principal) {
		return nil, apperrors.NewForbidden("documentation authoring not permitted")
	}
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", nil)
		}
		doc.Title = title
	}
	if input.Description != nil {
		doc.Description = strings.TrimSpace(*input.Description)
	}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, apperrors.NewValidationError("content cannot be empty", nil)
		}
		doc.Content = content
	}
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return doc, nil
}

// GetDocument returns one entry.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("document", map[string]any{"document_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return doc, nil
}

// ListDocuments returns all entries, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return docs, nil
}
