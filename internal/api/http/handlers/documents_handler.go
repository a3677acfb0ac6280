package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ottocrm/ottocrm/internal/api/dto"
	"github.com/ottocrm/ottocrm/internal/auth"
	"github.com/ottocrm/ottocrm/internal/domain"
	"github.com/ottocrm/ottocrm/internal/service"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

// DocumentsHandler serves the documentation/FAQ endpoints. Every authenticated
// role reads; only admins author.
type DocumentsHandler struct {
	service *service.DocumentService
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(documentService *service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{service: documentService}
}

// List GET /documents.
func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	docs, err := h.service.ListDocuments(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		items = append(items, documentResponse(&docs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /documents/:id.
func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
	doc, err := h.service.GetDocument(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

// Create POST /documents.
func (h *DocumentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateDocumentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	doc, err := h.service.CreateDocument(c.Context(), principal, service.DocumentInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": documentResponse(doc)})
}

// Update PATCH /documents/:id.
func (h *DocumentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateDocumentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	doc, err := h.service.UpdateDocument(c.Context(), principal, c.Params("id"), service.DocumentUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

func documentResponse(doc *domain.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Content:     doc.Content,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
