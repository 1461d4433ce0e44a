package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qrjet/qrjet/internal/app/model"
	"github.com/qrjet/qrjet/internal/app/repository"
	"github.com/qrjet/qrjet/internal/app/service"
	"github.com/qrjet/qrjet/internal/http/middleware"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by the management API handlers.
type APIDeps struct {
	Logger    *zap.Logger
	QRService service.QRService
	Plans     repository.PlanRepository
}

// APIHandler implements the authenticated management endpoints.
type APIHandler struct {
	logger    *zap.Logger
	qrService service.QRService
	plans     repository.PlanRepository
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:    logger,
		qrService: deps.QRService,
		plans:     deps.Plans,
	}
}

// Register wires API routes onto the provided router. auth must already be
// applied to the group for the qrcodes routes; /api/plans is public.
func (h *APIHandler) Register(router fiber.Router, auth fiber.Handler) {
	api := router.Group("/api")
	api.Get("/plans", h.ListPlans)
	{
		codes := api.Group("/qrcodes", auth)
		{
			codes.Post("/", h.CreateQRCode)
			codes.Get("/", h.ListQRCodes)
			codes.Get("/:id", h.GetQRCode)
			codes.Patch("/:id", h.UpdateQRCode)
			codes.Delete("/:id", h.DeleteQRCode)
			codes.Get("/:id/scans", h.ScanStats)
		}
	}
}

// QRCodeResponse is the wire shape of a QR code.
type QRCodeResponse struct {
	ID         string         `json:"id"`
	ShortCode  *string        `json:"short_code,omitempty"`
	Type       string         `json:"type"`
	Content    model.Content  `json:"content"`
	Settings   model.Settings `json:"settings,omitempty"`
	IsActive   bool           `json:"is_active"`
	IsDynamic  bool           `json:"is_dynamic"`
	IsFeatured bool           `json:"is_featured"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	ScanCount  int64          `json:"scan_count"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toQRCodeResponse(code *model.QRCode) QRCodeResponse {
	return QRCodeResponse{
		ID:         code.ID,
		ShortCode:  code.ShortCode,
		Type:       code.Type,
		Content:    code.Content,
		Settings:   code.Settings,
		IsActive:   code.IsActive,
		IsDynamic:  code.IsDynamic,
		IsFeatured: code.IsFeatured,
		ExpiresAt:  code.ExpiresAt,
		ScanCount:  code.ScanCount,
		CreatedAt:  code.CreatedAt,
	}
}

// CreateQRCodeRequest represents the request body for creating a QR code.
type CreateQRCodeRequest struct {
	Type          string         `json:"type"`
	Content       model.Content  `json:"content"`
	Settings      model.Settings `json:"settings,omitempty"`
	IsDynamic     bool           `json:"is_dynamic,omitempty"`
	WantShortCode bool           `json:"want_short_code,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
}

// CreateQRCode handles POST /api/qrcodes
func (h *APIHandler) CreateQRCode(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req CreateQRCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	code, err := h.qrService.CreateQRCode(h.requestContext(c), service.CreateQRCodeInput{
		UserID:        user.ID,
		Type:          req.Type,
		Content:       req.Content,
		Settings:      req.Settings,
		IsDynamic:     req.IsDynamic,
		WantShortCode: req.WantShortCode,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidType):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unsupported qr code type",
			})
		case errors.Is(err, service.ErrPlanLimitReached):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "your plan's QR code limit is reached",
			})
		}
		h.logger.Error("failed to create qr code", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create qr code",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toQRCodeResponse(code))
}

// ListQRCodes handles GET /api/qrcodes
func (h *APIHandler) ListQRCodes(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	limit := 20
	offset := 0
	if parsed := c.QueryInt("limit"); parsed > 0 && parsed <= 100 {
		limit = parsed
	}
	if parsed := c.QueryInt("offset"); parsed > 0 {
		offset = parsed
	}

	codes, err := h.qrService.ListQRCodes(h.requestContext(c), user.ID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list qr codes", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list qr codes",
		})
	}

	response := make([]QRCodeResponse, len(codes))
	for i := range codes {
		response[i] = toQRCodeResponse(&codes[i])
	}

	return c.JSON(fiber.Map{
		"qrcodes": response,
		"limit":   limit,
		"offset":  offset,
		"count":   len(response),
	})
}

// GetQRCode handles GET /api/qrcodes/:id
func (h *APIHandler) GetQRCode(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	code, err := h.qrService.GetQRCode(h.requestContext(c), user.ID, c.Params("id"))
	if err != nil {
		return h.qrCodeError(c, err, "failed to get qr code")
	}
	return c.JSON(toQRCodeResponse(code))
}

// UpdateQRCodeRequest represents the request body for updating a QR code.
type UpdateQRCodeRequest struct {
	Content    *model.Content  `json:"content,omitempty"`
	Settings   *model.Settings `json:"settings,omitempty"`
	IsActive   *bool           `json:"is_active,omitempty"`
	IsFeatured *bool           `json:"is_featured,omitempty"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
}

// UpdateQRCode handles PATCH /api/qrcodes/:id
func (h *APIHandler) UpdateQRCode(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req UpdateQRCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	code, err := h.qrService.UpdateQRCode(h.requestContext(c), user.ID, c.Params("id"), service.UpdateQRCodeInput{
		Content:    req.Content,
		Settings:   req.Settings,
		IsActive:   req.IsActive,
		IsFeatured: req.IsFeatured,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return h.qrCodeError(c, err, "failed to update qr code")
	}
	return c.JSON(toQRCodeResponse(code))
}

// DeleteQRCode handles DELETE /api/qrcodes/:id
func (h *APIHandler) DeleteQRCode(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	if err := h.qrService.DeleteQRCode(h.requestContext(c), user.ID, c.Params("id")); err != nil {
		return h.qrCodeError(c, err, "failed to delete qr code")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ScanStats handles GET /api/qrcodes/:id/scans
func (h *APIHandler) ScanStats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	limit := 50
	if parsed := c.QueryInt("limit"); parsed > 0 && parsed <= 500 {
		limit = parsed
	}

	stats, err := h.qrService.ScanStats(h.requestContext(c), user.ID, c.Params("id"), limit)
	if err != nil {
		return h.qrCodeError(c, err, "failed to load scan stats")
	}
	return c.JSON(stats)
}

// ListPlans handles GET /api/plans
func (h *APIHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.plans.List(h.requestContext(c))
	if err != nil {
		h.logger.Error("failed to list plans", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list plans",
		})
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (h *APIHandler) qrCodeError(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrQRCodeNotFound), errors.Is(err, service.ErrNotOwner):
		// Other users' codes look like missing codes.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "qr code not found",
		})
	}
	h.logger.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}

func (h *APIHandler) requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
