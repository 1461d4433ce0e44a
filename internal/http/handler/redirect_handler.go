package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qrjet/qrjet/internal/app/model"
	"github.com/qrjet/qrjet/internal/app/service"
	infraprom "github.com/qrjet/qrjet/internal/infra/prometheus"
	"github.com/qrjet/qrjet/internal/http/view"
	"go.uber.org/zap"
)

// RedirectDeps groups dependencies required by the scan-redirect handlers.
type RedirectDeps struct {
	Logger   *zap.Logger
	Resolver *service.Resolver
	Metrics  *infraprom.Metrics
}

// RedirectHandler serves the public scan endpoint and the type-specific
// landing pages.
type RedirectHandler struct {
	logger   *zap.Logger
	resolver *service.Resolver
	metrics  *infraprom.Metrics
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:   logger,
		resolver: deps.Resolver,
		metrics:  deps.Metrics,
	}
}

// Register wires the public scan routes onto the provided router.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/r/:id", h.Scan)
	router.Get("/app/:id", h.AppLanding)
	router.Get("/v/:id", h.VCard)
	router.Get("/html/:id", h.HTMLPage)
}

// Health is a simple root endpoint so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "qrjet",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Scan handles GET /r/:id. It resolves the identifier, fires the tracking
// side effects for usable codes and answers with a redirect or a page.
func (h *RedirectHandler) Scan(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return h.renderNotFound(c)
	}

	scan := model.ScanContext{
		ForwardedFor: c.Get("X-Forwarded-For"),
		RealIP:       c.Get("X-Real-IP"),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
		ScannedAt:    time.Now().UTC(),
	}
	if scan.ForwardedFor == "" && scan.RealIP == "" {
		scan.RealIP = c.IP()
	}

	res := h.resolver.Resolve(h.requestContext(c), id, scan)
	if h.metrics != nil {
		h.metrics.ScansTotal.WithLabelValues(res.State.String()).Inc()
	}

	switch res.State {
	case service.StateRedirect:
		h.logger.Debug("redirecting scan",
			zap.String("id", id),
			zap.String("target", res.TargetURL))
		return c.Redirect(res.TargetURL, fiber.StatusFound)
	case service.StateInactive:
		return h.renderStatus(c, fiber.StatusGone, view.StatusPageData{
			Title:   "Code deactivated",
			Heading: "This QR code is deactivated",
			Message: "The owner has turned this code off. Nothing to see here right now.",
		})
	case service.StateExpired:
		return h.renderStatus(c, fiber.StatusGone, view.StatusPageData{
			Title:   "Code expired",
			Heading: "This QR code has expired",
			Message: "The code's lifetime has ended and it no longer resolves.",
		})
	case service.StateContent:
		return h.renderContent(c, res.Code)
	default:
		return h.renderNotFound(c)
	}
}

// AppLanding handles GET /app/:id with store download buttons.
func (h *RedirectHandler) AppLanding(c *fiber.Ctx) error {
	code, err := h.resolver.Load(h.requestContext(c), c.Params("id"))
	if err != nil || code.Type != model.TypeApp {
		return h.renderNotFound(c)
	}

	raw := code.Content.Raw
	html, err := view.RenderAppPage(view.AppPageData{
		AppName:     raw["appName"],
		Description: raw["description"],
		AppStoreURL: raw["appStoreUrl"],
		PlayURL:     raw["playStoreUrl"],
	})
	if err != nil {
		h.logger.Error("failed to render app page", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return c.Type("html", "utf-8").SendString(html)
}

// VCard handles GET /v/:id by serving the encoded vCard as a download.
func (h *RedirectHandler) VCard(c *fiber.Ctx) error {
	code, err := h.resolver.Load(h.requestContext(c), c.Params("id"))
	if err != nil || code.Type != model.TypeVCard {
		return h.renderNotFound(c)
	}

	payload := code.Content.Encoded
	if payload == "" {
		payload = code.Content.Plain
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="contact.vcf"`)
	c.Set(fiber.HeaderContentType, "text/vcard; charset=utf-8")
	return c.SendString(payload)
}

// HTMLPage handles GET /html/:id by serving the stored HTML document.
func (h *RedirectHandler) HTMLPage(c *fiber.Ctx) error {
	code, err := h.resolver.Load(h.requestContext(c), c.Params("id"))
	if err != nil || code.Type != model.TypeHTML {
		return h.renderNotFound(c)
	}

	doc := code.Content.Raw["html"]
	if doc == "" {
		doc = code.Content.Encoded
	}
	if doc == "" {
		doc = code.Content.Plain
	}
	return c.Type("html", "utf-8").SendString(doc)
}

func (h *RedirectHandler) renderContent(c *fiber.Ctx, code *model.QRCode) error {
	data := view.ContentPageData{Type: code.Type}
	if code.Content.Kind == model.ContentPlain {
		data.Plain = code.Content.Plain
	} else if len(code.Content.Raw) > 0 {
		data.Fields = code.Content.Raw
	} else {
		data.Plain = code.Content.Encoded
	}

	html, err := view.RenderContentPage(data)
	if err != nil {
		h.logger.Error("failed to render content page", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return c.Type("html", "utf-8").SendString(html)
}

func (h *RedirectHandler) renderNotFound(c *fiber.Ctx) error {
	return h.renderStatus(c, fiber.StatusNotFound, view.StatusPageData{
		Title:   "Code not found",
		Heading: "This QR code does not exist",
		Message: "The code may have been deleted, or the link was mistyped.",
	})
}

func (h *RedirectHandler) renderStatus(c *fiber.Ctx, status int, data view.StatusPageData) error {
	html, err := view.RenderStatusPage(data)
	if err != nil {
		h.logger.Error("failed to render status page", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return c.Status(status).Type("html", "utf-8").SendString(html)
}

func (h *RedirectHandler) requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
