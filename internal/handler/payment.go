package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mfadillah/kostly/internal/gateway"
	"github.com/mfadillah/kostly/internal/middleware"
	"github.com/mfadillah/kostly/internal/service"
)

// PaymentHandler exposes payment creation, the gateway webhook, the
// client-driven status sync and the owner's manual controls.
type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(p *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: p}
}

type createPaymentReq struct {
	InvoiceID uint64 `json:"invoice_id"`
}

// Create opens a gateway payment session for an invoice.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.InvoiceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invoice_id required"})
	}

	res, err := h.Payments.Create(c.Request().Context(), req.InvoiceID, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Notification receives the gateway's server-to-server webhook.  The
// gateway retries on non-2xx, so unknown orders still return 200 to
// stop pointless redelivery.
func (h *PaymentHandler) Notification(c echo.Context) error {
	var payload gateway.StatusResponse
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if payload.OrderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id required"})
	}

	if err := h.Payments.HandleNotification(c.Request().Context(), &payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// Sync polls the gateway for the order's current status and applies
// the outcome.
func (h *PaymentHandler) Sync(c echo.Context) error {
	orderRef := c.Param("orderRef")
	if orderRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order reference required"})
	}

	res, err := h.Payments.SyncStatus(c.Request().Context(), orderRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Verify manually marks a payment successful.  Owner only.
func (h *PaymentHandler) Verify(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}

	payment, err := h.Payments.Verify(c.Request().Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "pembayaran diverifikasi", "payment": payment})
}

// Cancel aborts a pending payment.
func (h *PaymentHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}

	if err := h.Payments.Cancel(c.Request().Context(), id, middleware.CurrentUserID(c), middleware.CurrentRole(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "pembayaran dibatalkan"})
}

// Summary returns payment counts scoped by role.
func (h *PaymentHandler) Summary(c echo.Context) error {
	s, err := h.Payments.Summary(c.Request().Context(), middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// List returns payments, newest first, scoped by role.
func (h *PaymentHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	payments, err := h.Payments.List(c.Request().Context(),
		middleware.CurrentUserID(c), middleware.CurrentRole(c),
		c.QueryParam("status"), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}

// Get returns one payment.
func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}

	payment, err := h.Payments.GetByID(c.Request().Context(), id, middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}
