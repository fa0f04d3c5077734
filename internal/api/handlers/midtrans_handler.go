package handlers

import (
	"WA-Order-Bot/domain"
	"WA-Order-Bot/internal/api/presenters"
	"WA-Order-Bot/pkg/midtrans"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	MidtransHandler interface {
		MidtransWebhookHandler(c *fiber.Ctx) error
	}

	midtransHandler struct {
		midtransService midtrans.MidtransService
	}
)

// NewMidtransHandler accepts a nil service when payments are not configured.
func NewMidtransHandler(midtransService midtrans.MidtransService) MidtransHandler {
	return &midtransHandler{
		midtransService: midtransService,
	}
}

func (h *midtransHandler) MidtransWebhookHandler(c *fiber.Ctx) error {
	if h.midtransService == nil {
		return presenters.ErrorResponse(c, fiber.StatusServiceUnavailable, domain.MessageFailedMidtransNotification, domain.ErrPaymentNotEnabled)
	}

	req := new(domain.MidtransNotification)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.midtransService.HandleNotification(c.Context(), *req); err != nil {
		logrus.WithError(err).WithField("order_number", req.OrderID).Warn("midtrans notification rejected")
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedMidtransNotification, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessMidtransNotification)
}
