package handlers

import (
	"WA-Order-Bot/domain"
	"WA-Order-Bot/internal/api/presenters"
	"WA-Order-Bot/pkg/chat"

	"github.com/gofiber/fiber/v2"
)

type (
	ChatSessionHandler interface {
		GetSessions(c *fiber.Ctx) error
		GetSession(c *fiber.Ctx) error
		ResetSession(c *fiber.Ctx) error
	}

	chatSessionHandler struct {
		chatService chat.ChatService
	}
)

func NewChatSessionHandler(chatService chat.ChatService) ChatSessionHandler {
	return &chatSessionHandler{
		chatService: chatService,
	}
}

func (h *chatSessionHandler) GetSessions(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	sessions, count, err := h.chatService.GetSessions(c.Context(), page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedGetChatSessions, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"items":      sessions,
		"pagination": domain.NewPagination(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetChatSessions)
}

func (h *chatSessionHandler) GetSession(c *fiber.Ctx) error {
	res, err := h.chatService.GetSessionByPhone(c.Context(), c.Params("phone"))
	if err != nil {
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedGetChatSessions, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetChatSessions)
}

func (h *chatSessionHandler) ResetSession(c *fiber.Ctx) error {
	if err := h.chatService.ResetSession(c.Context(), c.Params("phone")); err != nil {
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedResetChatSession, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessResetChatSession)
}
