package handlers

import (
	"errors"
	"strconv"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/internal/utils/storage"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrChatSessionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrCategoryNameTaken),
		errors.Is(err, domain.ErrProductInUse),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrParseUUID),
		errors.Is(err, domain.ErrBlankName),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidOrderStatus),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrCategoryInactive),
		errors.Is(err, domain.ErrInvalidImageFormat),
		errors.Is(err, storage.ErrFileTypeNotAllowed),
		errors.Is(err, storage.ErrFileTooLarge):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrInvalidSignature):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotConfigured),
		errors.Is(err, domain.ErrPaymentNotEnabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// referenceStatus treats a missing referenced entity in a request body as a
// bad request rather than a missing resource.
func referenceStatus(err error, refs ...error) int {
	for _, ref := range refs {
		if errors.Is(err, ref) {
			return fiber.StatusBadRequest
		}
	}
	return statusFromError(err)
}

func parsePagination(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
