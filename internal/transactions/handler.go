package transactions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jsilmaro/c6/internal/money"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func getUserID(c *fiber.Ctx) (string, bool) {
	if v := c.Locals("user_id"); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	f := ListFilter{
		Type:     strings.TrimSpace(c.Query("type")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	if f.Type != "" && !ValidType(f.Type) {
		return fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
	}
	if v := strings.TrimSpace(c.Query("start_date")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
		f.Start = &d
	}
	if v := strings.TrimSpace(c.Query("end_date")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		f.End = &d
	}

	items, err := h.Repo.List(userContext(c), userID, f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load transactions: "+err.Error())
	}
	if items == nil {
		items = []Transaction{}
	}
	return c.JSON(items)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body CreateTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if !ValidType(body.Type) {
		return fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
	}
	if strings.TrimSpace(body.Category) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "category required")
	}
	amount, err := money.Parse(body.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	date, err := parseDate(body.Date)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	t, err := h.Repo.Create(userContext(c), userID, amount, body.Type, strings.TrimSpace(body.Category), strings.TrimSpace(body.Description), date)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create transaction: "+err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id := strings.TrimSpace(c.Params("id"))
	if _, err := uuid.Parse(id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "transaction id must be a UUID")
	}

	existing, err := h.Repo.Get(userContext(c), userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load transaction: "+err.Error())
	}

	var body UpdateTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	amount := existing.Amount
	if body.Amount != nil {
		amount, err = money.Parse(*body.Amount)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	typ := existing.Type
	if body.Type != nil {
		if !ValidType(*body.Type) {
			return fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
		}
		typ = *body.Type
	}
	category := existing.Category
	if body.Category != nil {
		if strings.TrimSpace(*body.Category) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category required")
		}
		category = strings.TrimSpace(*body.Category)
	}
	description := existing.Description
	if body.Description != nil {
		description = strings.TrimSpace(*body.Description)
	}
	date := existing.Date
	if body.Date != nil {
		date, err = parseDate(*body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}

	t, err := h.Repo.Update(userContext(c), userID, id, amount, typ, category, description, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update transaction: "+err.Error())
	}
	return c.JSON(t)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id := strings.TrimSpace(c.Params("id"))
	if _, err := uuid.Parse(id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "transaction id must be a UUID")
	}

	if err := h.Repo.Delete(userContext(c), userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete transaction: "+err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
