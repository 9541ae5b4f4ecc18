package budgets

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

func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Repo.List(userContext(c), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load budgets: "+err.Error())
	}
	if items == nil {
		items = []Budget{}
	}
	return c.JSON(items)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body CreateBudgetRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	category := strings.TrimSpace(body.Category)
	if category == "" {
		return fiber.NewError(fiber.StatusBadRequest, "category required")
	}
	period := strings.TrimSpace(body.Period)
	if period == "" {
		period = PeriodMonthly
	}
	if !ValidPeriod(period) {
		return fiber.NewError(fiber.StatusBadRequest, "period must be monthly, quarterly or annual")
	}
	amount, err := money.Parse(body.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
	}
	if start.After(end) {
		return fiber.NewError(fiber.StatusBadRequest, "start_date must not be after end_date")
	}

	b, err := h.Repo.Create(userContext(c), userID, category, period, amount, start, end)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create budget: "+err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id := strings.TrimSpace(c.Params("id"))
	if _, err := uuid.Parse(id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "budget id must be a UUID")
	}

	existing, err := h.Repo.Get(userContext(c), userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "budget not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load budget: "+err.Error())
	}

	var body UpdateBudgetRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	category := existing.Category
	if body.Category != nil {
		if strings.TrimSpace(*body.Category) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category required")
		}
		category = strings.TrimSpace(*body.Category)
	}
	period := existing.Period
	if body.Period != nil {
		if !ValidPeriod(*body.Period) {
			return fiber.NewError(fiber.StatusBadRequest, "period must be monthly, quarterly or annual")
		}
		period = *body.Period
	}
	amount := existing.Amount
	if body.Amount != nil {
		amount, err = money.Parse(*body.Amount)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	start := existing.StartDate
	if body.StartDate != nil {
		start, err = parseDate(*body.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
	}
	end := existing.EndDate
	if body.EndDate != nil {
		end, err = parseDate(*body.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
	}
	if start.After(end) {
		return fiber.NewError(fiber.StatusBadRequest, "start_date must not be after end_date")
	}

	b, err := h.Repo.Update(userContext(c), userID, id, category, period, amount, start, end)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "budget not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update budget: "+err.Error())
	}
	return c.JSON(b)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id := strings.TrimSpace(c.Params("id"))
	if _, err := uuid.Parse(id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "budget id must be a UUID")
	}

	if err := h.Repo.Delete(userContext(c), userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "budget not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete budget: "+err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
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
