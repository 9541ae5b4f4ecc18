package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsilmaro/c6/internal/audit"
)

type Handler struct {
	Selector *Selector
	Pool     *pgxpool.Pool // audit only; may be nil
}

func NewHandler(selector *Selector, pool *pgxpool.Pool) *Handler {
	return &Handler{Selector: selector, Pool: pool}
}

// Get serves GET /api/reports/:report_type?start_date=&end_date=&export=&months=.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	kind, err := ParseKind(c.Params("report_type"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid report type")
	}

	format, err := ParseFormat(c.Query("export"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid export format")
	}

	var r Range
	if v := strings.TrimSpace(c.Query("start_date")); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
		r.Start = &d
	}
	if v := strings.TrimSpace(c.Query("end_date")); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		r.End = &d
	}

	req := Request{
		Kind:   kind,
		Range:  r,
		Format: format,
		Months: c.QueryInt("months", 12),
	}

	res, err := h.Selector.Handle(userContext(c), userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidDateRange) {
			return fiber.NewError(fiber.StatusBadRequest, "start_date must not be after end_date")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build report: "+err.Error())
	}

	if res.Export != nil {
		h.auditExport(userContext(c), userID, req)
		c.Set("Content-Type", res.Export.MIMEType)
		c.Set("Content-Disposition", `attachment; filename="`+res.Export.Filename+`"`)
		return c.Send(res.Export.Bytes)
	}

	return c.JSON(res.Rows)
}

// auditExport records a download; failures are ignored so reports never break
// on audit trouble.
func (h *Handler) auditExport(ctx context.Context, userID string, req Request) {
	meta, _ := json.Marshal(fiber.Map{"kind": req.Kind.String(), "format": formatLabel(req.Format)})
	_ = audit.Write(ctx, h.Pool, audit.Entry{
		UserID:     &userID,
		Action:     "report.export",
		EntityType: "report",
		Metadata:   meta,
	})
}

func formatLabel(f Format) string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatPDF:
		return "pdf"
	default:
		return "none"
	}
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
