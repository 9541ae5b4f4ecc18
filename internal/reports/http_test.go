package reports

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsilmaro/c6/internal/transactions"
)

func newTestApp(feed Feed, authed bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	if authed {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_id", "11111111-1111-1111-1111-111111111111")
			return c.Next()
		})
	}

	h := NewHandler(NewSelector(NewAggregator(feed)), nil)
	app.Get("/api/reports/:report_type", h.Get)
	return app
}

func defaultFeed() *fakeFeed {
	return &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "food", "50", "2024-01-05"),
		tx(transactions.TypeExpense, "food", "30", "2024-01-20"),
		tx(transactions.TypeExpense, "transport", "20", "2024-01-10"),
	}}
}

func TestReportEndpointJSON(t *testing.T) {
	app := newTestApp(defaultFeed(), true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/spending", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rows []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "food", rows[0]["category"])
	assert.Equal(t, "80", rows[0]["total"])
	assert.Equal(t, "transport", rows[1]["category"])
}

func TestReportEndpointInvalidType(t *testing.T) {
	app := newTestApp(defaultFeed(), true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/bogus", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid report type", body["error"])
}

func TestReportEndpointInvalidExport(t *testing.T) {
	app := newTestApp(defaultFeed(), true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/spending?export=xlsx", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid export format", body["error"])
}

func TestReportEndpointInvalidRange(t *testing.T) {
	app := newTestApp(defaultFeed(), true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/spending?start_date=2024-03-01&end_date=2024-01-01", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportEndpointBadDate(t *testing.T) {
	app := newTestApp(defaultFeed(), true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/spending?start_date=yesterday", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportEndpointCSVDownload(t *testing.T) {
	app := newTestApp(defaultFeed(), true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/spending?export=csv", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="spending_report.csv"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Category,Amount")
	assert.Contains(t, string(body), "food,80.00")
}

func TestReportEndpointPDFDownload(t *testing.T) {
	app := newTestApp(defaultFeed(), true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/trends?export=pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="trends_report.pdf"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(body) > 0 && string(body[:4]) == "%PDF")
}

func TestReportEndpointUnauthorized(t *testing.T) {
	app := newTestApp(defaultFeed(), false)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/spending", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestReportEndpointFeedError(t *testing.T) {
	app := newTestApp(&fakeFeed{err: errors.New("db down")}, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/spending", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
