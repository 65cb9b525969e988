package handlers

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// SendCSV writes reports as a CSV attachment named <prefix>_<timestamp>.csv.
// An empty result is answered with 204 No Content.
func SendCSV(c *fiber.Ctx, m *metrics.Metrics, kind, prefix string, reports []models.Report, write func(io.Writer, []models.Report) error) error {
	if len(reports) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	var buf bytes.Buffer
	if err := write(&buf, reports); err != nil {
		return Fail(c, err)
	}
	m.Exported(kind, len(reports))

	filename := fmt.Sprintf("%s_%s.csv", prefix, time.Now().UTC().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
