package handler

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"backoffice/internal/report"
	"backoffice/internal/service"
)

func DashboardStats(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext())
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(st)
	}
}

// SalesReport godoc
//
// @Summary  Sales report for a period
// @Tags     reports
// @Produce  json,text/markdown
// @Param    from   query string false "first day (YYYY-MM-DD)"
// @Param    to     query string false "last day (YYYY-MM-DD)"
// @Param    format query string false "json or md" default(json)
// @Success  200 {object} model.SalesReport
// @Failure  400 {object} errorPayload
// @Security BearerAuth
// @Router   /reports/summary [get]
func SalesReport(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format := c.Query("format", "json")
		if format != "json" && format != "md" {
			return respond(c, badRequest("INVALID_FORMAT", "format must be json or md"))
		}
		r, err := dateRange(c)
		if err != nil {
			return respond(c, err)
		}
		rep, err := svc.Report(c.UserContext(), r)
		if err != nil {
			return respond(c, err)
		}
		if format == "json" {
			return c.JSON(rep)
		}

		var buf bytes.Buffer
		if err := report.WriteMarkdown(&buf, rep); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
		return c.Send(buf.Bytes())
	}
}
