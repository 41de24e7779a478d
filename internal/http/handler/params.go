package handler

import (
	"encoding/json"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"backoffice/internal/csvexport"
	"backoffice/internal/service"
)

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func idParam(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if !isUUID(id) {
		return "", badRequest("INVALID_ID", "invalid id format")
	}
	return id, nil
}

// pageParams reads limit and offset; service defaults apply to zero values.
func pageParams(c *fiber.Ctx) (int, int, error) {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(service.DefaultLimit)))
	if err != nil || limit < 0 {
		return 0, 0, badRequest("INVALID_LIMIT", "invalid limit")
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, badRequest("INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

// dateRange reads optional from/to query dates (YYYY-MM-DD).
func dateRange(c *fiber.Ctx) (service.DateRange, error) {
	var r service.DateRange
	if s := c.Query("from"); s != "" {
		t, err := service.ParseDate(s)
		if err != nil {
			return r, badRequest("INVALID_DATE", "from must be a date (YYYY-MM-DD)")
		}
		r.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := service.ParseDate(s)
		if err != nil {
			return r, badRequest("INVALID_DATE", "to must be a date (YYYY-MM-DD)")
		}
		r.To = &t
	}
	return r, nil
}

func bindJSON(c *fiber.Ctx, v any) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return badRequest("BAD_REQUEST", "invalid JSON body")
	}
	return nil
}

// formFile opens the multipart field "file".
func formFile(c *fiber.Ctx) (multipart.File, *multipart.FileHeader, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, nil, badRequest("FILE_REQUIRED", "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, badRequest("FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	return f, fh, nil
}

func sendCSV(c *fiber.Ctx, t csvexport.Table) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+t.Filename+`"`)
	return csvexport.WriteTable(c.Response().BodyWriter(), t)
}
