package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"backoffice/internal/service"
)

// ListContentKinds godoc
//
// @Summary  Storefront block kinds
// @Tags     content
// @Success  200 {array} service.ContentKind
// @Security BearerAuth
// @Router   /content/kinds [get]
func ListContentKinds(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Kinds())
	}
}

func ListContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blocks, err := svc.List(c.UserContext(), c.Params("kind"))
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(fiber.Map{"data": blocks})
	}
}

func GetContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		b, err := svc.Get(c.UserContext(), c.Params("kind"), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(b)
	}
}

func rawBody(c *fiber.Ctx) (json.RawMessage, error) {
	body := c.Body()
	if !json.Valid(body) {
		return nil, badRequest("BAD_REQUEST", "invalid JSON body")
	}
	// Body is reused by fasthttp after the handler returns.
	return append(json.RawMessage(nil), body...), nil
}

// CreateContent godoc
//
// @Summary  Add a block of a kind
// @Tags     content
// @Accept   json
// @Param    kind path string true "block kind, e.g. header.banner"
// @Success  201 {object} model.ContentBlock
// @Failure  409 {object} errorPayload "kind limit reached"
// @Failure  422 {object} errorPayload
// @Security BearerAuth
// @Router   /content/{kind} [post]
func CreateContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := rawBody(c)
		if err != nil {
			return respond(c, err)
		}
		b, err := svc.Create(c.UserContext(), c.Params("kind"), data)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

func UpdateContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		data, err := rawBody(c)
		if err != nil {
			return respond(c, err)
		}
		b, err := svc.Update(c.UserContext(), c.Params("kind"), id, data)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(b)
	}
}

func DeleteContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		if err := svc.Delete(c.UserContext(), c.Params("kind"), id); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func UploadContentImage(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		f, fh, err := formFile(c)
		if err != nil {
			return respond(c, err)
		}
		defer f.Close()

		b, err := svc.SetImage(c.UserContext(), c.Params("kind"), id, f, fh.Filename, fh.Size)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(b)
	}
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func ReorderContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in reorderRequest
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		blocks, err := svc.Reorder(c.UserContext(), c.Params("kind"), in.IDs)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(fiber.Map{"data": blocks})
	}
}
