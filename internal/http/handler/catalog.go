package handler

import (
	"github.com/gofiber/fiber/v2"

	"backoffice/internal/csvexport"
	"backoffice/internal/service"
)

// ListCategories godoc
//
// @Summary  List categories
// @Tags     categories
// @Param    feature query string false "products, footerIcons or footerLinks"
// @Param    limit   query int    false "page size" default(10)
// @Param    offset  query int    false "page offset" default(0)
// @Success  200 {object} service.ListResult[model.Category]
// @Security BearerAuth
// @Router   /categories [get]
func ListCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return respond(c, err)
		}
		res, err := svc.List(c.UserContext(), c.Query("feature"), limit, offset)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(res)
	}
}

func GetCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		cat, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(cat)
	}
}

// CreateCategory godoc
//
// @Summary  Create a category
// @Tags     categories
// @Accept   json
// @Param    body body service.CategoryInput true "category"
// @Success  201 {object} model.Category
// @Failure  409 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Security BearerAuth
// @Router   /categories [post]
func CreateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CategoryInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		cat, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

func UpdateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		var in service.CategoryInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		cat, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(cat)
	}
}

// DeleteCategory removes a category; its products become uncategorized.
func DeleteCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func productFilter(c *fiber.Ctx) (service.ProductFilter, error) {
	f := service.ProductFilter{
		Status:     c.Query("status"),
		Query:      c.Query("q"),
		CategoryID: c.Query("category_id"),
	}
	if f.CategoryID != "" && !isUUID(f.CategoryID) {
		return f, badRequest("INVALID_ID", "invalid category_id")
	}
	return f, nil
}

// ListProducts godoc
//
// @Summary  List products
// @Tags     products
// @Param    status      query string false "In Stock or Out of Stock"
// @Param    q           query string false "name contains"
// @Param    category_id query string false "category id"
// @Param    limit       query int    false "page size" default(10)
// @Param    offset      query int    false "page offset" default(0)
// @Success  200 {object} service.ListResult[model.Product]
// @Security BearerAuth
// @Router   /products [get]
func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return respond(c, err)
		}
		f, err := productFilter(c)
		if err != nil {
			return respond(c, err)
		}
		res, err := svc.List(c.UserContext(), f, limit, offset)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(res)
	}
}

func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(p)
	}
}

// CreateProduct godoc
//
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Param    body body service.ProductInput true "product"
// @Success  201 {object} model.Product
// @Failure  422 {object} errorPayload
// @Security BearerAuth
// @Router   /products [post]
func CreateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ProductInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		p, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		var in service.ProductInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		p, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(p)
	}
}

func DeleteProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ProductStats(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext())
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(st)
	}
}

// ExportProducts streams the filtered catalog as products_data.csv.
//
// @Summary  Export products as CSV
// @Tags     products
// @Produce  text/csv
// @Success  200 {file} file
// @Security BearerAuth
// @Router   /products/export [get]
func ExportProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := productFilter(c)
		if err != nil {
			return respond(c, err)
		}
		items, err := svc.Export(c.UserContext(), f)
		if err != nil {
			return respond(c, err)
		}
		return sendCSV(c, csvexport.Products(items))
	}
}

// UploadProductImage godoc
//
// @Summary  Attach an image to a product
// @Tags     products
// @Accept   multipart/form-data
// @Param    file formData file true "image"
// @Success  200 {object} model.Product
// @Failure  415 {object} errorPayload
// @Security BearerAuth
// @Router   /products/{id}/image [post]
func UploadProductImage(svc service.ProductService) fiber.Handler {
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

		p, err := svc.SetImage(c.UserContext(), id, f, fh.Filename, fh.Size)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(p)
	}
}
