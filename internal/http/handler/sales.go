package handler

import (
	"github.com/gofiber/fiber/v2"

	"backoffice/internal/csvexport"
	"backoffice/internal/service"
)

func orderFilter(c *fiber.Ctx) (service.OrderFilter, error) {
	dates, err := dateRange(c)
	if err != nil {
		return service.OrderFilter{}, err
	}
	return service.OrderFilter{
		Status:   c.Query("status"),
		Customer: c.Query("customer"),
		Product:  c.Query("product"),
		Dates:    dates,
	}, nil
}

// ListOrders godoc
//
// @Summary  List orders
// @Tags     orders
// @Param    status   query string false "Pending, Shipped or Delivered"
// @Param    customer query string false "customer contains"
// @Param    product  query string false "product contains"
// @Param    from     query string false "first day (YYYY-MM-DD)"
// @Param    to       query string false "last day (YYYY-MM-DD)"
// @Param    limit    query int    false "page size" default(10)
// @Param    offset   query int    false "page offset" default(0)
// @Success  200 {object} service.ListResult[model.Order]
// @Failure  400 {object} errorPayload
// @Security BearerAuth
// @Router   /orders [get]
func ListOrders(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return respond(c, err)
		}
		f, err := orderFilter(c)
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

func GetOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		o, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(o)
	}
}

func CreateOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.OrderInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		o, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(o)
	}
}

func UpdateOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		var in service.OrderInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		o, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(o)
	}
}

func DeleteOrder(svc service.OrderService) fiber.Handler {
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

func OrderStats(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext())
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(st)
	}
}

func ExportOrders(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := orderFilter(c)
		if err != nil {
			return respond(c, err)
		}
		items, err := svc.Export(c.UserContext(), f)
		if err != nil {
			return respond(c, err)
		}
		return sendCSV(c, csvexport.Orders(items))
	}
}

func customerFilter(c *fiber.Ctx) service.CustomerFilter {
	return service.CustomerFilter{Status: c.Query("status"), Query: c.Query("q")}
}

// ListCustomers godoc
//
// @Summary  List customers
// @Tags     customers
// @Param    status query string false "Active, Inactive or Banned"
// @Param    q      query string false "name or email contains"
// @Param    limit  query int    false "page size" default(10)
// @Param    offset query int    false "page offset" default(0)
// @Success  200 {object} service.ListResult[model.Customer]
// @Security BearerAuth
// @Router   /customers [get]
func ListCustomers(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return respond(c, err)
		}
		res, err := svc.List(c.UserContext(), customerFilter(c), limit, offset)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(res)
	}
}

// GetCustomer returns the customer with its order history.
//
// @Summary  Customer detail
// @Tags     customers
// @Success  200 {object} model.CustomerDetail
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /customers/{id} [get]
func GetCustomer(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		d, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(d)
	}
}

func CreateCustomer(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CustomerInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		cust, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cust)
	}
}

func UpdateCustomer(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		var in service.CustomerInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		cust, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(cust)
	}
}

func DeleteCustomer(svc service.CustomerService) fiber.Handler {
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

func ExportCustomers(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Export(c.UserContext(), customerFilter(c))
		if err != nil {
			return respond(c, err)
		}
		return sendCSV(c, csvexport.Customers(items))
	}
}

func UploadCustomerAvatar(svc service.CustomerService) fiber.Handler {
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

		cust, err := svc.SetAvatar(c.UserContext(), id, f, fh.Filename, fh.Size)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(cust)
	}
}

func transactionFilter(c *fiber.Ctx) (service.TransactionFilter, error) {
	dates, err := dateRange(c)
	if err != nil {
		return service.TransactionFilter{}, err
	}
	return service.TransactionFilter{
		Status:   c.Query("status"),
		Customer: c.Query("customer"),
		Dates:    dates,
	}, nil
}

func ListTransactions(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return respond(c, err)
		}
		f, err := transactionFilter(c)
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

func GetTransaction(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		t, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(t)
	}
}

func CreateTransaction(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.TransactionInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		t, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

func DeleteTransaction(svc service.TransactionService) fiber.Handler {
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

func TransactionStats(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext())
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(st)
	}
}

func ExportTransactions(svc service.TransactionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := transactionFilter(c)
		if err != nil {
			return respond(c, err)
		}
		items, err := svc.Export(c.UserContext(), f)
		if err != nil {
			return respond(c, err)
		}
		return sendCSV(c, csvexport.Transactions(items))
	}
}
