package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"backoffice/internal/http/middleware"
	"backoffice/internal/rbac"
	"backoffice/internal/service"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Categories   service.CategoryService
	Products     service.ProductService
	Orders       service.OrderService
	Customers    service.CustomerService
	Transactions service.TransactionService
	Roles        service.RoleService
	Users        service.UserService
	Auth         service.AuthService
	Content      service.ContentService
	Dashboard    service.DashboardService
}

func can(slug, action string) fiber.Handler {
	return middleware.RequirePermission(rbac.ID(slug, action))
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything except health probes and login requires a bearer token.
func RegisterRoutes(app *fiber.App, db *sql.DB, s Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Post("/auth/login", Login(s.Auth))

	api := app.Group("/", middleware.Authenticate(s.Auth))
	api.Get("/auth/me", Me())

	api.Get("/dashboard/stats", can(rbac.Dashboard, rbac.ActionView), DashboardStats(s.Dashboard))
	api.Get("/reports/summary", can(rbac.Report, rbac.ActionView), SalesReport(s.Dashboard))

	api.Get("/categories", can(rbac.Category, rbac.ActionView), ListCategories(s.Categories))
	api.Post("/categories", can(rbac.Category, rbac.ActionCreate), CreateCategory(s.Categories))
	api.Get("/categories/:id", can(rbac.Category, rbac.ActionView), GetCategory(s.Categories))
	api.Put("/categories/:id", can(rbac.Category, rbac.ActionEdit), UpdateCategory(s.Categories))
	api.Delete("/categories/:id", can(rbac.Category, rbac.ActionDelete), DeleteCategory(s.Categories))

	// Static segments go before :id.
	api.Get("/products/stats", can(rbac.Products, rbac.ActionView), ProductStats(s.Products))
	api.Get("/products/export", can(rbac.Products, rbac.ActionView), ExportProducts(s.Products))
	api.Get("/products", can(rbac.Products, rbac.ActionView), ListProducts(s.Products))
	api.Post("/products", can(rbac.Products, rbac.ActionCreate), CreateProduct(s.Products))
	api.Get("/products/:id", can(rbac.Products, rbac.ActionView), GetProduct(s.Products))
	api.Put("/products/:id", can(rbac.Products, rbac.ActionEdit), UpdateProduct(s.Products))
	api.Delete("/products/:id", can(rbac.Products, rbac.ActionDelete), DeleteProduct(s.Products))
	api.Post("/products/:id/image", can(rbac.Products, rbac.ActionEdit), UploadProductImage(s.Products))

	api.Get("/orders/stats", can(rbac.Orders, rbac.ActionView), OrderStats(s.Orders))
	api.Get("/orders/export", can(rbac.Orders, rbac.ActionView), ExportOrders(s.Orders))
	api.Get("/orders", can(rbac.Orders, rbac.ActionView), ListOrders(s.Orders))
	api.Post("/orders", can(rbac.Orders, rbac.ActionCreate), CreateOrder(s.Orders))
	api.Get("/orders/:id", can(rbac.Orders, rbac.ActionView), GetOrder(s.Orders))
	api.Put("/orders/:id", can(rbac.Orders, rbac.ActionEdit), UpdateOrder(s.Orders))
	api.Delete("/orders/:id", can(rbac.Orders, rbac.ActionDelete), DeleteOrder(s.Orders))

	api.Get("/customers/export", can(rbac.Customers, rbac.ActionView), ExportCustomers(s.Customers))
	api.Get("/customers", can(rbac.Customers, rbac.ActionView), ListCustomers(s.Customers))
	api.Post("/customers", can(rbac.Customers, rbac.ActionCreate), CreateCustomer(s.Customers))
	api.Get("/customers/:id", can(rbac.Customers, rbac.ActionView), GetCustomer(s.Customers))
	api.Put("/customers/:id", can(rbac.Customers, rbac.ActionEdit), UpdateCustomer(s.Customers))
	api.Delete("/customers/:id", can(rbac.Customers, rbac.ActionDelete), DeleteCustomer(s.Customers))
	api.Post("/customers/:id/avatar", can(rbac.Customers, rbac.ActionEdit), UploadCustomerAvatar(s.Customers))

	api.Get("/transactions/stats", can(rbac.Transactions, rbac.ActionView), TransactionStats(s.Transactions))
	api.Get("/transactions/export", can(rbac.Transactions, rbac.ActionView), ExportTransactions(s.Transactions))
	api.Get("/transactions", can(rbac.Transactions, rbac.ActionView), ListTransactions(s.Transactions))
	api.Post("/transactions", can(rbac.Transactions, rbac.ActionCreate), CreateTransaction(s.Transactions))
	api.Get("/transactions/:id", can(rbac.Transactions, rbac.ActionView), GetTransaction(s.Transactions))
	api.Delete("/transactions/:id", can(rbac.Transactions, rbac.ActionDelete), DeleteTransaction(s.Transactions))

	api.Get("/permissions", can(rbac.Role, rbac.ActionView), ListPermissions(s.Roles))
	api.Get("/roles", can(rbac.Role, rbac.ActionView), ListRoles(s.Roles))
	api.Post("/roles", can(rbac.Role, rbac.ActionCreate), CreateRole(s.Roles))
	api.Get("/roles/:id", can(rbac.Role, rbac.ActionView), GetRole(s.Roles))
	api.Put("/roles/:id", can(rbac.Role, rbac.ActionEdit), UpdateRole(s.Roles))
	api.Delete("/roles/:id", can(rbac.Role, rbac.ActionDelete), DeleteRole(s.Roles))

	api.Get("/users/export", can(rbac.Users, rbac.ActionView), ExportUsers(s.Users))
	api.Get("/users", can(rbac.Users, rbac.ActionView), ListUsers(s.Users))
	api.Post("/users", can(rbac.Users, rbac.ActionCreate), CreateUser(s.Users))
	api.Get("/users/:id", can(rbac.Users, rbac.ActionView), GetUser(s.Users))
	api.Put("/users/:id", can(rbac.Users, rbac.ActionEdit), UpdateUser(s.Users))
	api.Delete("/users/:id", can(rbac.Users, rbac.ActionDelete), DeleteUser(s.Users))
	api.Post("/users/:id/image", can(rbac.Users, rbac.ActionEdit), UploadUserImage(s.Users))

	api.Get("/content/kinds", can(rbac.Content, rbac.ActionView), ListContentKinds(s.Content))
	api.Put("/content/:kind/order", can(rbac.Content, rbac.ActionEdit), ReorderContent(s.Content))
	api.Get("/content/:kind", can(rbac.Content, rbac.ActionView), ListContent(s.Content))
	api.Post("/content/:kind", can(rbac.Content, rbac.ActionCreate), CreateContent(s.Content))
	api.Get("/content/:kind/:id", can(rbac.Content, rbac.ActionView), GetContent(s.Content))
	api.Put("/content/:kind/:id", can(rbac.Content, rbac.ActionEdit), UpdateContent(s.Content))
	api.Delete("/content/:kind/:id", can(rbac.Content, rbac.ActionDelete), DeleteContent(s.Content))
	api.Post("/content/:kind/:id/image", can(rbac.Content, rbac.ActionEdit), UploadContentImage(s.Content))
}
