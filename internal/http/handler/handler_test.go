package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/auth"
	"backoffice/internal/csvexport"
	"backoffice/internal/logging"
	"backoffice/internal/model"
	"backoffice/internal/rbac"
	"backoffice/internal/service"
	serviceMocks "backoffice/internal/service/mocks"
	"backoffice/internal/storage"
	"backoffice/internal/validation"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newApp()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := newApp()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("product %w", service.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", fmt.Errorf("category %w", service.ErrConflict), http.StatusConflict, "CONFLICT"},
		{"limit", fmt.Errorf("header.banner %w", service.ErrLimitReached), http.StatusConflict, "LIMIT_REACHED"},
		{"in use", fmt.Errorf("role %w by 2 user(s)", service.ErrInUse), http.StatusConflict, "IN_USE"},
		{"media", service.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"inactive", service.ErrInactiveUser, http.StatusForbidden, "FORBIDDEN"},
		{"storage down", fmt.Errorf("put: %w", storage.ErrUnavailable), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"fiber 413", fiber.ErrRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Error.Code)
		})
	}
}

func TestErrorHandler_LogsUnknownErrors(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "info", nil)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	app.Get("/", func(c *fiber.Ctx) error { return errors.New("db exploded") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	body := decodeError(t, resp)
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.Contains(t, buf.String(), "db exploded")
	assert.Contains(t, buf.String(), "request failed")
}

func TestListProducts(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := newApp()
	app.Get("/products", ListProducts(mockSvc))

	t.Run("success", func(t *testing.T) {
		catID := uuid.New().String()
		res := &service.ListResult[model.Product]{
			Items: []model.Product{{ID: uuid.New().String(), Name: "Sneaker"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, service.ProductFilter{Status: "In Stock", Query: "snea", CategoryID: catID}, 20, 40).
			Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/products?limit=20&offset=40&status=In+Stock&q=snea&category_id="+catID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out service.ListResult[model.Product]
		json.NewDecoder(resp.Body).Decode(&out)
		assert.Len(t, out.Items, 1)
		assert.Equal(t, 1, out.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("negative offset", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products?offset=-1", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid category", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products?category_id=shoes", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, service.ProductFilter{}, 10, 0).Return(nil, errors.New("service error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestCreateProduct(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := newApp()
	app.Post("/products", CreateProduct(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("created", func(t *testing.T) {
		in := service.ProductInput{Name: "Sneaker", PriceCents: 1999, Stock: 3}
		mockSvc.On("Create", mock.Anything, in).
			Return(&model.Product{ID: uuid.New().String(), Name: "Sneaker", Status: model.StatusInStock}, nil).Once()

		resp := post(`{"name":"Sneaker","price_cents":1999,"stock":3}`)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation failed", func(t *testing.T) {
		verr := &validation.Error{Fields: map[string]string{"name": "is required"}}
		mockSvc.On("Create", mock.Anything, service.ProductInput{}).Return(nil, verr).Once()

		resp := post(`{}`)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Equal(t, "is required", body.Error.Fields["name"])
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := post(`{"name":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Error.Code)
	})
}

func TestGetProduct(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := newApp()
	app.Get("/products/:id", GetProduct(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Product{ID: id, Name: "Sneaker"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var out model.Product
		json.NewDecoder(resp.Body).Decode(&out)
		assert.Equal(t, id, out.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, fmt.Errorf("product %w", service.ErrNotFound)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, "product not found", body.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products/invalid-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteCategory(t *testing.T) {
	mockSvc := new(serviceMocks.MockCategoryService)
	app := newApp()
	app.Delete("/categories/:id", DeleteCategory(mockSvc))

	id := uuid.New().String()
	mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/categories/"+id, nil))

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestExportProducts(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := newApp()
	app.Get("/products/export", ExportProducts(mockSvc))

	mockSvc.On("Export", mock.Anything, service.ProductFilter{Status: "Out of Stock"}).
		Return([]model.Product{{ID: "p-1", Name: "Boot", CategoryName: "Shoes", PriceCents: 5000, Status: "Out of Stock"}}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products/export?status=Out+of+Stock", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="products_data.csv"`, resp.Header.Get("Content-Disposition"))

	raw, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Name,Category,Price,Stock,Status", lines[0])
	assert.Equal(t, "p-1,Boot,Shoes,"+csvexport.Money(5000)+",0,Out of Stock", lines[1])
	mockSvc.AssertExpectations(t)
}

func TestExportProducts_InvalidCategory(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := newApp()
	app.Get("/products/export", ExportProducts(mockSvc))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/products/export?category_id=abc", nil))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	mockSvc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
}

func TestUploadProductImage(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := newApp()
	app.Post("/products/:id/image", UploadProductImage(mockSvc))
	id := uuid.New().String()

	multipartBody := func() (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "shoe.png")
		part.Write([]byte("png-bytes"))
		writer.Close()
		return body, writer.FormDataContentType()
	}

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody()
		mockSvc.On("SetImage", mock.Anything, id, mock.Anything, "shoe.png", int64(9)).
			Return(&model.Product{ID: id, ImageKey: "products/x.png"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/products/"+id+"/image", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/products/"+id+"/image", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		body, ct := multipartBody()
		mockSvc.On("SetImage", mock.Anything, id, mock.Anything, "shoe.png", int64(9)).
			Return(nil, service.ErrUnsupportedMedia).Once()

		req := httptest.NewRequest(http.MethodPost, "/products/"+id+"/image", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListOrders_DateFilter(t *testing.T) {
	mockSvc := new(serviceMocks.MockOrderService)
	app := newApp()
	app.Get("/orders", ListOrders(mockSvc))

	t.Run("bounds parsed", func(t *testing.T) {
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(f service.OrderFilter) bool {
			return f.Status == "Shipped" && f.Dates.From != nil && f.Dates.From.Equal(from) && f.Dates.To == nil
		}), 10, 0).Return(&service.ListResult[model.Order]{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/orders?status=Shipped&from=2024-03-01", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad date", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/orders?to=03/01/2024", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_DATE", decodeError(t, resp).Error.Code)
	})
}

func TestSalesReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockDashboardService)
	app := newApp()
	app.Get("/reports/summary", SalesReport(mockSvc))
	rep := &model.SalesReport{Orders: 2, RevenueCents: 3000}

	t.Run("json", func(t *testing.T) {
		mockSvc.On("Report", mock.Anything, service.DateRange{}).Return(rep, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/summary", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var out model.SalesReport
		json.NewDecoder(resp.Body).Decode(&out)
		assert.Equal(t, 2, out.Orders)
	})

	t.Run("markdown", func(t *testing.T) {
		mockSvc.On("Report", mock.Anything, service.DateRange{}).Return(rep, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/summary?format=md", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/markdown; charset=utf-8", resp.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(raw), "# Sales Report")
	})

	t.Run("unknown format", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/summary?format=pdf", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_FORMAT", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestCreateContent(t *testing.T) {
	mockSvc := new(serviceMocks.MockContentService)
	app := newApp()
	app.Post("/content/:kind", CreateContent(mockSvc))

	t.Run("created", func(t *testing.T) {
		data := `{"title":"Sale","subtitle":"Up to 50%","url":"/sale"}`
		mockSvc.On("Create", mock.Anything, "header.banner", json.RawMessage(data)).
			Return(&model.ContentBlock{ID: uuid.New().String(), Kind: "header.banner", Data: json.RawMessage(data)}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/content/header.banner", strings.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("limit reached", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, "header.logo-desktop", json.RawMessage(`{}`)).
			Return(nil, fmt.Errorf("header.logo-desktop %w (1)", service.ErrLimitReached)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/content/header.logo-desktop", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "LIMIT_REACHED", decodeError(t, resp).Error.Code)
	})

	t.Run("not json", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/content/brands", strings.NewReader("hello")))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteUser_PassesActor(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	actor := &model.Principal{UserID: uuid.New().String()}
	target := uuid.New().String()

	app := newApp()
	app.Delete("/users/:id", func(c *fiber.Ctx) error {
		c.Locals("principal", actor)
		return c.Next()
	}, DeleteUser(mockSvc))

	mockSvc.On("Delete", mock.Anything, actor.UserID, target).Return(nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/users/"+target, nil))

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	mockAuth := new(serviceMocks.MockAuthService)
	mockProducts := new(serviceMocks.MockProductService)
	app := newApp()
	RegisterRoutes(app, nil, Services{Auth: mockAuth, Products: mockProducts})

	viewer := &model.Principal{UserID: "u-1", Permissions: []string{rbac.ID(rbac.Products, rbac.ActionView)}}
	mockAuth.On("Authenticate", mock.Anything, "Bearer viewer").Return(viewer, nil)
	mockAuth.On("Authenticate", mock.Anything, "").Return(nil, auth.ErrMissingToken)

	do := func(method, path, token string) *http.Response {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("missing token", func(t *testing.T) {
		resp := do(http.MethodGet, "/products", "")

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("permission granted", func(t *testing.T) {
		mockProducts.On("Stats", mock.Anything).Return(&model.ProductStats{Total: 4}, nil).Once()

		resp := do(http.MethodGet, "/products/stats", "viewer")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockProducts.AssertExpectations(t)
	})

	t.Run("permission denied", func(t *testing.T) {
		resp := do(http.MethodDelete, "/products/"+uuid.New().String(), "viewer")

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	t.Run("not found route", func(t *testing.T) {
		resp := do(http.MethodGet, "/non-existent", "viewer")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp := do(http.MethodPatch, "/products", "viewer")

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("login is public", func(t *testing.T) {
		mockAuth.On("Login", mock.Anything, "ana@shop.io", "wrong").Return(nil, service.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@shop.io","password":"wrong"}`))
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid email or password", decodeError(t, resp).Error.Message)
	})
}
