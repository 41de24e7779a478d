package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/validation"
)

// CategoryInput is the create/update payload for a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Feature     string `json:"feature" validate:"required,oneof=products footerIcons footerLinks"`
}

// CategoryService manages categories.
type CategoryService interface {
	Create(ctx context.Context, in CategoryInput) (*model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	// List returns categories of one feature, or of every feature when empty.
	List(ctx context.Context, feature string, limit, offset int) (*ListResult[model.Category], error)
	Update(ctx context.Context, id string, in CategoryInput) (*model.Category, error)
	// Delete removes the category and leaves its products uncategorized.
	// Footer categories still used by content blocks are rejected with ErrInUse.
	Delete(ctx context.Context, id string) error
}

// footerKinds maps footer category features to the content kind referencing them.
var footerKinds = map[string]string{
	model.FeatureFooterIcons: "footer.icon",
	model.FeatureFooterLinks: "footer.link",
}

type categoryService struct {
	repo    repository.CategoryRepository
	content repository.ContentRepository
}

func NewCategoryService(repo repository.CategoryRepository, content repository.ContentRepository) CategoryService {
	return &categoryService{repo: repo, content: content}
}

// ensureUnused fails with ErrInUse while anything of the category's feature
// points at it. Products are only counted when withProducts is set.
func (s *categoryService) ensureUnused(ctx context.Context, c *model.Category, withProducts bool) error {
	if c.Feature == model.FeatureProducts {
		if !withProducts {
			return nil
		}
		n, err := s.repo.CountProducts(ctx, c.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("category %w by %d product(s)", ErrInUse, n)
		}
		return nil
	}
	kind, ok := footerKinds[c.Feature]
	if !ok {
		return nil
	}
	n, err := s.content.CountByField(ctx, kind, "category", c.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category %w by %d %s block(s)", ErrInUse, n, kind)
	}
	return nil
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := nowFunc()
	c, err := s.repo.Create(ctx, &model.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Feature:     in.Feature,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return c, translate(err, "category name")
}

func (s *categoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "category")
	}
	return c, nil
}

func (s *categoryService) List(ctx context.Context, feature string, limit, offset int) (*ListResult[model.Category], error) {
	res, err := s.repo.List(ctx, feature, pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Category]{Items: res.Items, Total: res.Total}, nil
}

func (s *categoryService) Update(ctx context.Context, id string, in CategoryInput) (*model.Category, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "category")
	}
	if in.Feature != c.Feature {
		if err := s.ensureUnused(ctx, c, true); err != nil {
			return nil, err
		}
	}
	c.Name, c.Description, c.Feature = in.Name, in.Description, in.Feature
	c.UpdatedAt = nowFunc()
	out, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, translate(err, "category name")
	}
	return out, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err, "category")
	}
	if err := s.ensureUnused(ctx, c, false); err != nil {
		return err
	}
	return translate(s.repo.Delete(ctx, id), "category")
}

// ProductInput is the create/update payload for a product. Status is derived.
type ProductInput struct {
	Name       string  `json:"name" validate:"required,max=200"`
	CategoryID *string `json:"category_id" validate:"omitempty,uuid"`
	PriceCents int64   `json:"price_cents" validate:"gte=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
}

// ProductService manages the product catalog.
type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, f ProductFilter, limit, offset int) (*ListResult[model.Product], error)
	Update(ctx context.Context, id string, in ProductInput) (*model.Product, error)
	// Delete removes the product and its image.
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.ProductStats, error)
	// Export returns every product matching f.
	Export(ctx context.Context, f ProductFilter) ([]model.Product, error)
	// SetImage uploads an image and attaches it, replacing any previous one.
	SetImage(ctx context.Context, id string, r io.Reader, filename string, size int64) (*model.Product, error)
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	media      MediaService
	log        *zap.Logger
}

func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository, media MediaService, log *zap.Logger) ProductService {
	return &productService{repo: repo, categories: categories, media: media, log: log}
}

func (s *productService) validate(ctx context.Context, in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) == "" {
		in.CategoryID = nil
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.CategoryID == nil {
		return nil
	}
	c, err := s.categories.FindByID(ctx, *in.CategoryID)
	if err != nil {
		if isNotFound(err) {
			return validation.Field("category_id", "must reference an existing category")
		}
		return err
	}
	if c.Feature != model.FeatureProducts {
		return validation.Field("category_id", "must reference a products category")
	}
	return nil
}

// productWriteError reports a category removed between validation and the
// write as a field error on category_id.
func productWriteError(err error) error {
	if errors.Is(err, repository.ErrReferenced) {
		return validation.Field("category_id", "must reference an existing category")
	}
	return translate(err, "product")
}

func (s *productService) withURL(ctx context.Context, p *model.Product) *model.Product {
	if p != nil {
		p.ImageURL = s.media.URL(ctx, p.ImageKey)
	}
	return p
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	now := nowFunc()
	p, err := s.repo.Create(ctx, &model.Product{
		ID:         uuid.New().String(),
		Name:       in.Name,
		CategoryID: in.CategoryID,
		PriceCents: in.PriceCents,
		Stock:      in.Stock,
		Status:     model.StockStatus(in.Stock),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, productWriteError(err)
	}
	return p, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "product")
	}
	return s.withURL(ctx, p), nil
}

func (s *productService) List(ctx context.Context, f ProductFilter, limit, offset int) (*ListResult[model.Product], error) {
	res, err := s.repo.List(ctx, f, pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		s.withURL(ctx, &res.Items[i])
	}
	return &ListResult[model.Product]{Items: res.Items, Total: res.Total}, nil
}

func (s *productService) Update(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "product")
	}
	p.Name, p.CategoryID, p.PriceCents, p.Stock = in.Name, in.CategoryID, in.PriceCents, in.Stock
	p.Status = model.StockStatus(in.Stock)
	p.UpdatedAt = nowFunc()
	out, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, productWriteError(err)
	}
	return s.withURL(ctx, out), nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err, "product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "product")
	}
	if err := s.media.Delete(ctx, p.ImageKey); err != nil {
		s.log.Warn("orphaned object", zap.String("key", p.ImageKey), zap.Error(err))
	}
	return nil
}

func (s *productService) Stats(ctx context.Context) (*model.ProductStats, error) {
	return s.repo.Stats(ctx)
}

func (s *productService) Export(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	res, err := s.repo.List(ctx, f, everything)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *productService) SetImage(ctx context.Context, id string, r io.Reader, filename string, size int64) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "product")
	}
	var out *model.Product
	err = replaceImage(ctx, s.media, s.log, p.ImageKey, "products", r, filename, size, func(key string) error {
		p.ImageKey = key
		p.UpdatedAt = nowFunc()
		updated, err := s.repo.Update(ctx, p)
		if err != nil {
			return translate(err, "product")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.withURL(ctx, out), nil
}
