package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	repoMocks "backoffice/internal/repository/mocks"
	"backoffice/internal/storage"
	storeMocks "backoffice/internal/storage/mocks"
	"backoffice/internal/validation"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         CategoryInput
		setupMocks func(mRepo *repoMocks.MockCategoryRepository)
		wantErr    error
		wantFields []string
	}{
		{
			name: "happy path trims name",
			in:   CategoryInput{Name: "  Shoes ", Feature: model.FeatureProducts},
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository) {
				mRepo.On("Create", ctx, mock.MatchedBy(func(c *model.Category) bool {
					return c.Name == "Shoes" && c.ID != "" && !c.CreatedAt.IsZero()
				})).Return(&model.Category{ID: "cat-1", Name: "Shoes"}, nil)
			},
		},
		{
			name:       "missing name and bad feature",
			in:         CategoryInput{Feature: "sidebar"},
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository) {},
			wantFields: []string{"name", "feature"},
		},
		{
			name: "duplicate name",
			in:   CategoryInput{Name: "Shoes", Feature: model.FeatureProducts},
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository) {
				mRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			wantErr: ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockCategoryRepository)
			svc := NewCategoryService(mRepo, new(repoMocks.MockContentRepository))
			tt.setupMocks(mRepo)

			c, err := svc.Create(ctx, tt.in)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantFields != nil:
				ve, ok := validation.As(err)
				require.True(t, ok, "expected validation error, got %v", err)
				for _, f := range tt.wantFields {
					assert.Contains(t, ve.Fields, f)
				}
			default:
				assert.NoError(t, err)
				assert.NotNil(t, c)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository)
		wantErr    error
		wantMsg    string
	}{
		{
			name: "products category with products is unassigned",
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository) {
				mRepo.On("FindByID", ctx, "cat-1").Return(&model.Category{ID: "cat-1", Feature: model.FeatureProducts}, nil)
				mRepo.On("Delete", ctx, "cat-1").Return(nil)
			},
		},
		{
			name: "unused footer link category",
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository) {
				mRepo.On("FindByID", ctx, "cat-1").Return(&model.Category{ID: "cat-1", Feature: model.FeatureFooterLinks}, nil)
				mContent.On("CountByField", ctx, "footer.link", "category", "cat-1").Return(0, nil)
				mRepo.On("Delete", ctx, "cat-1").Return(nil)
			},
		},
		{
			name: "footer icon category still referenced",
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository) {
				mRepo.On("FindByID", ctx, "cat-1").Return(&model.Category{ID: "cat-1", Feature: model.FeatureFooterIcons}, nil)
				mContent.On("CountByField", ctx, "footer.icon", "category", "cat-1").Return(2, nil)
			},
			wantErr: ErrInUse,
			wantMsg: "category is in use by 2 footer.icon block(s)",
		},
		{
			name: "missing",
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository) {
				mRepo.On("FindByID", ctx, "cat-1").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
			wantMsg: "category not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockCategoryRepository)
			mContent := new(repoMocks.MockContentRepository)
			svc := NewCategoryService(mRepo, mContent)
			tt.setupMocks(mRepo, mContent)

			err := svc.Delete(ctx, "cat-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.EqualError(t, err, tt.wantMsg)
				mRepo.AssertNotCalled(t, "Delete", ctx, "cat-1")
			} else {
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
			mContent.AssertExpectations(t)
		})
	}
}

func TestCategoryService_Update_FeatureChange(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		current    string
		setupMocks func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository)
		next       string
		wantErr    error
	}{
		{
			name:    "products category with products",
			current: model.FeatureProducts,
			next:    model.FeatureFooterLinks,
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository) {
				mRepo.On("CountProducts", ctx, "cat-1").Return(4, nil)
			},
			wantErr: ErrInUse,
		},
		{
			name:    "footer links category used by links",
			current: model.FeatureFooterLinks,
			next:    model.FeatureProducts,
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository) {
				mContent.On("CountByField", ctx, "footer.link", "category", "cat-1").Return(1, nil)
			},
			wantErr: ErrInUse,
		},
		{
			name:    "empty products category moves",
			current: model.FeatureProducts,
			next:    model.FeatureFooterIcons,
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository) {
				mRepo.On("CountProducts", ctx, "cat-1").Return(0, nil)
				mRepo.On("Update", ctx, mock.MatchedBy(func(c *model.Category) bool {
					return c.Feature == model.FeatureFooterIcons
				})).Return(&model.Category{ID: "cat-1", Feature: model.FeatureFooterIcons}, nil)
			},
		},
		{
			name:    "same feature skips reference checks",
			current: model.FeatureProducts,
			next:    model.FeatureProducts,
			setupMocks: func(mRepo *repoMocks.MockCategoryRepository, mContent *repoMocks.MockContentRepository) {
				mRepo.On("Update", ctx, mock.Anything).Return(&model.Category{ID: "cat-1", Feature: model.FeatureProducts}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockCategoryRepository)
			mContent := new(repoMocks.MockContentRepository)
			svc := NewCategoryService(mRepo, mContent)
			mRepo.On("FindByID", ctx, "cat-1").Return(&model.Category{ID: "cat-1", Name: "Shoes", Feature: tt.current}, nil)
			tt.setupMocks(mRepo, mContent)

			c, err := svc.Update(ctx, "cat-1", CategoryInput{Name: "Shoes", Feature: tt.next})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.next, c.Feature)
			}
			mRepo.AssertExpectations(t)
			mContent.AssertExpectations(t)
		})
	}
}

func newProductService(mRepo *repoMocks.MockProductRepository, mCat *repoMocks.MockCategoryRepository, mStore *storeMocks.MockStorage) ProductService {
	return NewProductService(mRepo, mCat, NewMediaService(mStore, time.Minute, zap.NewNop()), zap.NewNop())
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	catID := "5b7c9a46-3f0e-4d7c-9d61-1f1c4f1b2a10"

	tests := []struct {
		name       string
		in         ProductInput
		setupMocks func(mRepo *repoMocks.MockProductRepository, mCat *repoMocks.MockCategoryRepository)
		wantField  string
		wantStatus string
	}{
		{
			name: "in stock with category",
			in:   ProductInput{Name: "Sneaker", CategoryID: &catID, PriceCents: 1999, Stock: 2},
			setupMocks: func(mRepo *repoMocks.MockProductRepository, mCat *repoMocks.MockCategoryRepository) {
				mCat.On("FindByID", ctx, catID).Return(&model.Category{ID: catID, Feature: model.FeatureProducts}, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(p *model.Product) bool {
					return p.Status == model.StatusInStock && *p.CategoryID == catID
				})).Return(&model.Product{ID: "p-1", Status: model.StatusInStock}, nil)
			},
			wantStatus: model.StatusInStock,
		},
		{
			name: "zero stock is out of stock and blank category is dropped",
			in:   ProductInput{Name: "Boot", CategoryID: new(string)},
			setupMocks: func(mRepo *repoMocks.MockProductRepository, mCat *repoMocks.MockCategoryRepository) {
				mRepo.On("Create", ctx, mock.MatchedBy(func(p *model.Product) bool {
					return p.Status == model.StatusOutOfStock && p.CategoryID == nil
				})).Return(&model.Product{ID: "p-2", Status: model.StatusOutOfStock}, nil)
			},
			wantStatus: model.StatusOutOfStock,
		},
		{
			name: "category of another feature",
			in:   ProductInput{Name: "Sneaker", CategoryID: &catID},
			setupMocks: func(mRepo *repoMocks.MockProductRepository, mCat *repoMocks.MockCategoryRepository) {
				mCat.On("FindByID", ctx, catID).Return(&model.Category{ID: catID, Feature: model.FeatureFooterLinks}, nil)
			},
			wantField: "category_id",
		},
		{
			name: "unknown category",
			in:   ProductInput{Name: "Sneaker", CategoryID: &catID},
			setupMocks: func(mRepo *repoMocks.MockProductRepository, mCat *repoMocks.MockCategoryRepository) {
				mCat.On("FindByID", ctx, catID).Return(nil, sql.ErrNoRows)
			},
			wantField: "category_id",
		},
		{
			name: "category removed before insert",
			in:   ProductInput{Name: "Sneaker", CategoryID: &catID},
			setupMocks: func(mRepo *repoMocks.MockProductRepository, mCat *repoMocks.MockCategoryRepository) {
				mCat.On("FindByID", ctx, catID).Return(&model.Category{ID: catID, Feature: model.FeatureProducts}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, fmt.Errorf("%w: products_category_id_fkey", repository.ErrReferenced))
			},
			wantField: "category_id",
		},
		{
			name:       "negative price",
			in:         ProductInput{Name: "Sneaker", PriceCents: -1},
			setupMocks: func(mRepo *repoMocks.MockProductRepository, mCat *repoMocks.MockCategoryRepository) {},
			wantField:  "price_cents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockProductRepository)
			mCat := new(repoMocks.MockCategoryRepository)
			svc := newProductService(mRepo, mCat, new(storeMocks.MockStorage))
			tt.setupMocks(mRepo, mCat)

			p, err := svc.Create(ctx, tt.in)

			if tt.wantField != "" {
				ve, ok := validation.As(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Contains(t, ve.Fields, tt.wantField)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, p.Status)
			}
			mRepo.AssertExpectations(t)
			mCat.AssertExpectations(t)
		})
	}
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockProductRepository)
	mStore := new(storeMocks.MockStorage)
	svc := newProductService(mRepo, new(repoMocks.MockCategoryRepository), mStore)

	f := ProductFilter{Query: "snea"}
	mRepo.On("List", ctx, f, repository.PageQuery{Limit: MaxLimit, Offset: 0}).
		Return(&repository.PageResult[model.Product]{
			Items: []model.Product{{ID: "p-1", ImageKey: "products/a.png"}, {ID: "p-2"}},
			Total: 2,
		}, nil)
	mStore.On("PresignGet", ctx, "products/a.png", time.Minute).Return("https://cdn/a.png", nil)

	res, err := svc.List(ctx, f, 500, -3)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "https://cdn/a.png", res.Items[0].ImageURL)
	assert.Empty(t, res.Items[1].ImageURL)
}

func TestProductService_Export(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockProductRepository)
	svc := newProductService(mRepo, new(repoMocks.MockCategoryRepository), new(storeMocks.MockStorage))

	mRepo.On("List", ctx, ProductFilter{}, repository.PageQuery{}).
		Return(&repository.PageResult[model.Product]{Items: []model.Product{{ID: "p-1"}}, Total: 1}, nil)

	items, err := svc.Export(ctx, ProductFilter{})

	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes row then image", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		mStore := new(storeMocks.MockStorage)
		svc := newProductService(mRepo, new(repoMocks.MockCategoryRepository), mStore)

		mRepo.On("FindByID", ctx, "p-1").Return(&model.Product{ID: "p-1", ImageKey: "products/a.png"}, nil)
		mRepo.On("Delete", ctx, "p-1").Return(nil)
		mStore.On("Delete", ctx, "products/a.png").Return(errors.New("storage down"))

		assert.NoError(t, svc.Delete(ctx, "p-1"))
		mStore.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		svc := newProductService(mRepo, new(repoMocks.MockCategoryRepository), new(storeMocks.MockStorage))
		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
	})
}

func TestProductService_SetImage(t *testing.T) {
	ctx := context.Background()

	putOK := func(mStore *storeMocks.MockStorage) {
		mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutOptions) storage.Object {
				return storage.Object{Key: key}
			}, nil)
	}

	t.Run("replaces previous image", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		mStore := new(storeMocks.MockStorage)
		svc := newProductService(mRepo, new(repoMocks.MockCategoryRepository), mStore)

		mRepo.On("FindByID", ctx, "p-1").Return(&model.Product{ID: "p-1", ImageKey: "products/old.png"}, nil)
		putOK(mStore)
		mRepo.On("Update", ctx, mock.MatchedBy(func(p *model.Product) bool {
			return p.ImageKey != "products/old.png"
		})).Return(&model.Product{ID: "p-1", ImageKey: "products/new.png"}, nil)
		mStore.On("Delete", ctx, "products/old.png").Return(nil)
		mStore.On("PresignGet", ctx, "products/new.png", time.Minute).Return("https://cdn/new.png", nil)

		p, err := svc.SetImage(ctx, "p-1", bytes.NewReader(pngBytes), "new.png", int64(len(pngBytes)))

		require.NoError(t, err)
		assert.Equal(t, "https://cdn/new.png", p.ImageURL)
		mStore.AssertExpectations(t)
	})

	t.Run("db failure deletes the uploaded object", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		mStore := new(storeMocks.MockStorage)
		svc := newProductService(mRepo, new(repoMocks.MockCategoryRepository), mStore)

		mRepo.On("FindByID", ctx, "p-1").Return(&model.Product{ID: "p-1"}, nil)
		putOK(mStore)
		mRepo.On("Update", ctx, mock.Anything).Return(nil, errors.New("db fail"))
		mStore.On("Delete", ctx, mock.MatchedBy(func(key string) bool { return key != "" })).Return(nil)

		_, err := svc.SetImage(ctx, "p-1", bytes.NewReader(pngBytes), "new.png", -1)

		assert.EqualError(t, err, "db save failed: db fail")
		mStore.AssertExpectations(t)
	})
}
