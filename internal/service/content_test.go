package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/model"
	repoMocks "backoffice/internal/repository/mocks"
	"backoffice/internal/storage"
	storeMocks "backoffice/internal/storage/mocks"
	"backoffice/internal/validation"
)

const (
	blockA = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	blockB = "6fa459ea-ee8a-3ca4-894e-db77e160355e"
)

type contentFixture struct {
	svc   ContentService
	repo  *repoMocks.MockContentRepository
	cats  *repoMocks.MockCategoryRepository
	store *storeMocks.MockStorage
}

func newContentFixture() contentFixture {
	f := contentFixture{
		repo:  new(repoMocks.MockContentRepository),
		cats:  new(repoMocks.MockCategoryRepository),
		store: new(storeMocks.MockStorage),
	}
	f.svc = NewContentService(f.repo, f.cats, NewMediaService(f.store, time.Minute, zap.NewNop()), zap.NewNop())
	return f
}

func TestContentKinds(t *testing.T) {
	kinds := ContentKinds()

	require.Len(t, kinds, 19)
	for i := 1; i < len(kinds); i++ {
		assert.Less(t, kinds[i-1].Name, kinds[i].Name)
	}

	limits := map[string]int{}
	for _, k := range kinds {
		limits[k.Name] = k.Limit
	}
	assert.Equal(t, 4, limits["header.banner"])
	assert.Equal(t, 1, limits["footer.newsletter"])
	assert.Equal(t, 0, limits["brands"])
}

func TestContentService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		kind       string
		data       string
		setupMocks func(f contentFixture)
		wantErr    error
		wantField  string
		wantData   string
	}{
		{
			name: "banner stored as canonical json",
			kind: "header.banner",
			data: `{ "url": "/sale", "title": "Sale",  "subtitle": "Up to 50%" }`,
			setupMocks: func(f contentFixture) {
				f.repo.On("Count", ctx, "header.banner").Return(3, nil)
				f.repo.On("Create", ctx, mock.AnythingOfType("*model.ContentBlock")).
					Return(func(ctx context.Context, b *model.ContentBlock) *model.ContentBlock { return b }, nil)
			},
			wantData: `{"title":"Sale","subtitle":"Up to 50%","url":"/sale"}`,
		},
		{
			name: "banner limit reached",
			kind: "header.banner",
			data: `{"title":"Sale","subtitle":"Now","url":"/sale"}`,
			setupMocks: func(f contentFixture) {
				f.repo.On("Count", ctx, "header.banner").Return(4, nil)
			},
			wantErr: ErrLimitReached,
		},
		{
			name:       "unknown field rejected",
			kind:       "header.nav-main",
			data:       `{"label":"Men","url":"/men","colour":"red"}`,
			setupMocks: func(f contentFixture) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "button link required when button shown",
			kind:       "hero.slide",
			data:       `{"button":true,"button_title":"Shop"}`,
			setupMocks: func(f contentFixture) {},
			wantField:  "link",
		},
		{
			name:       "look price required",
			kind:       "cards.look",
			data:       `{"name":"Summer","url":"/s","category":"Women"}`,
			setupMocks: func(f contentFixture) {},
			wantField:  "price_cents",
		},
		{
			name: "free look is allowed",
			kind: "cards.look",
			data: `{"name":"Summer","price_cents":0,"url":"/s","category":"Women"}`,
			setupMocks: func(f contentFixture) {
				f.repo.On("Create", ctx, mock.Anything).
					Return(func(ctx context.Context, b *model.ContentBlock) *model.ContentBlock { return b }, nil)
			},
			wantData: `{"name":"Summer","price_cents":0,"url":"/s","category":"Women"}`,
		},
		{
			name: "nav sub must point at a main entry",
			kind: "header.nav-sub",
			data: `{"main":"` + blockA + `","label":"Shoes","url":"/shoes","type":"category"}`,
			setupMocks: func(f contentFixture) {
				f.repo.On("FindByID", ctx, "header.nav-main", blockA).Return(nil, sql.ErrNoRows)
			},
			wantField: "main",
		},
		{
			name: "footer link needs a footerLinks category",
			kind: "footer.link",
			data: `{"name":"About","url":"/about","category":"` + blockB + `"}`,
			setupMocks: func(f contentFixture) {
				f.cats.On("FindByID", ctx, blockB).Return(&model.Category{ID: blockB, Feature: model.FeatureProducts}, nil)
			},
			wantField: "category",
		},
		{
			name:       "unknown kind",
			kind:       "header.marquee",
			data:       `{}`,
			setupMocks: func(f contentFixture) {},
			wantErr:    ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContentFixture()
			tt.setupMocks(f)

			b, err := f.svc.Create(ctx, tt.kind, json.RawMessage(tt.data))

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantField != "":
				ve, ok := validation.As(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Contains(t, ve.Fields, tt.wantField)
			default:
				require.NoError(t, err)
				assert.JSONEq(t, tt.wantData, string(b.Data))
				assert.Equal(t, tt.wantData, string(b.Data))
				assert.Equal(t, tt.kind, b.Kind)
			}
			f.repo.AssertExpectations(t)
			f.cats.AssertExpectations(t)
		})
	}
}

func TestContentService_Get_Ready(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture()

	f.repo.On("FindByID", ctx, "hero.slide", blockA).Return(&model.ContentBlock{ID: blockA, Kind: "hero.slide"}, nil)
	f.repo.On("FindByID", ctx, "hero.slide", blockB).
		Return(&model.ContentBlock{ID: blockB, Kind: "hero.slide", ImageKey: "content/hero/b.png"}, nil)
	f.store.On("PresignGet", ctx, "content/hero/b.png", time.Minute).Return("https://cdn/b.png", nil)

	pending, err := f.svc.Get(ctx, "hero.slide", blockA)
	require.NoError(t, err)
	assert.False(t, pending.Ready)

	ready, err := f.svc.Get(ctx, "hero.slide", blockB)
	require.NoError(t, err)
	assert.True(t, ready.Ready)
	assert.Equal(t, "https://cdn/b.png", ready.ImageURL)
}

func TestContentService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture()
	f.repo.On("FindByID", ctx, "brands", blockA).Return(nil, sql.ErrNoRows)

	_, err := f.svc.Get(ctx, "brands", blockA)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "brands entry not found")
}

func TestContentService_SetImage(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture()

	f.repo.On("FindByID", ctx, "footer.icon", blockA).Return(&model.ContentBlock{ID: blockA, Kind: "footer.icon"}, nil)
	f.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "content/footer/")
	}), mock.Anything, mock.Anything).
		Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutOptions) storage.Object {
			return storage.Object{Key: key}
		}, nil)
	f.repo.On("Update", ctx, mock.Anything).
		Return(func(ctx context.Context, b *model.ContentBlock) *model.ContentBlock { return b }, nil)
	f.store.On("PresignGet", ctx, mock.Anything, time.Minute).Return("https://cdn/icon.png", nil)

	b, err := f.svc.SetImage(ctx, "footer.icon", blockA, bytes.NewReader(pngBytes), "icon.png", int64(len(pngBytes)))

	require.NoError(t, err)
	assert.True(t, b.Ready)
	assert.Equal(t, "https://cdn/icon.png", b.ImageURL)
}

func TestContentService_Reorder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		ids        []string
		setupMocks func(f contentFixture)
		wantField  bool
		wantErr    string
	}{
		{
			name: "success",
			ids:  []string{blockB, blockA},
			setupMocks: func(f contentFixture) {
				f.repo.On("Count", ctx, "brands").Return(2, nil)
				f.repo.On("Reorder", ctx, "brands", []string{blockB, blockA}).Return(nil)
				f.repo.On("List", ctx, "brands").Return([]model.ContentBlock{{ID: blockB}, {ID: blockA, Position: 1}}, nil)
			},
		},
		{
			name:       "duplicate id",
			ids:        []string{blockA, blockA},
			setupMocks: func(f contentFixture) {},
			wantField:  true,
		},
		{
			name:       "malformed id",
			ids:        []string{"nope"},
			setupMocks: func(f contentFixture) {},
			wantField:  true,
		},
		{
			name: "missing entries",
			ids:  []string{blockA},
			setupMocks: func(f contentFixture) {
				f.repo.On("Count", ctx, "brands").Return(2, nil)
			},
			wantField: true,
		},
		{
			name: "foreign id",
			ids:  []string{blockA, blockB},
			setupMocks: func(f contentFixture) {
				f.repo.On("Count", ctx, "brands").Return(2, nil)
				f.repo.On("Reorder", ctx, "brands", []string{blockA, blockB}).Return(sql.ErrNoRows)
			},
			wantField: true,
		},
		{
			name: "storage error surfaces",
			ids:  []string{blockA, blockB},
			setupMocks: func(f contentFixture) {
				f.repo.On("Count", ctx, "brands").Return(2, nil)
				f.repo.On("Reorder", ctx, "brands", []string{blockA, blockB}).Return(errors.New("tx failed"))
			},
			wantErr: "tx failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContentFixture()
			tt.setupMocks(f)

			blocks, err := f.svc.Reorder(ctx, "brands", tt.ids)

			switch {
			case tt.wantField:
				ve, ok := validation.As(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Contains(t, ve.Fields, "ids")
			case tt.wantErr != "":
				assert.EqualError(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				require.Len(t, blocks, 2)
				assert.Equal(t, blockB, blocks[0].ID)
				assert.True(t, blocks[0].Ready)
			}
			f.repo.AssertExpectations(t)
		})
	}
}

func TestContentService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture()

	f.repo.On("FindByID", ctx, "gallery.social", blockA).
		Return(&model.ContentBlock{ID: blockA, ImageKey: "content/gallery/a.png"}, nil)
	f.repo.On("Delete", ctx, "gallery.social", blockA).Return(nil)
	f.store.On("Delete", ctx, "content/gallery/a.png").Return(nil)

	require.NoError(t, f.svc.Delete(ctx, "gallery.social", blockA))
	f.store.AssertExpectations(t)
}

func TestContentService_Delete_NavMain(t *testing.T) {
	ctx := context.Background()

	t.Run("with sub navigation", func(t *testing.T) {
		f := newContentFixture()
		f.repo.On("FindByID", ctx, "header.nav-main", blockA).Return(&model.ContentBlock{ID: blockA}, nil)
		f.repo.On("CountByField", ctx, "header.nav-sub", "main", blockA).Return(3, nil)

		err := f.svc.Delete(ctx, "header.nav-main", blockA)

		assert.ErrorIs(t, err, ErrInUse)
		assert.EqualError(t, err, "header.nav-main entry is in use by 3 header.nav-sub block(s)")
		f.repo.AssertNotCalled(t, "Delete", ctx, "header.nav-main", blockA)
	})

	t.Run("without sub navigation", func(t *testing.T) {
		f := newContentFixture()
		f.repo.On("FindByID", ctx, "header.nav-main", blockA).Return(&model.ContentBlock{ID: blockA}, nil)
		f.repo.On("CountByField", ctx, "header.nav-sub", "main", blockA).Return(0, nil)
		f.repo.On("Delete", ctx, "header.nav-main", blockA).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, "header.nav-main", blockA))
		f.repo.AssertExpectations(t)
	})
}
