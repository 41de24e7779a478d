package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/validation"
)

// ContentService manages storefront CMS blocks. Every operation is scoped to
// a registered kind; payloads are validated against the kind's schema.
type ContentService interface {
	Kinds() []ContentKind
	List(ctx context.Context, kind string) ([]model.ContentBlock, error)
	Get(ctx context.Context, kind, id string) (*model.ContentBlock, error)
	Create(ctx context.Context, kind string, data json.RawMessage) (*model.ContentBlock, error)
	Update(ctx context.Context, kind, id string, data json.RawMessage) (*model.ContentBlock, error)
	// Delete removes the block and its image. A header.nav-main block with
	// sub-navigation entries is rejected with ErrInUse.
	Delete(ctx context.Context, kind, id string) error
	SetImage(ctx context.Context, kind, id string, r io.Reader, filename string, size int64) (*model.ContentBlock, error)
	// Reorder sets block positions to the order of ids, which must name every block of kind once.
	Reorder(ctx context.Context, kind string, ids []string) ([]model.ContentBlock, error)
}

type contentService struct {
	repo       repository.ContentRepository
	categories repository.CategoryRepository
	media      MediaService
	log        *zap.Logger
}

func NewContentService(repo repository.ContentRepository, categories repository.CategoryRepository, media MediaService, log *zap.Logger) ContentService {
	return &contentService{repo: repo, categories: categories, media: media, log: log}
}

func (s *contentService) Kinds() []ContentKind {
	return ContentKinds()
}

func lookupKind(kind string) (ContentKind, error) {
	k, ok := contentKinds[kind]
	if !ok {
		return ContentKind{}, fmt.Errorf("content kind %q %w", kind, ErrNotFound)
	}
	return k, nil
}

// decode parses data strictly into the kind's payload, validates it and
// returns its canonical JSON.
func (s *contentService) decode(ctx context.Context, k ContentKind, data json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		data = json.RawMessage(`{}`)
	}
	p := k.payload()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrInvalidInput)
	}
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	if k.refs != nil {
		if err := k.refs(ctx, s, p); err != nil {
			return nil, err
		}
	}
	return json.Marshal(p)
}

func (s *contentService) requireCategory(ctx context.Context, id, feature string) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return validation.Field("category", "must reference an existing category")
		}
		return err
	}
	if c.Feature != feature {
		return validation.Field("category", "must reference a "+feature+" category")
	}
	return nil
}

func (s *contentService) requireBlock(ctx context.Context, kind, id, field string) error {
	if _, err := s.repo.FindByID(ctx, kind, id); err != nil {
		if isNotFound(err) {
			return validation.Field(field, "must reference an existing "+kind+" entry")
		}
		return err
	}
	return nil
}

func (s *contentService) decorate(ctx context.Context, k ContentKind, b *model.ContentBlock) *model.ContentBlock {
	if b == nil {
		return nil
	}
	b.ImageURL = s.media.URL(ctx, b.ImageKey)
	b.Ready = !k.ImageRequired || b.ImageKey != ""
	return b
}

func (s *contentService) List(ctx context.Context, kind string) ([]model.ContentBlock, error) {
	k, err := lookupKind(kind)
	if err != nil {
		return nil, err
	}
	blocks, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		s.decorate(ctx, k, &blocks[i])
	}
	return blocks, nil
}

func (s *contentService) Get(ctx context.Context, kind, id string) (*model.ContentBlock, error) {
	k, err := lookupKind(kind)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, translate(err, kind+" entry")
	}
	return s.decorate(ctx, k, b), nil
}

func (s *contentService) Create(ctx context.Context, kind string, data json.RawMessage) (*model.ContentBlock, error) {
	k, err := lookupKind(kind)
	if err != nil {
		return nil, err
	}
	canonical, err := s.decode(ctx, k, data)
	if err != nil {
		return nil, err
	}
	if k.Limit > 0 {
		n, err := s.repo.Count(ctx, kind)
		if err != nil {
			return nil, err
		}
		if n >= k.Limit {
			return nil, fmt.Errorf("%s %w (max %d)", kind, ErrLimitReached, k.Limit)
		}
	}
	now := nowFunc()
	b, err := s.repo.Create(ctx, &model.ContentBlock{
		ID:        uuid.New().String(),
		Kind:      kind,
		Data:      canonical,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, translate(err, kind+" entry")
	}
	return s.decorate(ctx, k, b), nil
}

func (s *contentService) Update(ctx context.Context, kind, id string, data json.RawMessage) (*model.ContentBlock, error) {
	k, err := lookupKind(kind)
	if err != nil {
		return nil, err
	}
	canonical, err := s.decode(ctx, k, data)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, translate(err, kind+" entry")
	}
	b.Data = canonical
	b.UpdatedAt = nowFunc()
	out, err := s.repo.Update(ctx, b)
	if err != nil {
		return nil, translate(err, kind+" entry")
	}
	return s.decorate(ctx, k, out), nil
}

func (s *contentService) Delete(ctx context.Context, kind, id string) error {
	if _, err := lookupKind(kind); err != nil {
		return err
	}
	b, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return translate(err, kind+" entry")
	}
	if kind == "header.nav-main" {
		n, err := s.repo.CountByField(ctx, "header.nav-sub", "main", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%s entry %w by %d header.nav-sub block(s)", kind, ErrInUse, n)
		}
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return translate(err, kind+" entry")
	}
	if err := s.media.Delete(ctx, b.ImageKey); err != nil {
		s.log.Warn("orphaned object", zap.String("key", b.ImageKey), zap.Error(err))
	}
	return nil
}

func (s *contentService) SetImage(ctx context.Context, kind, id string, r io.Reader, filename string, size int64) (*model.ContentBlock, error) {
	k, err := lookupKind(kind)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, translate(err, kind+" entry")
	}
	var out *model.ContentBlock
	err = replaceImage(ctx, s.media, s.log, b.ImageKey, "content/"+k.Section, r, filename, size, func(key string) error {
		b.ImageKey = key
		b.UpdatedAt = nowFunc()
		updated, err := s.repo.Update(ctx, b)
		if err != nil {
			return translate(err, kind+" entry")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, k, out), nil
}

func (s *contentService) Reorder(ctx context.Context, kind string, ids []string) ([]model.ContentBlock, error) {
	if _, err := lookupKind(kind); err != nil {
		return nil, err
	}
	invalid := validation.Field("ids", "must list every "+kind+" entry exactly once")
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || uuid.Validate(id) != nil {
			return nil, invalid
		}
		seen[id] = struct{}{}
	}
	n, err := s.repo.Count(ctx, kind)
	if err != nil {
		return nil, err
	}
	if n != len(ids) {
		return nil, invalid
	}
	if err := s.repo.Reorder(ctx, kind, ids); err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	return s.List(ctx, kind)
}
