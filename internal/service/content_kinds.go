package service

import (
	"context"
	"sort"

	"backoffice/internal/model"
)

// ContentKind describes one storefront block type.
type ContentKind struct {
	Name          string `json:"kind"`
	Section       string `json:"section"`
	Limit         int    `json:"limit,omitempty"`
	ImageRequired bool   `json:"image_required"`

	payload func() any
	refs    func(ctx context.Context, s *contentService, payload any) error
}

type contentLink struct {
	Label string `json:"label" validate:"required,max=100"`
	URL   string `json:"url" validate:"required,max=500"`
}

type logoBlock struct{}

type navMainBlock struct {
	Label string `json:"label" validate:"required,max=100"`
	URL   string `json:"url" validate:"required,max=500"`
}

type navSubBlock struct {
	Main   string        `json:"main" validate:"required,uuid"`
	Label  string        `json:"label" validate:"required,max=100"`
	URL    string        `json:"url" validate:"required,max=500"`
	Type   string        `json:"type" validate:"required,oneof=image category"`
	Button bool          `json:"button"`
	Items  []contentLink `json:"items" validate:"omitempty,dive"`
}

type bannerBlock struct {
	Title    string `json:"title" validate:"required,max=200"`
	Subtitle string `json:"subtitle" validate:"required,max=200"`
	URL      string `json:"url" validate:"required,max=500"`
}

// buttonBlock backs hero slides and gallery showcases.
type buttonBlock struct {
	Button      bool   `json:"button"`
	ButtonTitle string `json:"button_title" validate:"max=100"`
	Link        string `json:"link" validate:"required_if=Button true,max=500"`
}

type lookBlock struct {
	Name       string `json:"name" validate:"required,max=200"`
	PriceCents *int64 `json:"price_cents" validate:"required,gte=0"`
	URL        string `json:"url" validate:"required,max=500"`
	Category   string `json:"category" validate:"required,max=100"`
}

type shopNowBlock struct {
	Label string `json:"label" validate:"required,max=100"`
	URL   string `json:"url" validate:"required,max=500"`
}

type genderBlock struct {
	Title      string        `json:"title" validate:"required,max=200"`
	Categories []contentLink `json:"categories" validate:"required,min=1,dive"`
}

type privacyBlock struct {
	Text string `json:"text" validate:"required,max=200"`
	URL  string `json:"url" validate:"required,max=500"`
}

type advertisementBlock struct {
	Title       string `json:"title" validate:"required,max=200"`
	PriceCents  *int64 `json:"price_cents" validate:"required,gte=0"`
	URL         string `json:"url" validate:"required,max=500"`
	Description string `json:"description" validate:"required,max=1000"`
	Button      bool   `json:"button"`
}

type toggleBlock struct {
	Enabled bool `json:"enabled"`
}

type footerIconBlock struct {
	URL      string `json:"url" validate:"required,max=500"`
	Category string `json:"category" validate:"required,uuid"`
}

type footerLinkBlock struct {
	Name     string `json:"name" validate:"required,max=100"`
	URL      string `json:"url" validate:"required,max=500"`
	Category string `json:"category" validate:"required,uuid"`
}

type newsletterBlock struct {
	Title    string `json:"title" validate:"required,max=200"`
	Subtitle string `json:"subtitle" validate:"required,max=200"`
	Enabled  bool   `json:"enabled"`
}

type socialBlock struct {
	LikeCount    int `json:"like_count" validate:"gte=0"`
	CommentCount int `json:"comment_count" validate:"gte=0"`
}

type socialButtonBlock struct {
	Title string `json:"title" validate:"required,max=100"`
	URL   string `json:"url" validate:"required,max=500"`
}

type brandBlock struct {
	Name      string `json:"name" validate:"required,max=100"`
	Link      string `json:"link" validate:"required,max=500"`
	Favourite bool   `json:"favourite"`
	Top       bool   `json:"top"`
}

func payload[T any]() func() any {
	return func() any { return new(T) }
}

var contentKinds = map[string]ContentKind{}

func register(k ContentKind) {
	contentKinds[k.Name] = k
}

func init() {
	register(ContentKind{Name: "header.logo-desktop", Section: "header", Limit: 1, ImageRequired: true, payload: payload[logoBlock]()})
	register(ContentKind{Name: "header.logo-mobile", Section: "header", Limit: 1, ImageRequired: true, payload: payload[logoBlock]()})
	register(ContentKind{Name: "header.nav-main", Section: "header", payload: payload[navMainBlock]()})
	register(ContentKind{Name: "header.nav-sub", Section: "header", payload: payload[navSubBlock](), refs: navSubRefs})
	register(ContentKind{Name: "header.banner", Section: "header", Limit: 4, payload: payload[bannerBlock]()})
	register(ContentKind{Name: "hero.slide", Section: "hero", ImageRequired: true, payload: payload[buttonBlock]()})
	register(ContentKind{Name: "cards.look", Section: "cards", ImageRequired: true, payload: payload[lookBlock]()})
	register(ContentKind{Name: "cards.shop-now", Section: "cards", ImageRequired: true, payload: payload[shopNowBlock]()})
	register(ContentKind{Name: "cards.gender", Section: "cards", payload: payload[genderBlock]()})
	register(ContentKind{Name: "footer.privacy", Section: "footer", payload: payload[privacyBlock]()})
	register(ContentKind{Name: "footer.advertisement", Section: "footer", payload: payload[advertisementBlock]()})
	register(ContentKind{Name: "footer.advertisement-settings", Section: "footer", Limit: 1, payload: payload[toggleBlock]()})
	register(ContentKind{Name: "footer.icon", Section: "footer", ImageRequired: true, payload: payload[footerIconBlock](), refs: footerIconRefs})
	register(ContentKind{Name: "footer.link", Section: "footer", payload: payload[footerLinkBlock](), refs: footerLinkRefs})
	register(ContentKind{Name: "footer.newsletter", Section: "footer", Limit: 1, payload: payload[newsletterBlock]()})
	register(ContentKind{Name: "gallery.social", Section: "gallery", ImageRequired: true, payload: payload[socialBlock]()})
	register(ContentKind{Name: "gallery.social-button", Section: "gallery", Limit: 1, payload: payload[socialButtonBlock]()})
	register(ContentKind{Name: "gallery.showcase", Section: "gallery", ImageRequired: true, payload: payload[buttonBlock]()})
	register(ContentKind{Name: "brands", Section: "brands", payload: payload[brandBlock]()})
}

// ContentKinds lists every registered kind sorted by name.
func ContentKinds() []ContentKind {
	out := make([]ContentKind, 0, len(contentKinds))
	for _, k := range contentKinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func navSubRefs(ctx context.Context, s *contentService, p any) error {
	return s.requireBlock(ctx, "header.nav-main", p.(*navSubBlock).Main, "main")
}

func footerIconRefs(ctx context.Context, s *contentService, p any) error {
	return s.requireCategory(ctx, p.(*footerIconBlock).Category, model.FeatureFooterIcons)
}

func footerLinkRefs(ctx context.Context, s *contentService, p any) error {
	return s.requireCategory(ctx, p.(*footerLinkBlock).Category, model.FeatureFooterLinks)
}
