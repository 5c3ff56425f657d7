package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/storage"
	"github.com/refera/refera-backend/internal/types"
)

const (
	avatarSize = 512
	logoSize   = 256
)

// AvatarService produces profile pictures for users and logos for groups:
// either generated from initials or normalized from an uploaded image.
type AvatarService interface {
	CreateUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
	SetUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *types.User, raw []byte) error
	CreateGroupLogo(ctx context.Context, tx *gorm.DB, group *types.Group) error
	SetGroupLogoFromImage(ctx context.Context, tx *gorm.DB, group *types.Group, raw []byte) error
}

type avatarService struct {
	log      *logger.Logger
	store    storage.Store
	bgColors []color.NRGBA
	fontFace font.Face
}

func NewAvatarService(log *logger.Logger, store storage.Store) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	// AVATAR_FONT overrides the bundled Go font with a TTF on disk.
	var face font.Face
	var err error
	if fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT")); fontPath != "" {
		face, err = loadFontFace(fontPath, 206)
	} else {
		face, err = builtinFontFace(206)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:   serviceLog,
		store: store,
		bgColors: []color.NRGBA{
			{R: 0x00, G: 0xA9, B: 0xB7, A: 0xFF},
			{R: 0x3B, G: 0x6E, B: 0xC5, A: 0xFF},
			{R: 0xC5, G: 0x5A, B: 0x3B, A: 0xFF},
			{R: 0x7A, G: 0x3B, B: 0xC5, A: 0xFF},
			{R: 0x2E, G: 0x8B, B: 0x57, A: 0xFF},
		},
		fontFace: face,
	}, nil
}

func (as *avatarService) CreateUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
	buf, err := as.renderInitials(initials(user.Name), avatarSize)
	if err != nil {
		return err
	}
	key := storage.AvatarKey(user.ID)
	if err := as.store.Upload(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to upload avatar: %w", err)
	}
	user.Profile = as.store.PublicURL(key)
	return nil
}

func (as *avatarService) SetUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *types.User, raw []byte) error {
	buf, err := normalizeUpload(raw, avatarSize)
	if err != nil {
		return err
	}
	key := storage.AvatarKey(user.ID)
	if err := as.store.Replace(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to upload avatar: %w", err)
	}
	user.Profile = as.store.PublicURL(key)
	return nil
}

func (as *avatarService) CreateGroupLogo(ctx context.Context, tx *gorm.DB, group *types.Group) error {
	buf, err := as.renderInitials(initials(group.Name), logoSize)
	if err != nil {
		return err
	}
	key := storage.GroupLogoKey(group.ID)
	if err := as.store.Upload(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to upload group logo: %w", err)
	}
	group.Logo = as.store.PublicURL(key)
	return nil
}

func (as *avatarService) SetGroupLogoFromImage(ctx context.Context, tx *gorm.DB, group *types.Group, raw []byte) error {
	buf, err := normalizeUpload(raw, logoSize)
	if err != nil {
		return err
	}
	key := storage.GroupLogoKey(group.ID)
	if err := as.store.Replace(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to upload group logo: %w", err)
	}
	group.Logo = as.store.PublicURL(key)
	return nil
}

func (as *avatarService) renderInitials(text string, size int) (bytes.Buffer, error) {
	var buf bytes.Buffer

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	dc.SetColor(as.bgColors[rand.Intn(len(as.bgColors))])
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(text)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(text, cx-(tw/2), cy+(th/2)-10)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// normalizeUpload center-crops an uploaded image to a square, resizes it and
// clips it to a circle.
func normalizeUpload(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "?"
	case 1:
		return strings.ToUpper(parts[0][:1])
	default:
		return strings.ToUpper(parts[0][:1]) + strings.ToUpper(parts[len(parts)-1][:1])
	}
}

func loadFontFace(path string, points float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}

func builtinFontFace(points float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}
