package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// Store is the file backend behind attachments, avatars and group logos.
// Keys are slash-separated paths relative to the store root.
type Store interface {
	Upload(ctx context.Context, key string, file io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Replace(ctx context.Context, key string, newFile io.Reader) error
	DeletePrefix(ctx context.Context, prefix string) error
	PublicURL(key string) string
}

// AttachmentKey builds the storage key for an attachment file. Uploads of the
// same type and name for one item overwrite each other.
func AttachmentKey(itemID uuid.UUID, typeName, filename string) string {
	return path.Join("attachments", itemID.String(), fmt.Sprintf("%s_%s", typeName, filename))
}

// ItemPrefix covers every file stored for an item.
func ItemPrefix(itemID uuid.UUID) string {
	return path.Join("attachments", itemID.String()) + "/"
}

func AvatarKey(userID uuid.UUID) string {
	return path.Join("avatars", userID.String()+".png")
}

func GroupLogoKey(groupID uuid.UUID) string {
	return path.Join("logos", groupID.String()+".png")
}
