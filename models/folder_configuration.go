package models

import "time"

const (
	DefaultThumbnailQuality = 80
	MaxThumbnailQuality     = 100
)

// FolderConfiguration holds the thumbnail settings of one or more folders.
type FolderConfiguration struct {
	ID               string    `bson:"_id" json:"id"`
	CreateThumbnails bool      `bson:"create_thumbnails" json:"createThumbnails"`
	KeepAspectRatio  bool      `bson:"keep_aspect_ratio" json:"keepAspectRatio"`
	ThumbnailQuality int       `bson:"thumbnail_quality" json:"thumbnailQuality"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
}

// DefaultFolderConfiguration returns the settings used when a create request omits them.
func DefaultFolderConfiguration() FolderConfiguration {
	return FolderConfiguration{
		CreateThumbnails: true,
		KeepAspectRatio:  true,
		ThumbnailQuality: DefaultThumbnailQuality,
	}
}
