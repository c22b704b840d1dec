package handlers

import (
	"time"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/media"
	"photo-gallery/internal/startup"
	"photo-gallery/internal/streaming"
)

// Handlers serves the gallery HTTP API.
type Handlers struct {
	generator   *media.Generator
	streamer    *streaming.AssetStreamer
	provisioner *filesystem.Provisioner

	galleryDir   string
	thumbnailDir string
	thumbWidth   int
	thumbHeight  int

	vipsRequested      bool
	thumbnailsWritable bool
	startTime          time.Time
}

// New wires the handlers to an already configured thumbnail generator.
func New(config *startup.Config, generator *media.Generator) *Handlers {
	return &Handlers{
		generator:          generator,
		streamer:           streaming.NewAssetStreamer(config.MaxAssetSize),
		provisioner:        filesystem.NewProvisioner(config.GalleryDir, config.ThumbnailDir, config.StubName),
		galleryDir:         config.GalleryDir,
		thumbnailDir:       config.ThumbnailDir,
		thumbWidth:         config.ThumbnailWidth,
		thumbHeight:        config.ThumbnailHeight,
		vipsRequested:      config.VipsEnabled,
		thumbnailsWritable: config.ThumbnailsWritable,
		startTime:          time.Now(),
	}
}
