package media

import (
	"fmt"
	"path/filepath"
	"sync"

	"photo-gallery/internal/formats"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/memory"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// vipsLogThreshold maps the application log level to the most verbose
// libvips level that is still forwarded.
var vipsLogThreshold = map[logging.LogLevel]vips.LogLevel{
	logging.LevelDebug: vips.LogLevelInfo,
	logging.LevelInfo:  vips.LogLevelWarning,
	logging.LevelWarn:  vips.LogLevelError,
	logging.LevelError: vips.LogLevelCritical,
}

func vipsLogHandler(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("[%s] %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("[%s] %s", domain, msg)
	default:
		logging.Debug("[%s] %s", domain, msg)
	}
}

// InitVips initializes the libvips library
// This should be called once at startup
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Configure logging before Startup so start-up messages respect LOG_LEVEL
	threshold, ok := vipsLogThreshold[logging.GetLevel()]
	if !ok {
		threshold = vips.LogLevelWarning
	}
	vips.LoggingSettings(vipsLogHandler, threshold)

	// One image at a time keeps native memory inside the decode budget
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources. libvips cannot be started again
// in the same process afterwards.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

func vipsDimensions(path string) (int, int, error) {
	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return 0, 0, err
	}
	defer ref.Close()
	return ref.Width(), ref.Height(), nil
}

var vipsImageTypes = map[string]vips.ImageType{
	"jpeg": vips.ImageTypeJPEG,
	"png":  vips.ImageTypePNG,
	"gif":  vips.ImageTypeGIF,
	"webp": vips.ImageTypeWEBP,
	"tiff": vips.ImageTypeTIFF,
	"heif": vips.ImageTypeHEIF,
	"avif": vips.ImageTypeAVIF,
}

// NewVipsBackend returns the libvips backend. InitVips must have succeeded
// for it to accept any format.
func NewVipsBackend(budget memory.Budget) Backend {
	return &pipeline{
		name:          "libvips",
		bytesPerPixel: memory.DefaultBytesPerPixel,
		budget:        budget,
		formats: map[string]string{
			formats.MIMEJPEG: "jpeg",
			formats.MIMEPNG:  "png",
			formats.MIMEGIF:  "gif",
			formats.MIMEWebP: "webp",
			formats.MIMETIFF: "tiff",
			formats.MIMEHEIC: "heif",
			formats.MIMEHEIF: "heif",
			formats.MIMEAVIF: "avif",
		},
		compiledIn: func(_ ImageDescriptor, tag string) bool {
			return IsVipsAvailable() && vips.IsTypeSupported(vipsImageTypes[tag])
		},
		encode: vipsEncode,
	}
}

func vipsEncode(src ImageDescriptor, target ThumbnailTarget, tag string) ([]byte, error) {
	ref, err := vips.LoadImageFromFile(src.Path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	logging.Debug("Vips loaded %s: %dx%d, resizing to %dx%d",
		filepath.Base(src.Path), ref.Width(), ref.Height(), target.Width, target.Height)

	hscale := float64(target.Width) / float64(ref.Width())
	vscale := float64(target.Height) / float64(ref.Height())
	if err := ref.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	var data []byte
	switch tag {
	case "jpeg":
		params := vips.NewJpegExportParams()
		params.Quality = 85
		params.OptimizeCoding = true
		data, _, err = ref.ExportJpeg(params)
	case "png":
		data, _, err = ref.ExportPng(vips.NewPngExportParams())
	case "gif":
		data, _, err = ref.ExportGIF(vips.NewGifExportParams())
	case "webp":
		data, _, err = ref.ExportWebp(vips.NewWebpExportParams())
	case "tiff":
		data, _, err = ref.ExportTiff(vips.NewTiffExportParams())
	case "heif":
		data, _, err = ref.ExportHeif(vips.NewHeifExportParams())
	case "avif":
		data, _, err = ref.ExportAvif(vips.NewAvifExportParams())
	default:
		return nil, fmt.Errorf("vips has no exporter for %s", tag)
	}
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}
	return data, nil
}
