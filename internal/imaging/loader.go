package imaging

import (
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// LoadError reports that an image file could not be opened or decoded.
//
// It is the only error that aborts a blueprint analysis. The underlying cause
// is available through errors.Unwrap, so errors.Is(err, os.ErrNotExist) works
// for missing files.
type LoadError struct {
	// Path is the file path that failed to load.
	Path string

	// Op is the failing step: "open" or "decode".
	Op string

	// Err is the underlying error.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to %s image %q: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load opens and decodes a raster image.
//
// Supported formats are JPEG, PNG, BMP, TIFF and GIF. EXIF orientation in
// JPEG files is applied so phone photos of plans come out upright.
//
// # Errors
//
// Every failure is returned as *LoadError:
//   - Op "open" if the file does not exist or cannot be read
//   - Op "decode" if the content is corrupt or in an unsupported format
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &LoadError{Path: path, Op: "decode", Err: err}
	}
	return img, nil
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// The MCP server keeps one cache for its lifetime so that analysing a plan and
// then rendering its overlay decodes the file once. Every lookup stats the
// file first: an entry is served only while the file still exists with the
// same size and modification time. A changed file is decoded again and a
// removed file fails with the same *LoadError an uncached Load would return.
//
// # Memory Management
//
// Stale entries are dropped as soon as their file is looked up again. Entries
// for files that are never requested again remain until Evict() or Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cacheEntry
}

type cacheEntry struct {
	img     image.Image
	size    int64
	modTime time.Time
}

func (e cacheEntry) matches(fi os.FileInfo) bool {
	return e.size == fi.Size() && e.modTime.Equal(fi.ModTime())
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cacheEntry),
	}
}

// Load returns the cached image for path or decodes it with Load.
//
// The image is cached using the exact path string provided. Failures are not
// cached and are returned as *LoadError; a failure also drops any entry
// previously cached for path.
func (c *ImageCache) Load(path string) (image.Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		c.Evict(path)
		return nil, &LoadError{Path: path, Op: "open", Err: err}
	}

	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok && entry.matches(fi) {
		return entry.img, nil
	}

	img, err := Load(path)
	if err != nil {
		c.Evict(path)
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = cacheEntry{img: img, size: fi.Size(), modTime: fi.ModTime()}
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a plan image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "jpeg", "png", "gif", "tiff", "bmp" or "unknown".
	// Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// Grayscale is true when the decoded image is already single-channel.
	Grayscale bool `json:"grayscale"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and describes it.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//
// Returns *LoadError when the image cannot be loaded.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = formatName(f)
	}

	info := &ImageInfo{
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}

	switch img.(type) {
	case *image.Gray, *image.Gray16:
		info.Grayscale = true
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
	}

	return info, nil
}

func formatName(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "jpeg"
	case imaging.PNG:
		return "png"
	case imaging.GIF:
		return "gif"
	case imaging.TIFF:
		return "tiff"
	case imaging.BMP:
		return "bmp"
	default:
		return "unknown"
	}
}
