package vision

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Image identifies the photo to analyze. Exactly one of URL, StorageURI or
// Content is expected to be set; Content wins when several are present.
type Image struct {
	URL        string // http(s) URL fetched by the provider
	StorageURI string // gs:// object URI
	Content    []byte // inline image bytes
	MIMEType   string
}

// ByReference reports whether the provider must fetch the image itself.
func (img Image) ByReference() bool {
	return len(img.Content) == 0 && (img.URL != "" || img.StorageURI != "")
}

// Valid reports whether the image carries any source at all.
func (img Image) Valid() bool {
	return len(img.Content) > 0 || img.URL != "" || img.StorageURI != ""
}

// String returns a short loggable description of the image source.
func (img Image) String() string {
	switch {
	case len(img.Content) > 0:
		return fmt.Sprintf("inline(%d bytes)", len(img.Content))
	case img.StorageURI != "":
		return img.StorageURI
	default:
		return img.URL
	}
}

// CacheKey returns a stable SHA256 key for the image source. Inline content is
// hashed with a length prefix so references and content never collide.
func (img Image) CacheKey() string {
	h := sha256.New()
	switch {
	case len(img.Content) > 0:
		h.Write([]byte("content:"))
		binary.Write(h, binary.LittleEndian, int64(len(img.Content)))
		h.Write(img.Content)
	case img.StorageURI != "":
		h.Write([]byte("storage:" + img.StorageURI))
	default:
		h.Write([]byte("url:" + img.URL))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ImageFromArg resolves a command line argument into an Image: http(s) URLs
// and gs:// URIs are passed by reference, anything else is read from disk.
func ImageFromArg(arg string) (Image, error) {
	switch {
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return Image{URL: arg, MIMEType: MIMETypeFromPath(arg)}, nil
	case strings.HasPrefix(arg, "gs://"):
		return Image{StorageURI: arg, MIMEType: MIMETypeFromPath(arg)}, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	return Image{Content: data, MIMEType: MIMETypeFromPath(arg)}, nil
}

// MIMETypeFromPath guesses an image MIME type from a file extension,
// defaulting to JPEG.
func MIMETypeFromPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
