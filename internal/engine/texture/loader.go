package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/midgard-batch/internal/logger"
)

var ErrUnknownFormat = errors.New("texture: unknown image format")

// Loader resolves a texture name to pixels.
type Loader interface {
	Load(name string) (*image.RGBA, error)
}

// DirLoader loads textures from files under Root. Names are relative
// slash paths; the extension picks the decoder. Decoded images are cached
// by name.
type DirLoader struct {
	Root  string
	cache map[string]*image.RGBA
	log   *zap.Logger
}

// NewDirLoader creates a loader reading under root.
func NewDirLoader(root string) *DirLoader {
	return &DirLoader{
		Root:  root,
		cache: make(map[string]*image.RGBA),
		log:   logger.Named("texture"),
	}
}

// Load returns the decoded image for name.
func (l *DirLoader) Load(name string) (*image.RGBA, error) {
	if img, ok := l.cache[name]; ok {
		return img, nil
	}
	path := filepath.Join(l.Root, filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture %q: %w", name, err)
	}
	img, err := Decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %q: %w", name, err)
	}
	l.cache[name] = img
	l.log.Debug("texture loaded",
		zap.String("name", name),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return img, nil
}

// Forget drops name from the cache.
func (l *DirLoader) Forget(name string) {
	delete(l.cache, name)
}

// Decode decodes data by the extension of name: .tga, .bmp or .png.
func Decode(name string, data []byte) (*image.RGBA, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tga":
		return DecodeTGA(data)
	case ".bmp":
		img, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return ToRGBA(img), nil
	case ".png":
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return ToRGBA(img), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}
