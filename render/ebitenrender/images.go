package ebitenrender

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physcene/assets"
)

// Images caches textures by key. Keys are paths relative to the asset root.
type Images struct {
	root   string
	images map[string]*ebiten.Image
}

func NewImages(root string) *Images {
	return &Images{root: root, images: map[string]*ebiten.Image{}}
}

// Register stores an image by key.
func (im *Images) Register(key string, img *ebiten.Image) {
	if im == nil || key == "" || img == nil {
		return
	}
	im.images[key] = img
}

// Get returns a cached image by key.
func (im *Images) Get(key string) *ebiten.Image {
	if im == nil || key == "" {
		return nil
	}
	return im.images[key]
}

// Load returns the cached image, reads it from disk under the root, or
// falls back to the embedded textures.
func (im *Images) Load(key string) (*ebiten.Image, error) {
	if key == "" {
		return nil, fmt.Errorf("empty image key")
	}
	if img := im.Get(key); img != nil {
		return img, nil
	}
	tried := []string{key, filepath.Join(im.root, key), filepath.Join(im.root, filepath.Base(key))}
	for _, p := range tried {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode image %s: %w", p, err)
		}
		img := ebiten.NewImageFromImage(decoded)
		im.Register(key, img)
		return img, nil
	}
	img, err := assets.LoadImage(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", key, err)
	}
	im.Register(key, img)
	return img, nil
}

// Forget drops a cached image so the next Load rereads it.
func (im *Images) Forget(key string) {
	if im == nil {
		return
	}
	delete(im.images, key)
}
