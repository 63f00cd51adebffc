package texture

import (
	"image"
	"image/draw"

	"github.com/Faultbox/midgard-batch/internal/engine/geom"
)

// Key selects which texels a blend state turns transparent.
type Key uint8

const (
	KeyNone Key = iota
	// KeyBlack clears texels at or below the threshold on every channel.
	KeyBlack
	// KeyWhite clears texels at or above 255-threshold on every channel.
	KeyWhite
)

// keyThreshold tolerates filtering noise around pure black or white.
const keyThreshold = 5

// KeyFor returns the color key implied by state's transparent texture bits.
func KeyFor(s geom.State) Key {
	switch {
	case s.Has(geom.StateTTextureBlack):
		return KeyBlack
	case s.Has(geom.StateTTextureWhite):
		return KeyWhite
	}
	return KeyNone
}

// ApplyKey clears keyed texels in place to transparent black, so filtering
// does not bleed their color into neighbours.
func ApplyKey(img *image.RGBA, k Key) {
	if k == KeyNone {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			r, g, bl := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
			keyed := false
			switch k {
			case KeyBlack:
				keyed = r <= keyThreshold && g <= keyThreshold && bl <= keyThreshold
			case KeyWhite:
				keyed = r >= 255-keyThreshold && g >= 255-keyThreshold && bl >= 255-keyThreshold
			}
			if keyed {
				copy(img.Pix[i:i+4], []byte{0, 0, 0, 0})
			}
		}
	}
}

// ToRGBA converts any image to *image.RGBA, returning img itself when it
// already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
