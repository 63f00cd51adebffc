// Package texture resolves texture names to decoded images.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types handled by DecodeTGA.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

var ErrTGAFormat = errors.New("texture: unsupported TGA")

type tgaHeader struct {
	idLength  int
	colorMap  byte
	imageType byte
	width     int
	height    int
	bpp       int
	topDown   bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < 18 {
		return tgaHeader{}, fmt.Errorf("%w: header truncated", ErrTGAFormat)
	}
	h := tgaHeader{
		idLength:  int(data[0]),
		colorMap:  data[1],
		imageType: data[2],
		width:     int(data[12]) | int(data[13])<<8,
		height:    int(data[14]) | int(data[15])<<8,
		bpp:       int(data[16]),
		topDown:   data[17]&0x20 != 0,
	}
	switch {
	case h.colorMap != 0:
		return h, fmt.Errorf("%w: color-mapped", ErrTGAFormat)
	case h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE:
		return h, fmt.Errorf("%w: type %d", ErrTGAFormat, h.imageType)
	case h.bpp != 24 && h.bpp != 32:
		return h, fmt.Errorf("%w: %d bits per pixel", ErrTGAFormat, h.bpp)
	}
	return h, nil
}

// DecodeTGA decodes an uncompressed or RLE true-color TGA with 24 or 32
// bits per pixel. Rows are flipped unless the header marks the image as
// stored top down.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := 18 + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: id field truncated", ErrTGAFormat)
	}

	w := tgaWriter{
		img:     image.NewRGBA(image.Rect(0, 0, h.width, h.height)),
		width:   h.width,
		height:  h.height,
		topDown: h.topDown,
	}
	px := data[offset:]
	size := h.bpp / 8

	if h.imageType == TGATypeUncompressed {
		if len(px) < h.width*h.height*size {
			return nil, fmt.Errorf("%w: pixel data truncated", ErrTGAFormat)
		}
		for i := 0; i < h.width*h.height; i++ {
			w.put(bgra(px[i*size:], size))
		}
		return w.img, nil
	}

	// RLE: a packet header byte, then one pixel repeated or a raw run.
	total := h.width * h.height
	for i := 0; w.n < total; {
		if i >= len(px) {
			return nil, fmt.Errorf("%w: RLE data truncated", ErrTGAFormat)
		}
		packet := px[i]
		i++
		count := int(packet&0x7f) + 1
		if packet&0x80 != 0 {
			if i+size > len(px) {
				return nil, fmt.Errorf("%w: RLE data truncated", ErrTGAFormat)
			}
			c := bgra(px[i:], size)
			i += size
			for ; count > 0 && w.n < total; count-- {
				w.put(c)
			}
			continue
		}
		for ; count > 0 && w.n < total; count-- {
			if i+size > len(px) {
				return nil, fmt.Errorf("%w: RLE data truncated", ErrTGAFormat)
			}
			w.put(bgra(px[i:], size))
			i += size
		}
	}
	return w.img, nil
}

func bgra(p []byte, size int) color.RGBA {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if size == 4 {
		c.A = p[3]
	}
	return c
}

// tgaWriter places pixels in file order.
type tgaWriter struct {
	img           *image.RGBA
	width, height int
	topDown       bool
	n             int
}

func (w *tgaWriter) put(c color.RGBA) {
	x, y := w.n%w.width, w.n/w.width
	if !w.topDown {
		y = w.height - 1 - y
	}
	w.img.SetRGBA(x, y, c)
	w.n++
}
