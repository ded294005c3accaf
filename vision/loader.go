package vision

import (
	"image"

	"golang.org/x/image/draw"
)

// TemplateFromImage converts a decoded image into a Template with the
// given detection size, scaling with bilinear filtering when the source
// dimensions differ. Width/height of 0 keep the source size.
func TemplateFromImage(img image.Image, id uint32, name string,
	threshold float32, width, height int) Template {
	b := img.Bounds()
	if width <= 0 {
		width = b.Dx()
	}
	if height <= 0 {
		height = b.Dy()
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == b.Dx() && height == b.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, b, draw.Src, nil)
	}

	return Template{
		ID:        id,
		Name:      name,
		Data:      rgba.Pix,
		Width:     width,
		Height:    height,
		Threshold: threshold,
	}
}
