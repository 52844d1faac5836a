package frames

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// SSIM constants for 8-bit planes: 7x7 uniform windows, K1=0.01, K2=0.03,
// dynamic range 255.
const (
	ssimWindow = 7
	ssimC1     = (0.01 * 255) * (0.01 * 255)
	ssimC2     = (0.03 * 255) * (0.03 * 255)
)

// Scorer computes structural similarity between two frames
type Scorer struct{}

// NewScorer creates a similarity scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns a similarity in [0, 1]; 1.0 means the frames are identical
// under the comparison procedure. Both frames are reduced to luminance and
// resized to the intersection of their dimensions before comparison, so
// inputs of different sizes are accepted (aspect distortion included).
// Unusable inputs score 0.0 rather than erroring.
func (s *Scorer) Score(a, b image.Image) float64 {
	if a == nil || b == nil {
		return 0.0
	}

	grayA := toGray(a)
	grayB := toGray(b)

	w := min(grayA.Rect.Dx(), grayB.Rect.Dx())
	h := min(grayA.Rect.Dy(), grayB.Rect.Dy())
	if w <= 0 || h <= 0 {
		return 0.0
	}

	grayA = resizeGray(grayA, w, h)
	grayB = resizeGray(grayB, w, h)

	score := ssim(grayA, grayB, w, h)
	if score < 0 {
		return 0.0
	}
	if score > 1 {
		return 1.0
	}
	return score
}

// toGray converts an image to a luminance plane using the Rec. 601 weights
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, colorGray(lum))
		}
	}
	return gray
}

func resizeGray(g *image.Gray, w, h int) *image.Gray {
	if g.Rect.Dx() == w && g.Rect.Dy() == h {
		return g
	}
	return toGray(resize.Resize(uint(w), uint(h), g, resize.Bilinear))
}

// ssim computes the mean local structural similarity over uniform windows.
// Planes smaller than the window fall back to a single global window.
func ssim(a, b *image.Gray, w, h int) float64 {
	if w < ssimWindow || h < ssimWindow {
		return ssimRegion(a, b, 0, 0, w, h)
	}

	var sum float64
	var windows int
	for y := 0; y+ssimWindow <= h; y++ {
		for x := 0; x+ssimWindow <= w; x++ {
			sum += ssimRegion(a, b, x, y, ssimWindow, ssimWindow)
			windows++
		}
	}
	return sum / float64(windows)
}

// ssimRegion evaluates the SSIM formula over one rectangular region
func ssimRegion(a, b *image.Gray, x0, y0, w, h int) float64 {
	n := float64(w * h)

	var sumA, sumB float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			sumA += float64(a.GrayAt(x, y).Y)
			sumB += float64(b.GrayAt(x, y).Y)
		}
	}
	muA := sumA / n
	muB := sumB / n

	var varA, varB, cov float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			da := float64(a.GrayAt(x, y).Y) - muA
			db := float64(b.GrayAt(x, y).Y) - muB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	// sample (n-1) normalization
	norm := n - 1
	if norm <= 0 {
		norm = 1
	}
	varA /= norm
	varB /= norm
	cov /= norm

	num := (2*muA*muB + ssimC1) * (2*cov + ssimC2)
	den := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)
	return num / den
}

func colorGray(lum float64) color.Gray {
	if lum < 0 {
		lum = 0
	}
	if lum > 255 {
		lum = 255
	}
	return color.Gray{Y: uint8(lum + 0.5)}
}
