package visual

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

// encoder favours speed; page images are intermediate artifacts that are
// compressed again by the archive.
var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG writes img as PNG. PNG cannot represent an empty image, so an
// empty img is written as a single white pixel.
func EncodePNG(w io.Writer, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		img = Blank(1, 1)
	}
	return encoder.Encode(w, img)
}

// WritePNG encodes img to a new file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is built from the run's working directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	if err := EncodePNG(bw, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
