package extract

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// decodeImage records pixel dimensions from the image header only.
func (e *Extractor) decodeImage(path string, p *state.Preview) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return err
	}
	p.Width = cfg.Width
	p.Height = cfg.Height
	p.Text = fmt.Sprintf("%s image, %dx%d", format, cfg.Width, cfg.Height)
	return nil
}
