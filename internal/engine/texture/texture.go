// Package texture decodes images and uploads them as GPU textures.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/rat-engine/internal/engine/gpu"
)

// ErrUnsupportedFormat is returned for channel counts outside 1..4.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// Pixels is decoded host-side image data, tightly packed with the bottom
// row first so it can be uploaded without further conversion.
type Pixels struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// Free drops the host buffer.
func (p *Pixels) Free() {
	p.Data = nil
}

// FormatForChannels maps a channel count to a pixel format.
func FormatForChannels(channels int) (gpu.PixelFormat, error) {
	switch channels {
	case 1:
		return gpu.FormatRed, nil
	case 2:
		return gpu.FormatRG, nil
	case 3:
		return gpu.FormatRGB, nil
	case 4:
		return gpu.FormatRGBA, nil
	default:
		return 0, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
}

// Decode decodes PNG, JPEG, GIF, BMP, TIFF, WebP or TGA data. The name is
// only used to recognise TGA, which has no signature.
func Decode(data []byte, name string) (*Pixels, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return FromImage(img), nil
}

// FromImage converts img to packed pixels. Grayscale images keep one
// channel, opaque images three and everything else four.
func FromImage(img image.Image) *Pixels {
	b := img.Bounds()
	px := &Pixels{Width: b.Dx(), Height: b.Dy(), Channels: channelsOf(img)}
	px.Data = make([]byte, 0, px.Width*px.Height*px.Channels)

	// Image rows run top to bottom; texture rows bottom to top.
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch px.Channels {
			case 1:
				g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
				px.Data = append(px.Data, g.Y)
			case 3:
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				px.Data = append(px.Data, c.R, c.G, c.B)
			default:
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				px.Data = append(px.Data, c.R, c.G, c.B, c.A)
			}
		}
	}
	return px
}

func channelsOf(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

// Texture is an uploaded GPU texture.
type Texture struct {
	ID     uint32
	Width  int
	Height int
	Format gpu.PixelFormat
}

// Upload creates a mipmapped texture from px.
func Upload(dev gpu.Device, px *Pixels) (*Texture, error) {
	format, err := FormatForChannels(px.Channels)
	if err != nil {
		return nil, err
	}
	if want := px.Width * px.Height * px.Channels; len(px.Data) < want {
		return nil, fmt.Errorf("texture data has %d bytes, need %d", len(px.Data), want)
	}

	id := dev.CreateTexture(gpu.Image{
		Width:  px.Width,
		Height: px.Height,
		Format: format,
		Pixels: px.Data,
	})
	return &Texture{ID: id, Width: px.Width, Height: px.Height, Format: format}, nil
}

// Load reads, decodes and uploads an image file. The host pixels are
// released before returning, whatever the outcome.
func Load(dev gpu.Device, path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	px, err := Decode(data, path)
	if err != nil {
		return nil, err
	}
	defer px.Free()

	return Upload(dev, px)
}

// Delete releases the GPU texture. It is safe to call more than once.
func (t *Texture) Delete(dev gpu.Device) {
	if t.ID == 0 {
		return
	}
	dev.DeleteTexture(t.ID)
	t.ID = 0
}
