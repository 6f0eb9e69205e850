package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeTrueColor    = 2
	TGATypeGrayscale    = 3
	TGATypeTrueColorRLE = 10
	TGATypeGrayscaleRLE = 11
)

var errTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes uncompressed and RLE true-colour (24/32 bit) and
// grayscale (8 bit) TGA images. Grayscale files decode to *image.Gray,
// the rest to *image.NRGBA.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}

	gray := imageType == TGATypeGrayscale || imageType == TGATypeGrayscaleRLE
	rle := imageType == TGATypeTrueColorRLE || imageType == TGATypeGrayscaleRLE
	switch {
	case imageType != TGATypeTrueColor && imageType != TGATypeTrueColorRLE && !gray:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	case gray && bpp != 8:
		return nil, fmt.Errorf("unsupported grayscale TGA bit depth %d", bpp)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty TGA image %dx%d", width, height)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	bytesPerPixel := bpp / 8
	pixels := data[offset:]
	if rle {
		var err error
		if pixels, err = expandTGARLE(pixels, width*height, bytesPerPixel); err != nil {
			return nil, err
		}
	} else if len(pixels) < width*height*bytesPerPixel {
		return nil, errTGATruncated
	}

	// Bit 5 of the descriptor set means rows are stored top to bottom.
	topToBottom := descriptor&0x20 != 0
	row := func(y int) int {
		if topToBottom {
			return y
		}
		return height - 1 - y
	}

	if gray {
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			copy(img.Pix[row(y)*img.Stride:], pixels[y*width:(y+1)*width])
		}
		return img, nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * bytesPerPixel
			a := uint8(255)
			if bytesPerPixel == 4 {
				a = pixels[i+3]
			}
			img.SetNRGBA(x, row(y), color.NRGBA{R: pixels[i+2], G: pixels[i+1], B: pixels[i], A: a})
		}
	}
	return img, nil
}

// expandTGARLE unpacks RLE packets into raw pixel bytes.
func expandTGARLE(data []byte, pixelCount, bytesPerPixel int) ([]byte, error) {
	out := make([]byte, 0, pixelCount*bytesPerPixel)
	i := 0
	for len(out) < pixelCount*bytesPerPixel {
		if i >= len(data) {
			return nil, errTGATruncated
		}
		packet := data[i]
		i++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run-length packet: one pixel repeated.
			if i+bytesPerPixel > len(data) {
				return nil, errTGATruncated
			}
			px := data[i : i+bytesPerPixel]
			i += bytesPerPixel
			for n := 0; n < count; n++ {
				out = append(out, px...)
			}
		} else {
			// Raw packet.
			size := count * bytesPerPixel
			if i+size > len(data) {
				return nil, errTGATruncated
			}
			out = append(out, data[i:i+size]...)
			i += size
		}
	}
	return out[:pixelCount*bytesPerPixel], nil
}
