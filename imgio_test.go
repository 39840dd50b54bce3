package steg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int, opaque bool) *image.NRGBA {
	rng := rand.New(rand.NewSource(int64(w*h + 1)))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0xff)
			if !opaque {
				a = uint8(rng.Intn(255) + 1)
			}
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: a})
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return img
}

func TestHideFileDigFile(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writeTestPNG(t, in, 24, 16, true)

	r.NoError(HideFile(in, out, "meet me at noon", nil))

	msg, err := DigFile(out, DigConfig{})
	r.NoError(err)
	r.Equal("meet me at noon", msg)

	_, err = DigFile(in, DigConfig{MaxBits: 1024})
	var notFound *SentinelNotFoundError
	if err != nil {
		r.True(errors.As(err, &notFound), "expected a SentinelNotFoundError, got %v", err)
	}
}

func TestHideFilePreservesAlphaAndUpperBits(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	src := writeTestPNG(t, in, 20, 20, false)

	r.NoError(HideFile(in, out, "translucent", nil))

	grid, info, err := LoadImage(out)
	r.NoError(err)
	r.Equal(20, info.W)
	r.Equal(20, info.H)
	r.Equal("NRGBA", info.Model)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			c := src.NRGBAAt(x, y)
			r.Equal(c.A, info.alpha[y*20+x])
			r.Equal(c.R&0xfe, grid[y][x].R()&0xfe)
			r.Equal(c.G&0xfe, grid[y][x].G()&0xfe)
			r.Equal(c.B&0xfe, grid[y][x].B()&0xfe)
		}
	}

	msg, err := Dig(grid, DigConfig{})
	r.NoError(err)
	r.Equal("translucent", msg)
}

func TestHideFileFromJPEG(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	in := filepath.Join(dir, "in.jpg")
	out := filepath.Join(dir, "out.png")

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 0xff})
		}
	}
	f, err := os.Create(in)
	r.NoError(err)
	r.NoError(jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
	r.NoError(f.Close())

	r.NoError(HideFile(in, out, "from a jpeg", nil))

	msg, err := DigFile(out, DigConfig{})
	r.NoError(err)
	r.Equal("from a jpeg", msg)
}

func TestLoadImageChannelOrder(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "rgb.png")
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0xff})
	f, err := os.Create(path)
	r.NoError(err)
	r.NoError(png.Encode(f, img))
	r.NoError(f.Close())

	grid, _, err := LoadImage(path)
	r.NoError(err)
	r.Equal(Pixel{10, 20, 30}, grid[0][0])
	r.Equal(uint8(10), grid[0][0][ChannelR])
	r.Equal(uint8(30), grid[0][0][ChannelB])
}

func TestHideFileDigFileByline(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writeTestPNG(t, in, 16, 16, true)

	var hideOut, digOut bytes.Buffer
	r.NoError(HideFile(in, out, "signed", &HideConfig{OutputLevel: OutputSteps, Output: &hideOut}))
	msg, err := DigFile(out, DigConfig{OutputLevel: OutputSteps, Output: &digOut})
	r.NoError(err)
	r.Equal("signed", msg)

	r.Contains(hideOut.String(), byline())
	r.Contains(digOut.String(), byline())

	digOut.Reset()
	_, err = DigFile(out, DigConfig{Output: &digOut})
	r.NoError(err)
	r.Equal(0, digOut.Len())
}

func TestHideFileTooSmall(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writeTestPNG(t, in, 2, 2, true)

	err := HideFile(in, out, "far too long for four pixels", nil)
	var capErr *InsufficientCapacityError
	r.True(errors.As(err, &capErr), "expected an InsufficientCapacityError, got %v", err)

	_, err = os.Stat(out)
	r.True(os.IsNotExist(err), "no output should be written on failure")
}

func TestHideFileBadPaths(t *testing.T) {
	r := require.New(t)
	var formatErr *InvalidFormatError

	err := HideFile("", "out.png", "hi", nil)
	r.True(errors.As(err, &formatErr), "expected an InvalidFormatError, got %v", err)

	err = HideFile("in.png", "", "hi", nil)
	r.True(errors.As(err, &formatErr), "expected an InvalidFormatError, got %v", err)

	_, err = DigFile("", DigConfig{})
	r.True(errors.As(err, &formatErr), "expected an InvalidFormatError, got %v", err)

	_, _, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	r.Error(err)
	r.True(errors.Is(err, os.ErrNotExist))
}

func TestLoadImageNotAnImage(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "text.png")
	r.NoError(os.WriteFile(path, []byte("definitely not a png"), 0o600))

	_, _, err := LoadImage(path)
	r.Error(err)
}

func TestWriteImageMismatchedGrid(t *testing.T) {
	r := require.New(t)
	var formatErr *InvalidFormatError

	path := filepath.Join(t.TempDir(), "out.png")

	err := WriteImage(NewGrid(4, 4), &ImageInfo{W: 4, H: 5}, path)
	r.True(errors.As(err, &formatErr), "expected an InvalidFormatError, got %v", err)

	err = WriteImage(NewGrid(3, 4), &ImageInfo{W: 4, H: 4}, path)
	r.True(errors.As(err, &formatErr), "expected an InvalidFormatError, got %v", err)

	err = WriteImage(NewGrid(3, 4), nil, path)
	r.True(errors.As(err, &formatErr), "expected an InvalidFormatError, got %v", err)

	// Without alpha information every pixel is written opaque.
	r.NoError(WriteImage(NewGrid(4, 4), &ImageInfo{W: 4, H: 4}, path))
	_, info, err := LoadImage(path)
	r.NoError(err)
	for _, a := range info.alpha {
		r.Equal(uint8(0xff), a)
	}
}
