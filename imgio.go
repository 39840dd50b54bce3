package steg

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
)

// ImageInfo describes an image loaded by LoadImage, and carries what WriteImage needs to rebuild it.
type ImageInfo struct {
	W, H  int
	Model string // The colour model of the source image.
	alpha []uint8
}

// Primary methods

// HideFile loads the image at imgPath, hides message in it, and writes the result to outPath as a PNG.
func HideFile(imgPath, outPath, message string, config *HideConfig) error {
	if config == nil {
		config = &HideConfig{}
	}
	if len(imgPath) <= 0 {
		return &InvalidFormatError{"ImagePath is empty."}
	}
	if len(outPath) <= 0 {
		return &InvalidFormatError{"OutPath is empty."}
	}

	w, lvl := config.Output, config.OutputLevel

	printlnLvl(w, lvl, OutputSteps, byline())
	printlnLvl(w, lvl, OutputSteps, fmt.Sprintf("Loading the image from '%v'...", imgPath))
	grid, info, err := LoadImage(imgPath)
	if err != nil {
		printlnLvl(w, lvl, OutputSteps, fmt.Sprintf("Unable to load the image at '%v'!", imgPath))
		return err
	}
	printlnLvl(w, lvl, OutputInfo, fmt.Sprintf("Image info:\n\tDimensions: %dx%d px\n\tColour model: %v",
		info.W, info.H, info.Model))

	if err = Hide(grid, message, config); err != nil {
		return err
	}

	printlnLvl(w, lvl, OutputSteps, fmt.Sprintf("Writing the encoded image to '%v' now...", outPath))
	if err = WriteImage(grid, info, outPath); err != nil {
		printlnLvl(w, lvl, OutputSteps, "An error occurred while writing to the final image.")
		return err
	}
	return nil
}

// DigFile loads the image at imgPath and recovers the message hidden within it.
func DigFile(imgPath string, config DigConfig) (string, error) {
	if len(imgPath) <= 0 {
		return "", &InvalidFormatError{"ImagePath is empty."}
	}

	w, lvl := config.Output, config.OutputLevel

	printlnLvl(w, lvl, OutputSteps, byline())
	printlnLvl(w, lvl, OutputSteps, fmt.Sprintf("Loading the image from '%v'...", imgPath))
	grid, info, err := LoadImage(imgPath)
	if err != nil {
		printlnLvl(w, lvl, OutputSteps, fmt.Sprintf("Unable to load the image at '%v'!", imgPath))
		return "", err
	}
	printlnLvl(w, lvl, OutputInfo, fmt.Sprintf("Image info:\n\tDimensions: %dx%d px\n\tColour model: %v",
		info.W, info.H, info.Model))

	return Dig(grid, config)
}

// LoadImage decodes the image at imgPath into a grid of 8-bit RGB pixels.
// Any format registered with the image package can be read.
func LoadImage(imgPath string) (grid Grid, info *ImageInfo, err error) {
	imgFile, err := os.Open(imgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open the image: %w", err)
	}

	defer func() {
		if cerr := imgFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	grid, info, err = readPixels(imgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("the image couldn't be decoded: %w", err)
	}
	return grid, info, nil
}

// WriteImage encodes grid as a PNG at outPath. Only lossless output is supported, since any
// lossy re-compression would destroy the hidden bits.
func WriteImage(grid Grid, info *ImageInfo, outPath string) (err error) {
	img, err := gridToImage(grid, info)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("there was an error creating the file '%v': %w", outPath, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err = encoder.Encode(f, img); err != nil {
		return fmt.Errorf("there was an error encoding the image to the new file: %w", err)
	}
	return nil
}

// Helper functions

func readPixels(r io.Reader) (Grid, *ImageInfo, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	info := &ImageInfo{W: w, H: h, Model: colourModelToStr(img.ColorModel()), alpha: make([]uint8, w*h)}
	grid := NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Every colour model is normalised to 8-bit non-premultiplied RGBA.
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			grid[y][x] = Pixel{c.R, c.G, c.B}
			info.alpha[y*w+x] = c.A
		}
	}
	return grid, info, nil
}

func gridToImage(grid Grid, info *ImageInfo) (*image.NRGBA, error) {
	if info == nil {
		return nil, &InvalidFormatError{"ImageInfo is nil."}
	}
	if len(grid) != info.H {
		return nil, &InvalidFormatError{fmt.Sprintf("The grid has %d rows but the image is %d px tall.", len(grid), info.H)}
	}

	img := image.NewNRGBA(image.Rect(0, 0, info.W, info.H))
	for y, row := range grid {
		if len(row) != info.W {
			return nil, &InvalidFormatError{fmt.Sprintf("Row %d has %d pixels but the image is %d px wide.", y, len(row), info.W)}
		}
		for x, p := range row {
			a := uint8(0xff)
			if len(info.alpha) == info.W*info.H {
				a = info.alpha[y*info.W+x]
			}
			img.SetNRGBA(x, y, color.NRGBA{R: p.R(), G: p.G(), B: p.B(), A: a})
		}
	}
	return img, nil
}

func byline() string {
	return fmt.Sprintf("Steg v%s by Zacchary Dempsey-Plante.", Version())
}

func colourModelToStr(model color.Model) string {
	switch model {
	case color.Alpha16Model:
		return "Alpha16"
	case color.AlphaModel:
		return "Alpha"
	case color.CMYKModel:
		return "CMYK"
	case color.Gray16Model:
		return "Gray16"
	case color.GrayModel:
		return "Gray"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.RGBAModel:
		return "RGBA"
	case color.NYCbCrAModel:
		return "NYCbCrA"
	case color.YCbCrModel:
		return "YCbCr"
	default:
		if _, ok := model.(color.Palette); ok {
			return "Paletted"
		}
		return "<Unknown>"
	}
}
