// Package steg hides text messages in the least-significant bits of an image's pixel channels,
// and digs them back out again.
package steg

import (
	"fmt"
	"io"
	"os"

	"github.com/zedseven/textsteg/internal/util"
)

const (
	bitsPerByte     uint8  = 8
	ChannelsPerPix  uint8  = 3
	maxCharValue    rune   = 0xff
	DefaultSentinel string = "$$"
	VersionMax      uint8  = 1
	VersionMid      uint8  = 0
	VersionMin      uint8  = 0
)

// Channel indices within a Pixel.
const (
	ChannelR uint8 = iota
	ChannelG
	ChannelB
)

// Shared types

// Pixel is a single pixel's colour channels, in a fixed order (R, G, B).
// Tools that read images through OpenCV see channels as B, G, R instead, so messages they hide
// are not recoverable here (and vice versa) even though both use the same bit layout.
type Pixel [ChannelsPerPix]uint8

func (p Pixel) R() uint8 { return p[ChannelR] }
func (p Pixel) G() uint8 { return p[ChannelG] }
func (p Pixel) B() uint8 { return p[ChannelB] }

// Grid is a 2D collection of pixels, traversed rows first, then columns.
// Rows are allowed to differ in length.
type Grid [][]Pixel

// NewGrid returns a zeroed grid of h rows, each w pixels wide.
func NewGrid(w, h int) Grid {
	g := make(Grid, h)
	for y := range g {
		g[y] = make([]Pixel, w)
	}
	return g
}

// Pixels returns the total number of pixels in the grid.
func (g Grid) Pixels() int {
	n := 0
	for _, row := range g {
		n += len(row)
	}
	return n
}

// Capacity returns the number of bits the grid can carry, one per channel.
func (g Grid) Capacity() int {
	return g.Pixels() * int(ChannelsPerPix)
}

func (g Grid) rowLens() []int {
	lens := make([]int, len(g))
	for y, row := range g {
		lens[y] = len(row)
	}
	return lens
}

// OutputLevel is the amount of console output an operation produces.
type OutputLevel int

const (
	OutputNone  OutputLevel = iota // No output at all.
	OutputSteps                    // Major steps of an operation.
	OutputInfo                     // Steps, plus sizes and other details.
	OutputDebug                    // Everything, including per-channel writes.
)

// Error types

// InvalidFormatError is returned when a configuration value or input is malformed.
type InvalidFormatError struct {
	ErrorDesc string
}

func (e *InvalidFormatError) Error() string {
	if len(e.ErrorDesc) > 0 {
		return e.ErrorDesc
	}
	return "The provided data is of an invalid format."
}

// EncodingError is returned when a message character cannot be stored in a single byte.
type EncodingError struct {
	Char   rune
	Offset int // Byte offset of the character within the message.
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("The character %q (U+%04X) at offset %d does not fit in a single byte.", e.Char, e.Char, e.Offset)
}

// EmptyMessageError is returned when asked to hide a zero-length message.
type EmptyMessageError struct{}

func (e *EmptyMessageError) Error() string {
	return "The message to hide is empty."
}

// InsufficientCapacityError is returned when the bitstream does not fit in the grid.
// It is raised before any channel is modified.
type InsufficientCapacityError struct {
	RequiredBits  int
	AvailableBits int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("There is not enough space available to store the message within the grid: "+
		"%d bits (%d pixels) are required but only %d bits (%d pixels) are available.",
		e.RequiredBits, util.CeilDiv(e.RequiredBits, int(ChannelsPerPix)),
		e.AvailableBits, e.AvailableBits/int(ChannelsPerPix))
}

// SentinelNotFoundError is returned when decoding runs out of bits before the sentinel is seen.
// Usually it means the grid carries no message, or was damaged.
type SentinelNotFoundError struct {
	Sentinel string
	ReadBits int
}

func (e *SentinelNotFoundError) Error() string {
	return fmt.Sprintf("The sentinel %q was not found within the %d bits read.", e.Sentinel, e.ReadBits)
}

// TruncatedStreamError is returned when a bitstream ends partway through a byte.
type TruncatedStreamError struct {
	DanglingBits int
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("The bitstream ends with an incomplete byte of %d bits.", e.DanglingBits)
}

// Library methods

func Version() string {
	return fmt.Sprintf("%02d.%02d.%02d", VersionMax, VersionMid, VersionMin)
}

// MaxMessageLength returns the longest message, in characters, that Hide can fit in grid
// alongside the sentinel.
// An empty sentinel means DefaultSentinel, as in HideConfig.
func MaxMessageLength(grid Grid, sentinel string) int {
	if len(sentinel) <= 0 {
		sentinel = DefaultSentinel
	}
	return util.Max(0, grid.Capacity()/int(bitsPerByte)-len([]rune(sentinel)))
}

// Shared methods

func validateSentinel(sentinel string) error {
	if len(sentinel) <= 0 {
		return &InvalidFormatError{"Sentinel is empty."}
	}
	for _, r := range sentinel {
		if r > maxCharValue {
			return &InvalidFormatError{fmt.Sprintf("Sentinel contains %q, which does not fit in a single byte.", r)}
		}
	}
	return nil
}

func printlnLvl(w io.Writer, outputLevel, minLevel OutputLevel, a ...interface{}) {
	if outputLevel < minLevel {
		return
	}
	if w == nil {
		w = os.Stdout
	}
	_, _ = fmt.Fprintln(w, a...)
}

func printfLvl(w io.Writer, outputLevel, minLevel OutputLevel, format string, a ...interface{}) {
	if outputLevel < minLevel {
		return
	}
	if w == nil {
		w = os.Stdout
	}
	_, _ = fmt.Fprintf(w, format, a...)
}
