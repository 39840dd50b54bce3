package steg

import (
	"errors"
	"fmt"
	"io"

	"github.com/zedseven/binmani"
	"github.com/zedseven/textsteg/internal/cursor"
	"github.com/zedseven/textsteg/internal/util"
)

// Types

// DigConfig stores the configuration options for the Dig operation.
// The sentinel must match the one used when hiding.
type DigConfig struct {
	Sentinel    string      // The end-of-message marker. DefaultSentinel is used if empty.
	MaxBits     int         // The most bits to read before giving up. 0 reads the whole grid.
	OutputLevel OutputLevel // The amount of output to provide.
	Output      io.Writer   // Where output is written. Stdout is used if nil.
}

func (config *DigConfig) validate() error {
	if len(config.Sentinel) <= 0 {
		config.Sentinel = DefaultSentinel
	}
	if config.MaxBits < 0 {
		return &InvalidFormatError{fmt.Sprintf("MaxBits must be non-negative: Provided %d.", config.MaxBits)}
	}
	return validateSentinel(config.Sentinel)
}

// Primary methods

// Dig recovers a message hidden by Hide. Bits are pulled from the grid one at a time, and reading
// stops as soon as the sentinel has been decoded, so short messages never scan the whole grid.
func Dig(grid Grid, config DigConfig) (string, error) {
	// Input validation
	if err := config.validate(); err != nil {
		return "", err
	}

	w, lvl := config.Output, config.OutputLevel

	printlnLvl(w, lvl, OutputDebug, "This tool has been set to display debug output.")

	limit := grid.Capacity()
	if config.MaxBits > 0 {
		limit = util.Min(limit, config.MaxBits)
	}
	printlnLvl(w, lvl, OutputInfo, "Maximum readable bits:", limit)

	d, err := newTextDecoder(config.Sentinel)
	if err != nil {
		return "", err
	}

	printlnLvl(w, lvl, OutputSteps, "Reading the message from the grid...")
	next := Extract(grid)
	for d.read < limit {
		bit, err := next()
		if err != nil {
			var exhausted *cursor.ExhaustedError
			if errors.As(err, &exhausted) {
				break
			}
			return "", err
		}
		printfLvl(w, lvl, OutputDebug, "\tRead %d\n", bit)

		if d.push(bit) {
			msg := d.message()
			printlnLvl(w, lvl, OutputInfo, fmt.Sprintf("Found the sentinel after %d bits.", d.read))
			printlnLvl(w, lvl, OutputSteps, "All done! c:")
			return msg, nil
		}
	}

	printlnLvl(w, lvl, OutputSteps, "Reached the end of the readable bits without finding the sentinel.")
	return "", &SentinelNotFoundError{Sentinel: config.Sentinel, ReadBits: d.read}
}

// Extract returns a bit source that yields the least-significant bit of each channel of grid,
// in the same order Embed writes them. Once every channel has been read it returns a
// *cursor.ExhaustedError.
func Extract(grid Grid) func() (uint8, error) {
	next := cursor.RowMajor(grid.rowLens(), ChannelsPerPix)
	return func() (uint8, error) {
		addr, err := next()
		if err != nil {
			return 0, err
		}
		return uint8(binmani.ReadFrom(uint16(grid[addr.Row][addr.Col][addr.Channel]), 0, 1)), nil
	}
}

// ExtractBits reads the least-significant bit of every channel in grid.
func ExtractBits(grid Grid) []uint8 {
	bits := make([]uint8, 0, grid.Capacity())
	next := Extract(grid)
	for {
		bit, err := next()
		if err != nil {
			return bits
		}
		bits = append(bits, bit)
	}
}
