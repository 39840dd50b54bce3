package steg

import (
	"fmt"
	"io"
	"strings"

	"github.com/zedseven/binmani"
	"github.com/zedseven/textsteg/internal/cursor"
)

// HideConfig stores the configuration options for the Hide operation.
type HideConfig struct {
	// Sentinel is appended to the message to mark where it ends. DefaultSentinel is used if empty.
	Sentinel string
	// OutputLevel is the amount of output to provide.
	OutputLevel OutputLevel
	// Output is where output is written. Stdout is used if nil.
	Output io.Writer
}

func (config *HideConfig) validate() error {
	if len(config.Sentinel) <= 0 {
		config.Sentinel = DefaultSentinel
	}
	return validateSentinel(config.Sentinel)
}

// Hide writes message, followed by the sentinel, into the least-significant bits of grid's channels.
// The grid is modified in place. If the message does not fit, the grid is left untouched.
//
// The sentinel is not escaped: if message itself contains the sentinel, digging stops at the
// first occurrence and returns only what precedes it.
func Hide(grid Grid, message string, config *HideConfig) error {
	if config == nil {
		config = &HideConfig{}
	}
	// Input validation
	if err := config.validate(); err != nil {
		return err
	}
	if len(message) <= 0 {
		return &EmptyMessageError{}
	}

	w, lvl := config.Output, config.OutputLevel

	printlnLvl(w, lvl, OutputDebug, "This tool has been set to display debug output.")
	printlnLvl(w, lvl, OutputInfo, fmt.Sprintf("Grid info:\n\tRows: %d\n\tPixels: %d\n\tWritable bits: %d",
		len(grid), grid.Pixels(), grid.Capacity()))

	if strings.Contains(message, config.Sentinel) {
		printlnLvl(w, lvl, OutputSteps, fmt.Sprintf("Warning: the message contains the sentinel %q, "+
			"so only the text before it will be recoverable.", config.Sentinel))
	}

	printlnLvl(w, lvl, OutputSteps, "Converting the message to bits...")
	bits, err := TextToBits(message + config.Sentinel)
	if err != nil {
		return err
	}
	printlnLvl(w, lvl, OutputInfo, "Bits to write (including sentinel):", len(bits))

	printlnLvl(w, lvl, OutputSteps, "Writing the message into the grid...")
	if err = embed(grid, bits, w, lvl); err != nil {
		return err
	}

	printlnLvl(w, lvl, OutputSteps, "All done! c:")
	return nil
}

// Embed replaces the least-significant bit of successive channels of grid with bits, in row-major,
// pixel-major, channel-major order. Channels beyond the last bit are left alone.
// Capacity is checked before anything is written.
func Embed(grid Grid, bits []uint8) error {
	return embed(grid, bits, nil, OutputNone)
}

// Helper functions

func embed(grid Grid, bits []uint8, w io.Writer, outputLevel OutputLevel) error {
	if available := grid.Capacity(); len(bits) > available {
		return &InsufficientCapacityError{RequiredBits: len(bits), AvailableBits: available}
	}
	for i, bit := range bits {
		if bit > 1 {
			return &InvalidFormatError{fmt.Sprintf("Bit %d has the value %d, which is not a bit.", i, bit)}
		}
	}

	next := cursor.RowMajor(grid.rowLens(), ChannelsPerPix)
	for i := range bits {
		addr, err := next()
		if err != nil {
			// Unreachable after the capacity check.
			return &InsufficientCapacityError{RequiredBits: len(bits), AvailableBits: grid.Capacity()}
		}
		p := &grid[addr.Row][addr.Col]

		printfLvl(w, outputLevel, OutputDebug, "addr: %d, row: %d, col: %d, channel: %d, RGB: %v\n",
			addr.Linear, addr.Row, addr.Col, addr.Channel, *p)
		printfLvl(w, outputLevel, OutputDebug, "\tWriting %d...\n\tChannel before: %#08b\n", bits[i], p[addr.Channel])

		p[addr.Channel] = uint8(binmani.WriteTo(uint16(p[addr.Channel]), 0, 1, uint16(bits[i])))

		printfLvl(w, outputLevel, OutputDebug, "\tChannel after:  %#08b\n", p[addr.Channel])
	}
	return nil
}
