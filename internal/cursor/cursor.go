// Package cursor hands out channel addresses of a pixel grid in traversal order.
package cursor

import "fmt"

// Address identifies a single channel of a single pixel in a grid.
type Address struct {
	Linear  int64 // The position of the channel in traversal order, starting at 0.
	Row     int
	Col     int
	Channel uint8
}

// ExhaustedError is returned when an addressor is called but every channel has already been handed out.
type ExhaustedError struct {
	Visited int64
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("The grid has no channels left to visit (visited %d).", e.Visited)
}

// Sequential works through linear addresses from 0 to channels - 1.
func Sequential(channels int64) func() (int64, error) {
	pos := int64(-1)
	return func() (int64, error) {
		if pos+1 >= channels {
			return -1, &ExhaustedError{Visited: channels}
		}
		pos++
		return pos, nil
	}
}

// RowMajor walks a grid with the given row lengths: rows top to bottom, pixels left to right,
// then channelsPerPix channels within each pixel. Empty rows are skipped.
func RowMajor(rowLens []int, channelsPerPix uint8) func() (Address, error) {
	total := int64(0)
	for _, l := range rowLens {
		total += int64(l)
	}
	next := Sequential(total * int64(channelsPerPix))

	row, col, channel := 0, 0, uint8(0)
	return func() (Address, error) {
		pos, err := next()
		if err != nil {
			return Address{Linear: -1}, err
		}
		for row < len(rowLens) && col >= rowLens[row] {
			row++
			col = 0
		}

		addr := Address{Linear: pos, Row: row, Col: col, Channel: channel}

		channel++
		if channel >= channelsPerPix {
			channel = 0
			col++
		}
		return addr, nil
	}
}
