package steg

import (
	"bytes"
	"fmt"

	"github.com/zedseven/binmani"
)

// TextToBits expands each character of message into its 8-bit value, most-significant bit first.
// Every character must have a code point of at most 255.
func TextToBits(message string) ([]uint8, error) {
	b, err := textToBytes(message)
	if err != nil {
		return nil, err
	}
	if len(b) <= 0 {
		return []uint8{}, nil
	}
	return *binmani.BytesToBits(&b), nil
}

// BitsToText packs bits back into characters, stopping as soon as the decoded text ends with
// sentinel. The sentinel is stripped from the result.
func BitsToText(bits []uint8, sentinel string) (string, error) {
	d, err := newTextDecoder(sentinel)
	if err != nil {
		return "", err
	}
	for i, bit := range bits {
		if bit > 1 {
			return "", &InvalidFormatError{fmt.Sprintf("Bit %d has the value %d, which is not a bit.", i, bit)}
		}
		if d.push(bit) {
			return d.message(), nil
		}
	}
	if d.pending > 0 {
		return "", &TruncatedStreamError{DanglingBits: int(d.pending)}
	}
	return "", &SentinelNotFoundError{Sentinel: sentinel, ReadBits: d.read}
}

// Helper functions

// textDecoder accumulates bits into bytes and watches for the sentinel after each byte.
type textDecoder struct {
	sentinel []byte
	out      []byte
	cur      byte
	pending  uint8 // Bits accumulated into cur so far.
	read     int
}

func newTextDecoder(sentinel string) (*textDecoder, error) {
	if err := validateSentinel(sentinel); err != nil {
		return nil, err
	}
	s, err := textToBytes(sentinel)
	if err != nil {
		return nil, err
	}
	return &textDecoder{sentinel: s}, nil
}

// push feeds in the next bit, and reports whether the sentinel has now been read.
func (d *textDecoder) push(bit uint8) bool {
	d.read++
	d.cur = byte(binmani.WriteTo(uint16(d.cur), bitsPerByte-d.pending-1, 1, uint16(bit&1)))
	d.pending++
	if d.pending < bitsPerByte {
		return false
	}

	d.out = append(d.out, d.cur)
	d.cur, d.pending = 0, 0
	return bytes.HasSuffix(d.out, d.sentinel)
}

// message returns everything decoded before the sentinel.
func (d *textDecoder) message() string {
	return bytesToText(d.out[:len(d.out)-len(d.sentinel)])
}

func textToBytes(text string) ([]byte, error) {
	b := make([]byte, 0, len(text))
	for i, r := range text {
		if r > maxCharValue {
			return nil, &EncodingError{Char: r, Offset: i}
		}
		b = append(b, byte(r))
	}
	return b, nil
}

func bytesToText(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}
