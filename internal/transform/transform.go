// Package transform holds the pure, chunk-vectorized conversions applied to
// raw dataset columns before serialization. Each function takes one chunk's
// worth of raw values and returns output-ready scalars of the same length.
package transform

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// NilIdentifier substitutes an entire chunk of an identifier column whose
// raw bytes cannot be decoded.
var NilIdentifier = uuid.Nil.String()

// timestampLayout renders microsecond-epoch values for the Postgres
// timestamp type. Trailing zeros in the fractional part are trimmed.
const timestampLayout = "2006-01-02 15:04:05.999999"

// DecodeText converts one chunk of raw fixed-width byte values into strings.
// Trailing NUL padding is stripped. Invalid UTF-8 in any element is an error:
// enum-like fields (side, reason, order_type) have no sensible fallback.
func DecodeText(raw [][]byte) ([]string, error) {
	out := make([]string, len(raw))
	for i, b := range raw {
		b = bytes.TrimRight(b, "\x00")
		if !utf8.Valid(b) {
			return nil, fmt.Errorf("element %d is not valid UTF-8", i)
		}
		out[i] = string(b)
	}
	return out, nil
}

// DecodeIdentifiers converts one chunk of raw order-id bytes into strings.
// If any element fails to decode, every element of the chunk becomes the
// nil-UUID sentinel. The fallback is all-or-nothing per chunk, never a mix
// of decoded and sentinel values.
func DecodeIdentifiers(raw [][]byte) []string {
	decoded, err := DecodeText(raw)
	if err != nil {
		return Broadcast(NilIdentifier, len(raw))
	}
	return decoded
}

// ScaledDecimal converts fixed-point integers to decimals via value/scale.
// A zero scale yields 0.0 for every element rather than a panic; it guards
// against a degenerate all-zero column.
func ScaledDecimal(raw []int64, scale int64) []float64 {
	out := make([]float64, len(raw))
	if scale == 0 {
		return out
	}
	for i, v := range raw {
		out[i] = float64(v) / float64(scale)
	}
	return out
}

// Timestamps converts microsecond epoch integers into UTC timestamp strings,
// one per element.
func Timestamps(raw []int64) []string {
	out := make([]string, len(raw))
	for i, us := range raw {
		out[i] = time.UnixMicro(us).UTC().Format(timestampLayout)
	}
	return out
}

// Broadcast fills a column of length n with a constant value. Used for the
// resolved product id, identical for every row of a table.
func Broadcast(value string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// FormatFloats renders decimals in their shortest round-trip form, which is
// stable and locale-independent.
func FormatFloats(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}
