// Package spin implements the packed spin-configuration type used
// throughout the diffusion engine: a fixed 16-byte value holding up to 112
// spins plus a length, compared and hashed as a pair of machine words.
package spin

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/twesterhout/walking-lanczos/qerr"
)

// MaxSites is the largest number of spins a Configuration can hold: 14
// payload bytes, 8 spins each.
const MaxSites = 14 * 8

// Value is a single spin, up or down.
type Value uint8

const (
	Down Value = 0
	Up   Value = 1
)

// Configuration is a packed, fixed-size spin chain. The zero value is the
// empty (length-0) configuration.
//
// lo holds payload bytes 0..7 and hi holds payload bytes 8..13 in its low
// 48 bits with the 16-bit length in its top 16 bits, mirroring the layout
// of two adjacent 64-bit words inside a 16-byte packed record. Comparing
// two Configurations reduces to comparing lo and hi, the portable
// equivalent of a single 128-bit vector compare.
type Configuration struct {
	lo, hi uint64
}

// New packs values (each expected to be 0 or 1) into a Configuration.
func New(values []int) (Configuration, error) {
	if len(values) > MaxSites {
		return Configuration{}, qerr.New(qerr.InvalidArgument,
			fmt.Sprintf("configuration length %d exceeds maximum of %d", len(values), MaxSites))
	}
	var c Configuration
	c.hi = uint64(len(values)) << 48
	for i, v := range values {
		if v != 0 && v != 1 {
			return Configuration{}, qerr.New(qerr.InvalidArgument,
				fmt.Sprintf("spin at index %d is %d, want 0 or 1", i, v))
		}
		if v == 1 {
			c = c.setBit(i)
		}
	}
	return c, nil
}

// Len returns the number of spins in the configuration.
func (c Configuration) Len() int {
	return int(c.hi >> 48)
}

// byteAt returns payload byte i (0 <= i < 14).
func (c Configuration) byteAt(i int) byte {
	if i < 8 {
		return byte(c.lo >> (8 * uint(i)))
	}
	return byte(c.hi >> (8 * uint(i-8)))
}

func (c Configuration) setByteAt(i int, b byte) Configuration {
	if i < 8 {
		shift := 8 * uint(i)
		c.lo = (c.lo &^ (0xff << shift)) | (uint64(b) << shift)
		return c
	}
	shift := 8 * uint(i-8)
	c.hi = (c.hi &^ (0xff << shift)) | (uint64(b) << shift)
	return c
}

// At returns the spin at index i, counting from the most significant bit
// of the byte it falls into, matching the original bit layout.
func (c Configuration) At(i int) (Value, error) {
	if i < 0 || i >= c.Len() {
		return 0, qerr.New(qerr.InvalidArgument,
			fmt.Sprintf("index %d out of range for configuration of length %d", i, c.Len()))
	}
	byteIdx, bitIdx := i/8, i%8
	b := c.byteAt(byteIdx)
	return Value((b >> uint(7-bitIdx)) & 0x01), nil
}

func (c Configuration) setBit(i int) Configuration {
	byteIdx, bitIdx := i/8, i%8
	b := c.byteAt(byteIdx)
	b |= 1 << uint(7-bitIdx)
	return c.setByteAt(byteIdx, b)
}

// Flip returns a copy of c with the spin at index i inverted.
func (c Configuration) Flip(i int) (Configuration, error) {
	if i < 0 || i >= c.Len() {
		return Configuration{}, qerr.New(qerr.InvalidArgument,
			fmt.Sprintf("index %d out of range for configuration of length %d", i, c.Len()))
	}
	byteIdx, bitIdx := i/8, i%8
	b := c.byteAt(byteIdx)
	b ^= 1 << uint(7-bitIdx)
	return c.setByteAt(byteIdx, b), nil
}

// MustFlip is like Flip but panics on an out-of-range index, for call
// sites that have already validated i against the configuration's length.
func (c Configuration) MustFlip(i int) Configuration {
	out, err := c.Flip(i)
	if err != nil {
		panic(errors.Wrap(err, "MustFlip"))
	}
	return out
}

// Equal reports whether c and other hold the same spins and length. This
// is a two-word compare, the portable analogue of a 128-bit SIMD compare;
// Go's native struct equality (c == other) is equivalent and may be used
// directly wherever a Configuration is a map key.
func (c Configuration) Equal(other Configuration) bool {
	return c.lo == other.lo && c.hi == other.hi
}

// String renders the configuration as a string of '0'/'1' characters.
func (c Configuration) String() string {
	var sb strings.Builder
	sb.Grow(c.Len())
	for i := 0; i < c.Len(); i++ {
		v, _ := c.At(i)
		if v == Up {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Parse reads a configuration from its String representation.
func Parse(s string) (Configuration, error) {
	values := make([]int, len(s))
	for i, r := range s {
		switch r {
		case '0':
			values[i] = 0
		case '1':
			values[i] = 1
		default:
			return Configuration{}, qerr.New(qerr.ParseError,
				fmt.Sprintf("invalid character %q at index %d in configuration string", r, i))
		}
	}
	return New(values)
}

// FirstByte returns payload byte 0, the byte a Configuration is
// shard-routed by.
func (c Configuration) FirstByte() byte {
	return c.byteAt(0)
}

// Words returns the two packed machine words backing c, for callers (such
// as snapshot) that need a stable, round-trippable representation without
// going through the string encoding.
func (c Configuration) Words() (lo, hi uint64) {
	return c.lo, c.hi
}

// FromWords reconstructs a Configuration from the words returned by Words.
func FromWords(lo, hi uint64) Configuration {
	return Configuration{lo: lo, hi: hi}
}

// Hash returns a 64-bit hash of the configuration, combining the two
// packed words the way boost::hash_combine combines a seed with a second
// value.
func (c Configuration) Hash() uint64 {
	seed := c.lo
	// boost::hash_combine's mixing constant and shifts, translated to 64 bits.
	seed ^= c.hi + 0x9e3779b97f4a7c15 + (seed << 6) + (seed >> 2)
	return seed
}
