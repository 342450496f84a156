package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// AppendFloat32s appends vs to buf as little-endian IEEE-754 values.
func AppendFloat32s(buf []byte, vs []float32) []byte {
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// AppendUint32s appends vs to buf as little-endian values.
func AppendUint32s(buf []byte, vs []uint32) []byte {
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	return buf
}

// Cursor reads fixed-width sections from a data section in order.
type Cursor struct {
	data []byte
	off  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

func (c *Cursor) take(n int, what string) ([]byte, error) {
	if n < 0 || c.off+n > len(c.data) {
		return nil, fmt.Errorf("data section too short for %s: need %d bytes at offset %d, have %d", what, n, c.off, len(c.data))
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) Float32s(n int, what string) ([]float32, error) {
	b, err := c.take(n*4, what)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

func (c *Cursor) Uint32s(n int, what string) ([]uint32, error) {
	b, err := c.take(n*4, what)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out, nil
}

// Done reports an error if unread bytes remain.
func (c *Cursor) Done() error {
	if c.off != len(c.data) {
		return fmt.Errorf("%d trailing bytes in data section", len(c.data)-c.off)
	}
	return nil
}
