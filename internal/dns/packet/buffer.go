// Package packet carries the minimal DNS wire encoding the connectivity
// prober needs: query construction and response header parsing.
package packet

import (
	"fmt"
	"strings"
)

const MaxPacketSize = 512

// BytePacketBuffer is a fixed DNS message buffer with a read/write cursor.
type BytePacketBuffer struct {
	Buf [MaxPacketSize]byte
	Pos int
}

func NewBytePacketBuffer() *BytePacketBuffer {
	return &BytePacketBuffer{}
}

func (b *BytePacketBuffer) Read() (uint8, error) {
	if b.Pos >= MaxPacketSize {
		return 0, fmt.Errorf("end of buffer at %d", b.Pos)
	}
	v := b.Buf[b.Pos]
	b.Pos++
	return v, nil
}

func (b *BytePacketBuffer) Readu16() (uint16, error) {
	hi, err := b.Read()
	if err != nil {
		return 0, err
	}
	lo, err := b.Read()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (b *BytePacketBuffer) Write(v uint8) error {
	if b.Pos >= MaxPacketSize {
		return fmt.Errorf("end of buffer at %d", b.Pos)
	}
	b.Buf[b.Pos] = v
	b.Pos++
	return nil
}

func (b *BytePacketBuffer) Writeu16(v uint16) error {
	if err := b.Write(uint8(v >> 8)); err != nil {
		return err
	}
	return b.Write(uint8(v & 0xFF))
}

// WriteQName writes a dotted name as length-prefixed labels.
func (b *BytePacketBuffer) WriteQName(name string) error {
	for _, label := range strings.Split(strings.TrimSuffix(name, "."), ".") {
		if label == "" {
			continue
		}
		if len(label) > 63 {
			return fmt.Errorf("label %q exceeds 63 characters", label)
		}
		if err := b.Write(uint8(len(label))); err != nil {
			return err
		}
		for i := 0; i < len(label); i++ {
			if err := b.Write(label[i]); err != nil {
				return err
			}
		}
	}
	return b.Write(0)
}

// Bytes returns the written portion of the buffer.
func (b *BytePacketBuffer) Bytes() []byte {
	return b.Buf[:b.Pos]
}
