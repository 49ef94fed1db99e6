package packet

import (
	"fmt"
)

type QueryType uint16

const (
	A   QueryType = 1
	NS  QueryType = 2
	SOA QueryType = 6
	ANY QueryType = 255
)

// Response codes the prober cares about.
const (
	RcodeNoError  = 0
	RcodeNXDomain = 3
)

const classIN = 1

// DnsHeader is the 12-byte DNS message header.
type DnsHeader struct {
	ID                   uint16
	RecursionDesired     bool
	TruncatedMessage     bool
	AuthoritativeAnswer  bool
	Opcode               uint8
	Response             bool
	ResCode              uint8
	CheckingDisabled     bool
	AuthedData           bool
	Z                    bool
	RecursionAvailable   bool
	Questions            uint16
	Answers              uint16
	AuthoritativeEntries uint16
	ResourceEntries      uint16
}

func (h *DnsHeader) Read(buffer *BytePacketBuffer) error {
	var err error
	h.ID, err = buffer.Readu16()
	if err != nil {
		return err
	}

	flags, err := buffer.Readu16()
	if err != nil {
		return err
	}
	a := uint8(flags >> 8)
	b := uint8(flags & 0xFF)

	h.RecursionDesired = (a & (1 << 0)) > 0
	h.TruncatedMessage = (a & (1 << 1)) > 0
	h.AuthoritativeAnswer = (a & (1 << 2)) > 0
	h.Opcode = (a >> 3) & 0x0F
	h.Response = (a & (1 << 7)) > 0

	h.ResCode = b & 0x0F
	h.CheckingDisabled = (b & (1 << 4)) > 0
	h.AuthedData = (b & (1 << 5)) > 0
	h.Z = (b & (1 << 6)) > 0
	h.RecursionAvailable = (b & (1 << 7)) > 0

	h.Questions, err = buffer.Readu16()
	if err != nil {
		return err
	}
	h.Answers, err = buffer.Readu16()
	if err != nil {
		return err
	}
	h.AuthoritativeEntries, err = buffer.Readu16()
	if err != nil {
		return err
	}
	h.ResourceEntries, err = buffer.Readu16()
	return err
}

func (h *DnsHeader) Write(buffer *BytePacketBuffer) error {
	if err := buffer.Writeu16(h.ID); err != nil {
		return err
	}

	var flags uint16
	if h.Response {
		flags |= 1 << 15
	}
	flags |= uint16(h.Opcode) << 11
	if h.AuthoritativeAnswer {
		flags |= 1 << 10
	}
	if h.TruncatedMessage {
		flags |= 1 << 9
	}
	if h.RecursionDesired {
		flags |= 1 << 8
	}
	if h.RecursionAvailable {
		flags |= 1 << 7
	}
	if h.Z {
		flags |= 1 << 6
	}
	if h.AuthedData {
		flags |= 1 << 5
	}
	if h.CheckingDisabled {
		flags |= 1 << 4
	}
	flags |= uint16(h.ResCode)

	if err := buffer.Writeu16(flags); err != nil {
		return err
	}
	if err := buffer.Writeu16(h.Questions); err != nil {
		return err
	}
	if err := buffer.Writeu16(h.Answers); err != nil {
		return err
	}
	if err := buffer.Writeu16(h.AuthoritativeEntries); err != nil {
		return err
	}
	return buffer.Writeu16(h.ResourceEntries)
}

// BuildQuery encodes a single-question query message.
func BuildQuery(id uint16, name string, qtype QueryType) ([]byte, error) {
	buffer := NewBytePacketBuffer()

	header := DnsHeader{ID: id, Questions: 1}
	if err := header.Write(buffer); err != nil {
		return nil, err
	}
	if err := buffer.WriteQName(name); err != nil {
		return nil, err
	}
	if err := buffer.Writeu16(uint16(qtype)); err != nil {
		return nil, err
	}
	if err := buffer.Writeu16(classIN); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// ParseHeader decodes the header of a raw DNS message.
func ParseHeader(raw []byte) (*DnsHeader, error) {
	if len(raw) < 12 {
		return nil, fmt.Errorf("message too short: %d bytes", len(raw))
	}
	buffer := NewBytePacketBuffer()
	copy(buffer.Buf[:], raw[:min(len(raw), MaxPacketSize)])

	header := &DnsHeader{}
	if err := header.Read(buffer); err != nil {
		return nil, err
	}
	return header, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
