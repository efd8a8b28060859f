// Package trace reads and writes recorded submission-timing traces.
//
// A trace is an ordered sequence of non-negative integers, one per
// transaction index. Two encodings exist:
//
//   - TEXT: UTF-8, one integer per line, newline-separated, no header.
//   - BINARY_LE / BINARY_BE: a 4-byte unsigned 32-bit record count,
//     followed by that many 4-byte unsigned 32-bit values, all in the
//     same byte order. No footer, no checksum.
package trace

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Format identifies a trace file encoding.
type Format string

const (
	FormatText     Format = "TEXT"
	FormatBinaryLE Format = "BINARY_LE"
	FormatBinaryBE Format = "BINARY_BE"
)

// ParseFormat maps a configured format string to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(FormatText):
		return FormatText, true
	case string(FormatBinaryLE):
		return FormatBinaryLE, true
	case string(FormatBinaryBE):
		return FormatBinaryBE, true
	default:
		return "", false
	}
}

// MalformedError reports a binary trace whose header record count
// disagrees with the bytes actually present.
type MalformedError struct {
	Path string
	Need int
	Have int
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed trace file %q: need %d bytes for declared record count, have %d", e.Path, e.Need, e.Have)
}

// Decode parses raw trace bytes in the given format. The path is used
// only for error reporting.
func Decode(data []byte, format Format, path string) ([]uint32, error) {
	switch format {
	case FormatBinaryLE:
		return decodeBinary(data, binary.LittleEndian, path)
	case FormatBinaryBE:
		return decodeBinary(data, binary.BigEndian, path)
	default:
		return decodeText(data)
	}
}

func decodeText(data []byte) ([]uint32, error) {
	lines := strings.Split(string(data), "\n")
	records := make([]uint32, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid trace record on line %d: %w", i+1, err)
		}
		records = append(records, uint32(v))
	}
	return records, nil
}

func decodeBinary(data []byte, order binary.ByteOrder, path string) ([]uint32, error) {
	if len(data) < 4 {
		return nil, &MalformedError{Path: path, Need: 4, Have: len(data)}
	}
	count := int(order.Uint32(data[:4]))
	need := 4 + 4*count
	if len(data) < need {
		return nil, &MalformedError{Path: path, Need: need, Have: len(data)}
	}
	// Trailing bytes beyond the declared records are ignored.
	records := make([]uint32, count)
	for i := 0; i < count; i++ {
		records[i] = order.Uint32(data[4+4*i:])
	}
	return records, nil
}

// Encode renders records in the given format.
func Encode(records []uint32, format Format) []byte {
	switch format {
	case FormatBinaryLE:
		return encodeBinary(records, binary.LittleEndian)
	case FormatBinaryBE:
		return encodeBinary(records, binary.BigEndian)
	default:
		var sb strings.Builder
		for _, r := range records {
			sb.WriteString(strconv.FormatUint(uint64(r), 10))
			sb.WriteByte('\n')
		}
		return []byte(sb.String())
	}
}

func encodeBinary(records []uint32, order binary.ByteOrder) []byte {
	buf := make([]byte, 4+4*len(records))
	order.PutUint32(buf[:4], uint32(len(records)))
	for i, r := range records {
		order.PutUint32(buf[4+4*i:], r)
	}
	return buf
}

// Read loads and decodes the trace file at path.
func Read(path string, format Format) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format, path)
}

// Write encodes records and writes them to path.
func Write(path string, format Format, records []uint32) error {
	return os.WriteFile(path, Encode(records, format), 0o644)
}
