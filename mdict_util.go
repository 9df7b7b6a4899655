//
// Copyright (C) 2023 Quan Chen <chenquan_act@163.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package mdict

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

func beBinToU8(data []byte) uint8 {
	return data[0]
}

func beBinToU16(data []byte) uint16 {
	return binary.BigEndian.Uint16(data)
}

func beBinToU32(data []byte) uint32 {
	return binary.BigEndian.Uint32(data)
}

func beBinToU64(data []byte) uint64 {
	return binary.BigEndian.Uint64(data)
}

// readNumber decodes a big-endian number of 1, 2, 4 or 8 bytes.
func readNumber(data []byte, width int) (int64, error) {
	if len(data) < width {
		return 0, fmt.Errorf("need %d bytes for a number, have %d: %w", width, len(data), ErrCorrupted)
	}
	switch width {
	case 1:
		return int64(beBinToU8(data)), nil
	case 2:
		return int64(beBinToU16(data)), nil
	case 4:
		return int64(beBinToU32(data)), nil
	case 8:
		v := beBinToU64(data)
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("number %d overflows int64: %w", v, ErrCorrupted)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("unsupported number width %d", width)
}

// bufferReader walks a decoded index buffer.
type bufferReader struct {
	buf []byte
	pos int
}

func (r *bufferReader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("index buffer ends at %d, need %d more bytes at %d: %w", len(r.buf), n, r.pos, ErrCorrupted)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *bufferReader) number(width int) (int64, error) {
	b, err := r.take(width)
	if err != nil {
		return 0, err
	}
	return readNumber(b, width)
}

// maxInflateHint bounds the output presized from a declared size, relative
// to the compressed length.
const maxInflateHint = 16

// zlibDecompress inflates a zlib stream. sizeHint presizes the output and
// is capped, so a corrupt declared size cannot force a huge allocation.
func zlibDecompress(data []byte, sizeHint int64) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer reader.Close()

	sizeHint = min(max(sizeHint, 0), int64(len(data))*maxInflateHint+4096)
	out := bytes.NewBuffer(make([]byte, 0, sizeHint))
	if _, err := io.Copy(out, reader); err != nil {
		return nil, fmt.Errorf("failed to inflate zlib data: %w", err)
	}
	return out.Bytes(), nil
}
