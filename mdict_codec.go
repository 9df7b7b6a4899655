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
	"encoding/binary"
	"fmt"

	"github.com/lib-x/mdict/internal/lzo1x"
)

// blockCompression returns the compression type of a prefixed block.
func blockCompression(block []byte) (uint32, error) {
	if len(block) < blockPrefixSize {
		return 0, fmt.Errorf("block is too short (%d bytes) to contain a prefix: %w", len(block), ErrCorrupted)
	}
	return binary.LittleEndian.Uint32(block[0:4]), nil
}

// decodeBlock turns a prefixed key or record block into its unpacked
// bytes. Encrypted blocks are deciphered before decompression, raw
// blocks are never encrypted. unpackSize is the declared unpacked size.
func decodeBlock(block []byte, unpackSize int64, encrypted bool) ([]byte, error) {
	compType, err := blockCompression(block)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch compType {
	case compressionNone:
		out = block[blockPrefixSize:]
	case compressionLzo, compressionZlib:
		if encrypted {
			if block, err = mdxDecrypt(block); err != nil {
				return nil, err
			}
		}
		payload := block[blockPrefixSize:]
		if compType == compressionLzo {
			out, err = lzo1x.Decompress(payload, int(unpackSize))
			if err != nil {
				return nil, fmt.Errorf("LZO decompression failed: %w", err)
			}
		} else {
			out, err = zlibDecompress(payload, unpackSize)
			if err != nil {
				return nil, fmt.Errorf("ZLIB decompression failed: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("compression type %x: %w", block[0:4], ErrUnknownCompression)
	}

	if int64(len(out)) != unpackSize {
		return nil, fmt.Errorf("unpacked block size mismatch: expected %d, got %d: %w", unpackSize, len(out), ErrCorrupted)
	}
	return out, nil
}
