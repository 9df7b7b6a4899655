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
	"fmt"

	"github.com/lib-x/mdict/internal/ripemd128"
)

// blockKey derives the 16 byte cipher key from the checksum bytes of a
// block prefix.
func blockKey(prefix []byte) [ripemd128.Size]byte {
	var keyin [8]byte
	copy(keyin[:4], prefix[4:8])
	keyin[4] = 0x95
	keyin[5] = 0x36
	return ripemd128.Sum(keyin[:])
}

// mdxDecrypt returns the 8 byte prefix of block followed by its decrypted payload.
func mdxDecrypt(block []byte) ([]byte, error) {
	if len(block) < blockPrefixSize {
		return nil, fmt.Errorf("encrypted block is too short (%d bytes): %w", len(block), ErrCorrupted)
	}
	key := blockKey(block)
	out := make([]byte, len(block))
	copy(out, block[:blockPrefixSize])
	fastDecrypt(out[blockPrefixSize:], block[blockPrefixSize:], key[:])
	return out, nil
}

// fastDecrypt writes the plain text of src into dst.
func fastDecrypt(dst, src, key []byte) {
	prev := byte(0x36)
	for i, b := range src {
		t := b>>4 | b<<4
		t ^= prev ^ byte(i) ^ key[i%len(key)]
		prev = b
		dst[i] = t
	}
}
