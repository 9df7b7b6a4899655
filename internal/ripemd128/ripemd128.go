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

// Package ripemd128 implements the RIPEMD-128 digest used to derive
// the record block cipher key of encrypted dictionaries.
package ripemd128

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

const (
	// Size is the size of a RIPEMD-128 checksum in bytes.
	Size = 16
	// BlockSize is the block size of RIPEMD-128 in bytes.
	BlockSize = 64
)

// shift amounts, rounds 1-4 followed by the parallel rounds 1-4
var s = [8][16]uint{
	{11, 14, 15, 12, 5, 8, 7, 9, 11, 13, 14, 15, 6, 7, 9, 8},
	{7, 6, 8, 13, 11, 9, 7, 15, 7, 12, 15, 9, 11, 7, 13, 12},
	{11, 13, 6, 7, 14, 9, 13, 15, 14, 8, 13, 6, 5, 12, 7, 5},
	{11, 12, 14, 15, 14, 15, 9, 8, 9, 14, 5, 6, 8, 6, 5, 12},
	{8, 9, 9, 11, 13, 15, 15, 5, 7, 7, 8, 11, 14, 14, 12, 6},
	{9, 13, 15, 7, 12, 8, 9, 11, 7, 7, 12, 7, 6, 15, 13, 11},
	{9, 7, 15, 11, 8, 6, 6, 14, 12, 13, 5, 14, 13, 13, 7, 5},
	{15, 5, 8, 11, 14, 14, 6, 14, 6, 9, 12, 9, 12, 5, 15, 8},
}

// message word selection, same layout as s
var x = [8][16]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{7, 4, 13, 1, 10, 6, 15, 3, 12, 0, 9, 5, 2, 14, 11, 8},
	{3, 10, 14, 4, 9, 15, 8, 1, 2, 7, 0, 6, 13, 11, 5, 12},
	{1, 9, 11, 10, 0, 8, 12, 4, 13, 3, 7, 15, 14, 5, 6, 2},
	{5, 14, 7, 0, 9, 2, 11, 4, 13, 6, 15, 8, 1, 10, 3, 12},
	{6, 11, 3, 7, 0, 13, 5, 10, 14, 15, 8, 12, 4, 9, 1, 2},
	{15, 5, 1, 3, 7, 14, 6, 9, 11, 8, 12, 2, 10, 0, 4, 13},
	{8, 6, 4, 1, 3, 11, 15, 0, 5, 12, 2, 13, 9, 7, 10, 14},
}

var k = [8]uint32{
	0x00000000,
	0x5a827999,
	0x6ed9eba1,
	0x8f1bbcdc,
	0x50a28be6,
	0x5c4dd124,
	0x6d703ef3,
	0x00000000,
}

func f(j int, x, y, z uint32) uint32 {
	switch j {
	case 0:
		return x ^ y ^ z
	case 1:
		return x&y | ^x&z
	case 2:
		return (x | ^y) ^ z
	default:
		return x&z | y&^z
	}
}

type digest struct {
	h   [4]uint32
	buf [BlockSize]byte
	nx  int
	len uint64
}

// New returns a new hash.Hash computing the RIPEMD-128 checksum.
func New() hash.Hash {
	d := new(digest)
	d.Reset()
	return d
}

// Sum returns the RIPEMD-128 checksum of data.
func Sum(data []byte) [Size]byte {
	d := new(digest)
	d.Reset()
	_, _ = d.Write(data)
	var out [Size]byte
	copy(out[:], d.Sum(nil))
	return out
}

func (d *digest) Reset() {
	d.h = [4]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}
	d.nx = 0
	d.len = 0
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (int, error) {
	n := len(p)
	d.len += uint64(n)
	if d.nx > 0 {
		c := copy(d.buf[d.nx:], p)
		d.nx += c
		p = p[c:]
		if d.nx == BlockSize {
			d.block(d.buf[:])
			d.nx = 0
		}
	}
	for len(p) >= BlockSize {
		d.block(p[:BlockSize])
		p = p[BlockSize:]
	}
	if len(p) > 0 {
		d.nx = copy(d.buf[:], p)
	}
	return n, nil
}

func (d *digest) Sum(in []byte) []byte {
	// work on a copy so the caller can keep writing
	c := *d
	bitLen := c.len << 3

	var pad [BlockSize + 8]byte
	pad[0] = 0x80
	padLen := 56 - int(c.len%BlockSize)
	if padLen <= 0 {
		padLen += BlockSize
	}
	binary.LittleEndian.PutUint64(pad[padLen:], bitLen)
	_, _ = c.Write(pad[:padLen+8])

	var out [Size]byte
	for i, v := range c.h {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return append(in, out[:]...)
}

func (d *digest) block(p []byte) {
	var w [16]uint32
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(p[i*4:])
	}

	aa, bb, cc, dd := d.h[0], d.h[1], d.h[2], d.h[3]
	aaa, bbb, ccc, ddd := aa, bb, cc, dd

	for t := 0; t < 64; t++ {
		r := t / 16
		aa = bits.RotateLeft32(aa+f(r, bb, cc, dd)+w[x[r][t%16]]+k[r], int(s[r][t%16]))
		aa, bb, cc, dd = dd, aa, bb, cc
	}
	for t := 64; t < 128; t++ {
		r := t / 16
		rr := (63 - t%64) / 16
		aaa = bits.RotateLeft32(aaa+f(rr, bbb, ccc, ddd)+w[x[r][t%16]]+k[r], int(s[r][t%16]))
		aaa, bbb, ccc, ddd = ddd, aaa, bbb, ccc
	}

	ddd += d.h[1] + cc
	d.h[1] = d.h[2] + dd + aaa
	d.h[2] = d.h[3] + aa + bbb
	d.h[3] = d.h[0] + bb + ccc
	d.h[0] = ddd
}
