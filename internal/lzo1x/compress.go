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

package lzo1x

import "encoding/binary"

const (
	dictBits  = 14
	dictSize  = 1 << dictBits
	chunkSize = 49152

	m2MaxLen    = 8
	m2MaxOffset = 0x0800
	m3MaxLen    = 33
	m3MaxOffset = 0x4000
	m4MaxLen    = 9
)

type encoder struct {
	in  []byte
	out []byte
}

// Compress encodes src as an LZO1X-1 stream that Decompress accepts.
// Empty input produces the bare end-of-stream marker.
func Compress(src []byte) []byte {
	e := &encoder{
		in:  src,
		out: make([]byte, 0, len(src)+len(src)/16+64+3),
	}

	var t, ip int
	l := len(src)
	for l > 20 {
		ll := l
		if ll > chunkSize {
			ll = chunkSize
		}
		if (t+ll)>>5 <= 0 {
			break
		}
		var dict [dictSize]uint32
		t = e.compressChunk(&dict, ip, ll, t)
		ip += ll
		l -= ll
	}
	t += l

	if t > 0 {
		ii := len(src) - t
		if len(e.out) == 0 && t <= 238 {
			e.out = append(e.out, byte(17+t))
		} else {
			e.literalHeader(t)
		}
		e.out = append(e.out, src[ii:ii+t]...)
	}

	return append(e.out, 17, 0, 0)
}

// literalHeader writes the run length of t literals. Runs of up to three
// bytes are folded into the low bits of the previous match instruction.
func (e *encoder) literalHeader(t int) {
	switch {
	case t <= 3:
		e.out[len(e.out)-2] |= byte(t)
	case t <= 18:
		e.out = append(e.out, byte(t-3))
	default:
		e.out = append(e.out, 0)
		e.lengthTail(t - 18)
	}
}

func (e *encoder) lengthTail(n int) {
	for n > 255 {
		n -= 255
		e.out = append(e.out, 0)
	}
	e.out = append(e.out, byte(n))
}

func dindex(v uint32) uint32 {
	return (v * 0x1824429d) >> (32 - dictBits) & (dictSize - 1)
}

// compressChunk encodes in[start:start+n] and returns the number of
// trailing bytes left as pending literals. ti carries the pending
// literals of the previous chunk.
func (e *encoder) compressChunk(dict *[dictSize]uint32, start, n, ti int) int {
	in := e.in
	ipEnd := start + n - 20
	ii := start
	ip := start
	if ti < 4 {
		ip += 4 - ti
	}
	ip += 1 + ((ip - ii) >> 5)

	for ip < ipEnd {
		dv := binary.LittleEndian.Uint32(in[ip:])
		di := dindex(dv)
		mPos := start + int(dict[di])
		dict[di] = uint32(ip - start)
		if dv != binary.LittleEndian.Uint32(in[mPos:]) {
			ip += 1 + ((ip - ii) >> 5)
			continue
		}

		ii -= ti
		ti = 0
		if t := ip - ii; t != 0 {
			e.literalHeader(t)
			e.out = append(e.out, in[ii:ip]...)
		}

		mLen := 4
		for ip+mLen < ipEnd && in[ip+mLen] == in[mPos+mLen] {
			mLen++
		}

		mOff := ip - mPos
		ip += mLen
		ii = ip

		switch {
		case mLen <= m2MaxLen && mOff <= m2MaxOffset:
			mOff--
			e.out = append(e.out, byte((mLen-1)<<5|(mOff&7)<<2), byte(mOff>>3))
		case mOff <= m3MaxOffset:
			mOff--
			if mLen <= m3MaxLen {
				e.out = append(e.out, byte(32|(mLen-2)))
			} else {
				e.out = append(e.out, 32)
				e.lengthTail(mLen - m3MaxLen)
			}
			e.out = append(e.out, byte(mOff<<2), byte(mOff>>6))
		default:
			mOff -= 0x4000
			if mLen <= m4MaxLen {
				e.out = append(e.out, byte(16|(mOff>>11)&8|(mLen-2)))
			} else {
				e.out = append(e.out, byte(16|(mOff>>11)&8))
				e.lengthTail(mLen - m4MaxLen)
			}
			e.out = append(e.out, byte(mOff<<2), byte(mOff>>6))
		}
	}

	return n - (ii - start - ti)
}
