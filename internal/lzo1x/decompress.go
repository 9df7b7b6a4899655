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

// Package lzo1x implements the LZO1X block format used by MDict key and
// record blocks.
package lzo1x

import "errors"

// BlockSize is the growth step of the decompressor output arena.
const BlockSize = 4096

// maxHintRatio bounds how far a size hint may presize the arena beyond
// the input length. Longer outputs grow the arena on demand.
const maxHintRatio = 16

var (
	// ErrInputOverrun is returned when the stream ends in the middle of an instruction.
	ErrInputOverrun = errors.New("lzo1x: input overrun")
	// ErrLookBehindOverrun is returned when a match points before the start of the output.
	ErrLookBehindOverrun = errors.New("lzo1x: lookbehind overrun")
)

type decoder struct {
	in  []byte
	ip  int
	out []byte
	op  int
}

// Decompress decodes an LZO1X stream. sizeHint, when positive, is used to
// size the output arena up front; the arena still grows when the hint is short.
// Hints far beyond the input length are capped.
func Decompress(src []byte, sizeHint int) ([]byte, error) {
	n := sizeHint
	if n <= 0 {
		n = len(src)
	}
	n = min(n, len(src)*maxHintRatio+BlockSize)
	d := &decoder{in: src, out: make([]byte, alignBlock(n))}
	// bytes after the end-of-stream marker are ignored
	if err := d.run(); err != nil {
		return nil, err
	}
	return d.out[:d.op], nil
}

func alignBlock(n int) int {
	if n <= 0 {
		return BlockSize
	}
	return n + (BlockSize-n%BlockSize)%BlockSize
}

// grow makes room for n more output bytes, doubling the arena in
// BlockSize-aligned steps.
func (d *decoder) grow(n int) {
	need := d.op + n
	if need <= len(d.out) {
		return
	}
	size := len(d.out) * 2
	if size < need {
		size = need
	}
	buf := make([]byte, alignBlock(size))
	copy(buf, d.out[:d.op])
	d.out = buf
}

func (d *decoder) next() (int, error) {
	if d.ip >= len(d.in) {
		return 0, ErrInputOverrun
	}
	b := d.in[d.ip]
	d.ip++
	return int(b), nil
}

// extend reads a zero-run length extension and returns base plus the run.
func (d *decoder) extend(base int) (int, error) {
	t := 0
	for {
		if d.ip >= len(d.in) {
			return 0, ErrInputOverrun
		}
		if d.in[d.ip] != 0 {
			break
		}
		t += 255
		d.ip++
	}
	b, err := d.next()
	if err != nil {
		return 0, err
	}
	return t + base + b, nil
}

func (d *decoder) copyLiteral(t int) error {
	if t <= 0 {
		return nil
	}
	if d.ip+t > len(d.in) {
		return ErrInputOverrun
	}
	d.grow(t)
	copy(d.out[d.op:], d.in[d.ip:d.ip+t])
	d.op += t
	d.ip += t
	return nil
}

// copyMatch copies n bytes starting at mPos. Overlapping copies repeat
// the already written pattern, so the copy goes byte by byte.
func (d *decoder) copyMatch(mPos, n int) error {
	if mPos < 0 || mPos >= d.op {
		return ErrLookBehindOverrun
	}
	d.grow(n)
	for i := 0; i < n; i++ {
		d.out[d.op] = d.out[mPos]
		d.op++
		mPos++
	}
	return nil
}

// trailing returns the literal count packed in the low bits of the
// second to last consumed byte.
func (d *decoder) trailing() int {
	return int(d.in[d.ip-2] & 3)
}

func (d *decoder) run() error {
	if len(d.in) == 0 {
		return ErrInputOverrun
	}

	var t int
	var err error
	firstLiteral := false

	if d.in[0] > 17 {
		d.ip++
		t = int(d.in[0]) - 17
		if t < 4 {
			if err = d.copyLiteral(t); err != nil {
				return err
			}
			if t, err = d.next(); err != nil {
				return err
			}
			done, err := d.match(t)
			if err != nil || done {
				return err
			}
		} else {
			if err = d.copyLiteral(t); err != nil {
				return err
			}
			firstLiteral = true
		}
	}

	for {
		if !firstLiteral {
			if t, err = d.next(); err != nil {
				return err
			}
			if t >= 16 {
				done, err := d.match(t)
				if err != nil || done {
					return err
				}
				continue
			}
			if t == 0 {
				if t, err = d.extend(15); err != nil {
					return err
				}
			}
			if err = d.copyLiteral(t + 3); err != nil {
				return err
			}
		}
		firstLiteral = false

		if t, err = d.next(); err != nil {
			return err
		}
		if t < 16 {
			b, err := d.next()
			if err != nil {
				return err
			}
			mPos := d.op - (1 + 0x0800) - (t >> 2) - (b << 2)
			if err = d.copyMatch(mPos, 3); err != nil {
				return err
			}
			t = d.trailing()
			if t == 0 {
				continue
			}
			if err = d.copyLiteral(t); err != nil {
				return err
			}
			if t, err = d.next(); err != nil {
				return err
			}
		}

		done, err := d.match(t)
		if err != nil || done {
			return err
		}
	}
}

// match runs the match loop starting with control byte t. It returns
// done when the end-of-stream marker has been read, and returns without
// done when a match is followed by a regular literal run.
func (d *decoder) match(t int) (done bool, err error) {
	for {
		var mPos, n int
		switch {
		case t >= 64:
			b, err := d.next()
			if err != nil {
				return false, err
			}
			mPos = d.op - 1 - ((t >> 2) & 7) - (b << 3)
			n = (t >> 5) - 1 + 2
		case t >= 32:
			t &= 31
			if t == 0 {
				if t, err = d.extend(31); err != nil {
					return false, err
				}
			}
			if d.ip+2 > len(d.in) {
				return false, ErrInputOverrun
			}
			mPos = d.op - 1 - (int(d.in[d.ip]) >> 2) - (int(d.in[d.ip+1]) << 6)
			d.ip += 2
			n = t + 2
		case t >= 16:
			mPos = d.op - ((t & 8) << 11)
			t &= 7
			if t == 0 {
				if t, err = d.extend(7); err != nil {
					return false, err
				}
			}
			if d.ip+2 > len(d.in) {
				return false, ErrInputOverrun
			}
			mPos -= (int(d.in[d.ip]) >> 2) + (int(d.in[d.ip+1]) << 6)
			d.ip += 2
			if mPos == d.op {
				return true, nil
			}
			mPos -= 0x4000
			n = t + 2
		default:
			b, err := d.next()
			if err != nil {
				return false, err
			}
			mPos = d.op - 1 - (t >> 2) - (b << 2)
			n = 2
		}

		if err = d.copyMatch(mPos, n); err != nil {
			return false, err
		}

		t = d.trailing()
		if t == 0 {
			return false, nil
		}
		if err = d.copyLiteral(t); err != nil {
			return false, err
		}
		if t, err = d.next(); err != nil {
			return false, err
		}
	}
}
