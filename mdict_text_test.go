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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

func TestTextDecoder(t *testing.T) {
	utf16, err := utf16le.NewEncoder().Bytes([]byte("詞典"))
	require.NoError(t, err)
	gbk, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte("词典"))
	require.NoError(t, err)
	big5, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte("詞典"))
	require.NoError(t, err)

	cases := []struct {
		encoding int
		data     []byte
		expected string
	}{
		{EncodingUtf8, []byte("word"), "word"},
		{EncodingUtf16, utf16, "詞典"},
		{EncodingGb18030, gbk, "词典"},
		{EncodingBig5, big5, "詞典"},
	}
	for _, c := range cases {
		out, err := newTextDecoder(c.encoding).decode(c.data)
		require.NoError(t, err)
		assert.Equal(t, c.expected, out)
	}
}

func TestTextDecoder_CutTerminator(t *testing.T) {
	td := newTextDecoder(EncodingUtf8)
	assert.Equal(t, []byte("abc"), td.cutTerminator([]byte("abc\x00def")))
	assert.Equal(t, []byte("abc"), td.cutTerminator([]byte("abc")))

	td = newTextDecoder(EncodingUtf16)
	assert.Equal(t, 2, td.width())
	// the zero high byte of 'a' must not end the key
	assert.Equal(t, []byte{'a', 0, 'b', 0}, td.cutTerminator([]byte{'a', 0, 'b', 0, 0, 0, 'c', 0}))
}

func TestKeyStripper_Mdx(t *testing.T) {
	ks := newKeyStripper(KindMdx, true, false)
	assert.Equal(t, "rockandroll", ks.Strip("Rock-and-Roll"))
	assert.Equal(t, "cafe", ks.Strip("Café"))
	assert.Equal(t, "naive", ks.Strip("naïve"))
	assert.Equal(t, "oclock", ks.Strip("o'clock "))
	assert.Equal(t, "abc", ks.Strip("(a.b,c)"))

	ks = newKeyStripper(KindMdx, false, false)
	assert.Equal(t, "rock-and-roll", ks.Strip("Rock-and-Roll"))
	assert.Equal(t, "café", ks.Strip("Café"))

	// the final lower-casing applies even to case sensitive keys
	ks = newKeyStripper(KindMdx, false, true)
	assert.Equal(t, "abc", ks.Strip("  ABC "))
}

func TestKeyStripper_Mdd(t *testing.T) {
	ks := newKeyStripper(KindMdd, true, false)
	assert.Equal(t, `\img\logo.png`, ks.Strip(`\img\Logo.png`))
	assert.Equal(t, `\imgmylogo.png`, ks.Strip(`\img/my logo.png`))
	assert.Equal(t, `\sound\a!b.mp3`, ks.Strip(`\sound\a_b.mp3`))
	assert.Equal(t, `\v12.css`, ks.Strip(`\v1.2.css`))
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b     string
		expected int
	}{
		{"kitten", "sitting", 3},
		{"apple", "aple", 1},
		{"apple", "apple", 0},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
		{"词典", "字典", 1},
		{"词典", "词典学", 1},
		{"", "apple", DistanceSentinel},
		{"apple", "", DistanceSentinel},
		{"", "", DistanceSentinel},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, EditDistance(c.a, c.b), "%q vs %q", c.a, c.b)
		assert.Equal(t, c.expected, EditDistance(c.b, c.a), "%q vs %q", c.b, c.a)
	}
}
