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
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var utf16le = xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM)

// textDecoder turns key and record bytes into strings. One is built per
// open dictionary from the header's encoding.
type textDecoder struct {
	encoding int
	enc      encoding.Encoding
}

func newTextDecoder(textEncoding int) *textDecoder {
	var enc encoding.Encoding
	switch textEncoding {
	case EncodingUtf16:
		enc = utf16le
	case EncodingBig5:
		enc = traditionalchinese.Big5
	case EncodingGb18030:
		enc = simplifiedchinese.GB18030
	default:
		enc = xunicode.UTF8
	}
	return &textDecoder{encoding: textEncoding, enc: enc}
}

// width is the size of a key terminator in bytes.
func (td *textDecoder) width() int {
	if td.encoding == EncodingUtf16 {
		return 2
	}
	return 1
}

func (td *textDecoder) decode(data []byte) (string, error) {
	out, err := td.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(out), nil
}

// cutTerminator returns data up to the first key terminator.
func (td *textDecoder) cutTerminator(data []byte) []byte {
	w := td.width()
	for i := 0; i+w <= len(data); i += w {
		if data[i] == 0 && (w == 1 || data[i+1] == 0) {
			return data[:i]
		}
	}
	return data
}

func decodeLittleEndianUtf16(data []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode utf-16 text: %w", err)
	}
	return string(out), nil
}

var (
	mdxStripKey = regexp.MustCompile(`[().,\-&、 '/\\@_$!]`)
	// the trailing file extension is kept, other separators are removed
	mddStripKey = regexp.MustCompile(`([.][^.]*$)|[()., '/@]`)
)

// isLatinDiacritic reports whether r is in the combining diacritical marks block.
func isLatinDiacritic(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
}

// keyStripper normalizes keys before they are compared by edit distance.
type keyStripper struct {
	kind          Kind
	strip         bool
	caseSensitive bool
	diacritics    transform.Transformer
}

func newKeyStripper(kind Kind, strip, caseSensitive bool) *keyStripper {
	return &keyStripper{
		kind:          kind,
		strip:         strip,
		caseSensitive: caseSensitive,
		diacritics:    transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isLatinDiacritic)), norm.NFC),
	}
}

func (ks *keyStripper) stripPattern(key string) string {
	if ks.kind == KindMdd {
		return mddStripKey.ReplaceAllString(key, "${1}")
	}
	return mdxStripKey.ReplaceAllString(key, "")
}

// removeDiacritics drops latin combining marks, so "café" compares as "cafe".
func (ks *keyStripper) removeDiacritics(key string) string {
	out, _, err := transform.String(ks.diacritics, key)
	if err != nil {
		return key
	}
	return out
}

// Strip normalizes key for edit distance. The result is always lower case,
// caseSensitive only decides whether mdd keys are folded before their
// strip pattern runs.
func (ks *keyStripper) Strip(key string) string {
	if ks.strip {
		key = ks.stripPattern(key)
		key = ks.removeDiacritics(key)
	}
	if !ks.caseSensitive {
		key = strings.ToLower(key)
	}
	if ks.kind == KindMdd {
		key = ks.stripPattern(key)
		key = strings.ReplaceAll(key, "_", "!")
	}
	return strings.TrimSpace(strings.ToLower(key))
}
