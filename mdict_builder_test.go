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
	"hash/adler32"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/lib-x/mdict/internal/lzo1x"
)

type testEntry struct {
	key   string
	value string
}

// testDict describes a dictionary file written by build.
type testDict struct {
	kind       Kind
	version    string
	encoding   string
	encrypted  string
	styleSheet string

	keyComp     uint32
	recordComp  uint32
	keyInfoZlib bool
	// encryptRecords enciphers compressed record blocks.
	encryptRecords bool

	keysPerBlock    int
	recordsPerBlock int

	// deltas applied to declared header values
	recordEntryDelta int64
	keyTotalDelta    int64

	entries []testEntry
}

var fruitEntries = []testEntry{
	{"apple", "<b>apple</b> a round fruit"},
	{"apricot", "<b>apricot</b> an orange fruit"},
	{"banana", "<b>banana</b> a long yellow fruit"},
	{"blueberry", "<b>blueberry</b> a small blue berry"},
	{"grape", "<b>grape</b> a fruit growing in clusters"},
	{"lemon", "<b>lemon</b> a sour yellow fruit"},
	{"mango", "<b>mango</b> a tropical fruit"},
}

func newTestDict(entries []testEntry) *testDict {
	return &testDict{
		kind:            KindMdx,
		version:         "2.0",
		encoding:        "UTF-8",
		encrypted:       "No",
		keyComp:         compressionZlib,
		recordComp:      compressionZlib,
		keyInfoZlib:     true,
		keysPerBlock:    2,
		recordsPerBlock: 3,
		entries:         entries,
	}
}

func (td *testDict) isV2() bool {
	v, _ := strconv.ParseFloat(td.version, 64)
	return v >= 2.0
}

func (td *testDict) numWidth() int {
	if td.isV2() {
		return 8
	}
	return 4
}

func (td *testDict) utf16() bool {
	return td.kind == KindMdd || td.encoding == "UTF-16"
}

func (td *testDict) terminator() []byte {
	if td.utf16() {
		return []byte{0, 0}
	}
	return []byte{0}
}

func (td *testDict) encodeText(t *testing.T, s string) []byte {
	if !td.utf16() {
		return []byte(s)
	}
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

// recordBytes encodes a definition in the dictionary's encoding. Resources
// are stored as they are.
func (td *testDict) recordBytes(t *testing.T, value string) []byte {
	if td.kind == KindMdd {
		return []byte(value)
	}
	return td.encodeText(t, value)
}

func putNumber(buf *bytes.Buffer, v int64, width int) {
	switch width {
	case 1:
		buf.WriteByte(byte(v))
	case 2:
		_ = binary.Write(buf, binary.BigEndian, uint16(v))
	case 4:
		_ = binary.Write(buf, binary.BigEndian, uint32(v))
	default:
		_ = binary.Write(buf, binary.BigEndian, uint64(v))
	}
}

func zlibCompress(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// packTestBlock prefixes data with its compression type and checksum and
// compresses it. Unknown types store data as is.
func packTestBlock(t *testing.T, comp uint32, data []byte, encrypt bool) []byte {
	var payload []byte
	switch comp {
	case compressionLzo:
		payload = lzo1x.Compress(data)
	case compressionZlib:
		payload = zlibCompress(t, data)
	default:
		payload = append([]byte(nil), data...)
	}
	block := make([]byte, blockPrefixSize, blockPrefixSize+len(payload))
	binary.LittleEndian.PutUint32(block[0:4], comp)
	binary.BigEndian.PutUint32(block[4:8], adler32.Checksum(data))
	block = append(block, payload...)
	if encrypt && comp != compressionNone {
		encryptBlock(block)
	}
	return block
}

// encryptBlock enciphers the payload of a prefixed block in place.
func encryptBlock(block []byte) {
	key := blockKey(block)
	prev := byte(0x36)
	payload := block[blockPrefixSize:]
	for i, p := range payload {
		t := p ^ prev ^ byte(i) ^ key[i%len(key)]
		c := t>>4 | t<<4
		payload[i] = c
		prev = c
	}
}

func (td *testDict) writeInfoKey(t *testing.T, buf *bytes.Buffer, key string) {
	text := td.encodeText(t, key)
	term := td.terminator()
	putNumber(buf, int64(len(text)/len(term)), td.numWidth()/4)
	buf.Write(text)
	if td.isV2() {
		buf.Write(term)
	}
}

func (td *testDict) headerText() string {
	root := "Dictionary"
	if td.kind == KindMdd {
		root = "Library_Data"
	}
	return fmt.Sprintf(`<%s GeneratedByEngineVersion="%s" RequiredEngineVersion="%s" Format="Html" KeyCaseSensitive="No" StripKey="Yes" Encrypted="%s" RegisterBy="EMail" Encoding="%s" Title="Test Dictionary" Description="Built for &lt;tests&gt;" CreationDate="2024-01-02" Compact="Yes" Compat="Yes" Left2Right="Yes" DataSourceFormat="106" StyleSheet="%s"/>`,
		root, td.version, td.version, td.encrypted, td.encoding, html.EscapeString(td.styleSheet)) + "\r\n\x00"
}

// build writes the dictionary into a temporary directory and returns its path.
func (td *testDict) build(t *testing.T) string {
	t.Helper()
	width := td.numWidth()

	// record section
	offsets := make([]int64, len(td.entries))
	var recordInfo, recordData bytes.Buffer
	var recordBlockNum, unpackTotal int64
	for start := 0; start < len(td.entries); start += td.recordsPerBlock {
		end := min(start+td.recordsPerBlock, len(td.entries))
		var raw bytes.Buffer
		for i := start; i < end; i++ {
			offsets[i] = unpackTotal + int64(raw.Len())
			raw.Write(td.recordBytes(t, td.entries[i].value))
		}
		unpackTotal += int64(raw.Len())
		packed := packTestBlock(t, td.recordComp, raw.Bytes(), td.encryptRecords)
		putNumber(&recordInfo, int64(len(packed)), width)
		putNumber(&recordInfo, int64(raw.Len()), width)
		recordData.Write(packed)
		recordBlockNum++
	}

	// key section
	var keyInfo, keyData bytes.Buffer
	var keyBlockNum int64
	for start := 0; start < len(td.entries); start += td.keysPerBlock {
		end := min(start+td.keysPerBlock, len(td.entries))
		var raw bytes.Buffer
		for i := start; i < end; i++ {
			putNumber(&raw, offsets[i], width)
			raw.Write(td.encodeText(t, td.entries[i].key))
			raw.Write(td.terminator())
		}
		packed := packTestBlock(t, td.keyComp, raw.Bytes(), false)
		keyData.Write(packed)

		putNumber(&keyInfo, int64(end-start), width)
		td.writeInfoKey(t, &keyInfo, td.entries[start].key)
		td.writeInfoKey(t, &keyInfo, td.entries[end-1].key)
		putNumber(&keyInfo, int64(len(packed)), width)
		putNumber(&keyInfo, int64(raw.Len()), width)
		keyBlockNum++
	}

	keyInfoPayload := keyInfo.Bytes()
	if td.isV2() && td.keyInfoZlib {
		payload := make([]byte, blockPrefixSize)
		copy(payload, keyInfoZlibTag)
		binary.BigEndian.PutUint32(payload[4:8], adler32.Checksum(keyInfo.Bytes()))
		keyInfoPayload = append(payload, zlibCompress(t, keyInfo.Bytes())...)
	}

	var out bytes.Buffer

	headerBytes := td.encodeHeader(t)
	putNumber(&out, int64(len(headerBytes)), 4)
	out.Write(headerBytes)
	_ = binary.Write(&out, binary.LittleEndian, adler32.Checksum(headerBytes))

	var keyHeader bytes.Buffer
	putNumber(&keyHeader, keyBlockNum, width)
	putNumber(&keyHeader, int64(len(td.entries)), width)
	if td.isV2() {
		putNumber(&keyHeader, int64(keyInfo.Len()), width)
	}
	putNumber(&keyHeader, int64(len(keyInfoPayload)), width)
	putNumber(&keyHeader, int64(keyData.Len())+td.keyTotalDelta, width)
	out.Write(keyHeader.Bytes())
	if td.isV2() {
		putNumber(&out, int64(adler32.Checksum(keyHeader.Bytes())), 4)
	}
	out.Write(keyInfoPayload)
	out.Write(keyData.Bytes())

	putNumber(&out, recordBlockNum, width)
	putNumber(&out, int64(len(td.entries))+td.recordEntryDelta, width)
	putNumber(&out, int64(recordInfo.Len()), width)
	putNumber(&out, int64(recordData.Len()), width)
	out.Write(recordInfo.Bytes())
	out.Write(recordData.Bytes())

	path := filepath.Join(t.TempDir(), "test."+td.kind.String())
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
	return path
}

func (td *testDict) encodeHeader(t *testing.T) []byte {
	out, err := utf16le.NewEncoder().Bytes([]byte(td.headerText()))
	require.NoError(t, err)
	return out
}

// open builds the dictionary and opens it with options.
func (td *testDict) open(t *testing.T, options *Options) *Dictionary {
	t.Helper()
	dict, err := Open(td.build(t), options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dict.Close() })
	return dict
}
