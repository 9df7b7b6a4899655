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
)

const oaleHeader = "<Dictionary GeneratedByEngineVersion=\"2.0\" RequiredEngineVersion=\"2.0\" Format=\"Html\" KeyCaseSensitive=\"No\" StripKey=\"Yes\" Encrypted=\"2\" RegisterBy=\"EMail\" Description=\"Oxford Advanced Learner’s English-Chinese Dictionary Eighth edition<br/>\r\nHeadwords: 41969 <br/>\" Title=\"\" IsUTF16=\"UTF-8\" CreationDate=\"2018-2-18\" Compact=\"Yes\" Compat=\"Yes\" Left2Right=\"Yes\" DataSourceFormat=\"106\" StyleSheet=\"\"/>\r\n"

func TestParseHeader(t *testing.T) {
	header, err := parseHeader(oaleHeader, KindMdx, -1)
	require.NoError(t, err)

	assert.Equal(t, "2.0", header.GeneratedByEngineVersion)
	assert.Equal(t, 2.0, header.Version)
	assert.Equal(t, 8, header.NumWidth)
	assert.Equal(t, "Html", header.Format)
	assert.Equal(t, EncodingUtf8, header.TextEncoding)
	assert.Equal(t, EncryptKeyInfoEnc, header.EncryptType)
	assert.True(t, header.IsKeyInfoEncrypted())
	assert.False(t, header.IsRecordEncrypted())
	assert.False(t, header.IsKeyCaseSensitive())
	assert.True(t, header.IsStripKey())
	assert.Equal(t, "2018-2-18", header.CreationDate)
	assert.Contains(t, header.Description, "Headwords: 41969")
	assert.Equal(t, "UTF-8", header.Extra["IsUTF16"])
	assert.Empty(t, header.Styles)
}

func TestParseHeader_Defaults(t *testing.T) {
	header, err := parseHeader(`<Dictionary GeneratedByEngineVersion="1.2" Title="A &amp; B"/>`, KindMdx, -1)
	require.NoError(t, err)

	assert.Equal(t, 1.2, header.Version)
	assert.Equal(t, 4, header.NumWidth)
	assert.Equal(t, "No", header.KeyCaseSensitive)
	assert.Equal(t, "Yes", header.StripKey)
	assert.Equal(t, EncryptNoEnc, header.EncryptType)
	assert.Equal(t, "A & B", header.Title)
}

func TestParseHeader_Encoding(t *testing.T) {
	cases := map[string]int{
		"":       EncodingUtf8,
		"UTF-8":  EncodingUtf8,
		"GBK":    EncodingGb18030,
		"gb2312": EncodingGb18030,
		"Big5":   EncodingBig5,
		"UTF-16": EncodingUtf16,
		"utf16":  EncodingUtf16,
	}
	for encoding, expected := range cases {
		header, err := parseHeader(`<Dictionary GeneratedByEngineVersion="2.0" Encoding="`+encoding+`"/>`, KindMdx, -1)
		require.NoError(t, err)
		assert.Equal(t, expected, header.TextEncoding, "encoding %q", encoding)
	}

	header, err := parseHeader(`<Library_Data GeneratedByEngineVersion="2.0" Encoding="GBK"/>`, KindMdd, -1)
	require.NoError(t, err)
	assert.Equal(t, EncodingUtf16, header.TextEncoding)
}

func TestParseHeader_Encrypted(t *testing.T) {
	cases := map[string]int{
		"":    EncryptNoEnc,
		"No":  EncryptNoEnc,
		"Yes": EncryptRecordEnc,
		"1":   EncryptRecordEnc,
		"2":   EncryptKeyInfoEnc,
		"3":   EncryptRecordEnc | EncryptKeyInfoEnc,
	}
	for encrypted, expected := range cases {
		header, err := parseHeader(`<Dictionary GeneratedByEngineVersion="2.0" Encrypted="`+encrypted+`"/>`, KindMdx, -1)
		require.NoError(t, err)
		assert.Equal(t, expected, header.EncryptType, "Encrypted=%q", encrypted)
	}

	_, err := parseHeader(`<Dictionary GeneratedByEngineVersion="2.0" Encrypted="maybe"/>`, KindMdx, -1)
	assert.Error(t, err)

	header, err := parseHeader(`<Dictionary GeneratedByEngineVersion="2.0" Encrypted="2"/>`, KindMdx, EncryptNoEnc)
	require.NoError(t, err)
	assert.Equal(t, EncryptNoEnc, header.EncryptType)
}

func TestParseHeader_BadVersion(t *testing.T) {
	_, err := parseHeader(`<Dictionary Title="no version"/>`, KindMdx, -1)
	assert.Error(t, err)
}

func TestHeader_SubstituteStyleSheet(t *testing.T) {
	sheet := "1\r\n<b>\r\n</b>\r\n2\r\n<i>\r\n</i>"
	header, err := parseHeader(`<Dictionary GeneratedByEngineVersion="2.0" StyleSheet="`+sheet+`"/>`, KindMdx, -1)
	require.NoError(t, err)
	require.Len(t, header.Styles, 2)
	assert.Equal(t, Style{Begin: "<b>", End: "</b>"}, header.Styles["1"])

	out, err := header.SubstituteStyleSheet("`1`bold`2`italic")
	require.NoError(t, err)
	assert.Equal(t, "<b>bold</b><i>italic</i>", out)

	out, err = header.SubstituteStyleSheet("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	out, err = header.SubstituteStyleSheet("head`1`line \n")
	require.NoError(t, err)
	assert.Equal(t, "head<b>line</b>\r\n", out)

	_, err = header.SubstituteStyleSheet("`9`unknown")
	assert.Error(t, err)
}

func TestReadHeader_Builder(t *testing.T) {
	td := newTestDict(fruitEntries)
	td.styleSheet = "1\n<span>\n</span>"
	scanner, err := openScanner(td.build(t))
	require.NoError(t, err)
	defer scanner.close()

	header, size, err := readHeader(scanner, KindMdx, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(4+len(td.encodeHeader(t))+4), size)
	assert.Equal(t, "Test Dictionary", header.Title)
	assert.Equal(t, Style{Begin: "<span>", End: "</span>"}, header.Styles["1"])
	assert.NotZero(t, header.Checksum)
}
