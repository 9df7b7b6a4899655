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
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Header holds the attributes of the dictionary's leading XML header and
// the values derived from them. It is immutable once the dictionary is open.
type Header struct {
	GeneratedByEngineVersion string
	RequiredEngineVersion    string
	Format                   string
	KeyCaseSensitive         string
	StripKey                 string
	Encrypted                string
	RegisterBy               string
	Description              string
	Title                    string
	Encoding                 string
	CreationDate             string
	Compact                  string
	Compat                   string
	Left2Right               string
	DataSourceFormat         string
	StyleSheet               string

	// Extra holds attributes without a named field.
	Extra map[string]string

	Version      float64
	NumWidth     int
	TextEncoding int
	EncryptType  int
	Styles       map[string]Style

	// Checksum is read from the file but not verified.
	Checksum uint32
}

// Style is one entry of the header's style sheet.
type Style struct {
	Begin string
	End   string
}

var (
	headerAttrRegex = regexp.MustCompile(`(\w+)="((?s:.*?))"`)
	styleTagRegex   = regexp.MustCompile("`(\\d+)`")
)

// readHeader reads the header section at the start of the file.
func readHeader(scanner *fileScanner, kind Kind, encryptOverride int) (*Header, int64, error) {
	sizeBytes, err := scanner.readRange(0, 4)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header length: %w", err)
	}
	size := int64(beBinToU32(sizeBytes))

	headerBytes, err := scanner.readRange(4, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header info bytes: %w", err)
	}
	checksumBytes, err := scanner.readRange(4+size, 4)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header checksum: %w", err)
	}

	text, err := decodeLittleEndianUtf16(headerBytes)
	if err != nil {
		return nil, 0, err
	}
	text = strings.TrimRight(text, "\x00")

	header, err := parseHeader(text, kind, encryptOverride)
	if err != nil {
		return nil, 0, err
	}
	header.Checksum = beBinToU32(checksumBytes)

	// 4 bytes length + header bytes + 4 bytes checksum
	return header, 4 + size + 4, nil
}

// parseHeader parses the attribute text and derives version, number
// width, text encoding and encryption type.
func parseHeader(text string, kind Kind, encryptOverride int) (*Header, error) {
	header := &Header{
		KeyCaseSensitive: "No",
		StripKey:         "Yes",
		Extra:            make(map[string]string),
	}
	for _, match := range headerAttrRegex.FindAllStringSubmatch(text, -1) {
		header.set(match[1], html.UnescapeString(match[2]))
	}

	version, err := strconv.ParseFloat(strings.TrimSpace(header.GeneratedByEngineVersion), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid engine version '%s' in header: %w", header.GeneratedByEngineVersion, err)
	}
	header.Version = version
	if version >= 2.0 {
		header.NumWidth = 8
	} else {
		header.NumWidth = 4
	}

	switch strings.ToLower(header.Encoding) {
	case "gbk", "gb2312":
		header.TextEncoding = EncodingGb18030
	case "big5":
		header.TextEncoding = EncodingBig5
	case "utf16", "utf-16":
		header.TextEncoding = EncodingUtf16
	default:
		header.TextEncoding = EncodingUtf8
	}
	if kind == KindMdd {
		header.TextEncoding = EncodingUtf16
	}

	switch header.Encrypted {
	case "", "No":
		header.EncryptType = EncryptNoEnc
	case "Yes":
		header.EncryptType = EncryptRecordEnc
	default:
		encryptType, err := strconv.Atoi(strings.TrimSpace(header.Encrypted))
		if err != nil {
			return nil, fmt.Errorf("invalid Encrypted attribute '%s' in header: %w", header.Encrypted, err)
		}
		header.EncryptType = encryptType
	}
	if encryptOverride != -1 {
		header.EncryptType = encryptOverride
	}

	header.Styles = parseStyleSheet(header.StyleSheet)
	return header, nil
}

func (h *Header) set(name, value string) {
	switch name {
	case "GeneratedByEngineVersion":
		h.GeneratedByEngineVersion = value
	case "RequiredEngineVersion":
		h.RequiredEngineVersion = value
	case "Format":
		h.Format = value
	case "KeyCaseSensitive":
		h.KeyCaseSensitive = value
	case "StripKey":
		h.StripKey = value
	case "Encrypted":
		h.Encrypted = value
	case "RegisterBy":
		h.RegisterBy = value
	case "Description":
		h.Description = value
	case "Title":
		h.Title = value
	case "Encoding":
		h.Encoding = value
	case "CreationDate":
		h.CreationDate = value
	case "Compact":
		h.Compact = value
	case "Compat":
		h.Compat = value
	case "Left2Right":
		h.Left2Right = value
	case "DataSourceFormat":
		h.DataSourceFormat = value
	case "StyleSheet":
		h.StyleSheet = value
	default:
		h.Extra[name] = value
	}
}

func isTrue(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "yes" || v == "true"
}

// IsKeyCaseSensitive reports the KeyCaseSensitive attribute.
func (h *Header) IsKeyCaseSensitive() bool { return isTrue(h.KeyCaseSensitive) }

// IsStripKey reports the StripKey attribute.
func (h *Header) IsStripKey() bool { return isTrue(h.StripKey) }

// IsRecordEncrypted reports whether record blocks must be deciphered.
func (h *Header) IsRecordEncrypted() bool { return h.EncryptType&EncryptRecordEnc != 0 }

// IsKeyInfoEncrypted reports whether the key info section is encrypted.
func (h *Header) IsKeyInfoEncrypted() bool { return h.EncryptType&EncryptKeyInfoEnc != 0 }

// parseStyleSheet splits the StyleSheet attribute into (number, begin, end) triples.
func parseStyleSheet(sheet string) map[string]Style {
	styles := make(map[string]Style)
	if sheet == "" {
		return styles
	}
	sheet = strings.ReplaceAll(sheet, "\r\n", "\n")
	lines := strings.Split(strings.ReplaceAll(sheet, "\r", "\n"), "\n")
	for i := 0; i+2 < len(lines); i += 3 {
		styles[strings.TrimSpace(lines[i])] = Style{Begin: lines[i+1], End: lines[i+2]}
	}
	return styles
}

// SubstituteStyleSheet replaces the `n` style markers of a definition
// with the begin and end text of style n.
func (h *Header) SubstituteStyleSheet(text string) (string, error) {
	tags := styleTagRegex.FindAllStringSubmatchIndex(text, -1)
	if len(tags) == 0 {
		return text, nil
	}

	var sb strings.Builder
	sb.WriteString(text[:tags[0][0]])
	for i, tag := range tags {
		number := text[tag[2]:tag[3]]
		style, ok := h.Styles[number]
		if !ok {
			return "", fmt.Errorf("style `%s` is not defined in the style sheet", number)
		}
		end := len(text)
		if i+1 < len(tags) {
			end = tags[i+1][0]
		}
		part := text[tag[1]:end]
		if strings.HasSuffix(part, "\n") {
			sb.WriteString(style.Begin + strings.TrimRightFunc(part, isSpace) + style.End + "\r\n")
		} else {
			sb.WriteString(style.Begin + part + style.End)
		}
	}
	return sb.String(), nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
