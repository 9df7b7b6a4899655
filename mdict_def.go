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

import "errors"

// Kind selects the word stripping rules and the output mode of a dictionary.
type Kind int

const (
	// KindMdd is a resource bundle, records are returned as binary payloads.
	KindMdd Kind = 1
	// KindMdx is a definition dictionary, records are returned as text.
	KindMdx Kind = 2
)

func (k Kind) String() string {
	if k == KindMdd {
		return "mdd"
	}
	return "mdx"
}

const (
	// EncryptNoEnc indicates no encryption.
	EncryptNoEnc = 0
	// EncryptRecordEnc indicates record block encryption.
	EncryptRecordEnc = 1
	// EncryptKeyInfoEnc indicates key info block encryption.
	EncryptKeyInfoEnc = 2

	// EncodingUtf8 represents UTF-8 encoding.
	EncodingUtf8 = 0
	// EncodingUtf16 represents UTF-16LE encoding.
	EncodingUtf16 = 1
	// EncodingBig5 represents Big5 encoding.
	EncodingBig5 = 2
	// EncodingGb18030 represents GB18030 encoding, also used for GBK and GB2312.
	EncodingGb18030 = 3
)

const (
	compressionNone = 0
	compressionLzo  = 1
	compressionZlib = 2

	// block prefix: 4 bytes compression type + 4 bytes checksum
	blockPrefixSize = 8
)

var (
	// ErrClosed is returned by every operation on a closed dictionary.
	ErrClosed = errors.New("mdict: dictionary is closed")
	// ErrPasscodeRequired is returned when the key info section is encrypted and no passcode was supplied.
	ErrPasscodeRequired = errors.New("mdict: user identification is needed to read encrypted file")
	// ErrUnsupportedEncryption is returned for encrypted key info sections.
	ErrUnsupportedEncryption = errors.New("mdict: encrypted key info is not supported")
	// ErrCorrupted is returned when a structural invariant of the file does not hold.
	ErrCorrupted = errors.New("mdict: corrupted dictionary")
	// ErrUnknownCompression is returned for a block whose compression type is not raw, lzo or zlib.
	ErrUnknownCompression = errors.New("mdict: unknown compression type")
	// ErrNotMDD is returned by resource operations on an mdx dictionary.
	ErrNotMDD = errors.New("mdict: not an mdd resource bundle")
	// ErrWordNotFound is returned by byte oriented accessors when a key is absent.
	ErrWordNotFound = errors.New("mdict: word not found")
)

// KeyBlockInfo describes one key block of the key section.
type KeyBlockInfo struct {
	FirstKey string
	LastKey  string

	PackSize          int64
	UnpackSize        int64
	PackAccumulator   int64
	UnpackAccumulator int64

	EntryCount       int64
	EntryAccumulator int64

	Index int
}

// KeywordEntry represents a single headword and the range of its record
// in the unpacked concatenation of all record blocks.
type KeywordEntry struct {
	KeyText           string
	RecordStartOffset int64
	// RecordEndOffset is -1 until the following entry or the record index closes it.
	RecordEndOffset int64
	KeyBlockIdx     int
}

// RecordBlockInfo describes one record block of the record section.
type RecordBlockInfo struct {
	PackSize          int64
	UnpackSize        int64
	PackAccumulator   int64
	UnpackAccumulator int64
}

// RecordLocation is the resolved physical location of a keyword's record.
type RecordLocation struct {
	Entry KeywordEntry `json:"entry"`

	BlockIndex int   `json:"block_index"`
	FileOffset int64 `json:"file_offset"`
	PackSize   int64 `json:"pack_size"`
	UnpackSize int64 `json:"unpack_size"`
	// Start and End bound the record inside the unpacked block.
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Result is the answer of a lookup. Found is false when the word is absent,
// in which case Definition is empty.
type Result struct {
	KeyText    string
	Definition string
	Found      bool
}

// FuzzyWord is a keyword entry together with its edit distance to the query.
type FuzzyWord struct {
	*KeywordEntry
	Distance int
}

type keyHeader struct {
	blockNum       int64
	entryNum       int64
	infoUnpackSize int64
	infoPackSize   int64
	blockPackSize  int64
}

type recordHeader struct {
	blockNum      int64
	entryNum      int64
	infoPackSize  int64
	blockPackSize int64
}

// sectionOffsets holds the absolute file offsets of each section.
type sectionOffsets struct {
	keyHeader    int64
	keyInfo      int64
	keyBlock     int64
	recordHeader int64
	recordInfo   int64
	recordBlock  int64
	end          int64
}
