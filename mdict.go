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
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("mdict")

// Dictionary is an open mdx or mdd file. The keyword index is built
// eagerly by Open, records are read and decoded on demand.
// A Dictionary serves one caller at a time.
type Dictionary struct {
	path    string
	kind    Kind
	options *Options

	scanner  *fileScanner
	header   *Header
	text     *textDecoder
	stripper *keyStripper

	keyHeader    keyHeader
	recordHeader recordHeader
	offsets      sectionOffsets

	keyBlocks    []*KeyBlockInfo
	entries      []*KeywordEntry
	recordBlocks []*RecordBlockInfo
}

// Open opens the dictionary at path and builds its keyword index.
// Files with the .mdd extension are opened as resource bundles.
// A nil options uses DefaultOptions.
func Open(path string, options *Options) (*Dictionary, error) {
	if options == nil {
		options = DefaultOptions()
	}
	kind := KindMdx
	if strings.ToLower(filepath.Ext(path)) == ".mdd" {
		kind = KindMdd
	}

	log.Infof("Opening %s dictionary: %s", kind, path)
	scanner, err := openScanner(path)
	if err != nil {
		return nil, err
	}

	mdict := &Dictionary{
		path:    path,
		kind:    kind,
		options: options,
		scanner: scanner,
	}
	if err := mdict.init(); err != nil {
		_ = scanner.close()
		return nil, err
	}
	log.Infof("Dictionary '%s' opened: %d entries, %d key blocks, %d record blocks",
		path, len(mdict.entries), len(mdict.keyBlocks), len(mdict.recordBlocks))
	return mdict, nil
}

func (mdict *Dictionary) init() error {
	header, size, err := readHeader(mdict.scanner, mdict.kind, mdict.options.EncryptType)
	if err != nil {
		return fmt.Errorf("failed to read header for '%s': %w", mdict.path, err)
	}
	mdict.header = header
	mdict.offsets.keyHeader = size
	mdict.text = newTextDecoder(header.TextEncoding)
	mdict.stripper = newKeyStripper(mdict.kind,
		mdict.options.StripKey || header.IsStripKey(),
		mdict.options.CaseSensitive || header.IsKeyCaseSensitive())
	log.Debugf("Header parsed for '%s'. Title: '%s', EngineVersion: '%s', Encoding: '%s', Encrypted: %d",
		mdict.path, header.Title, header.GeneratedByEngineVersion, header.Encoding, header.EncryptType)

	if err := mdict.readKeyHeader(); err != nil {
		return err
	}
	if err := mdict.readKeyInfos(); err != nil {
		return err
	}
	if err := mdict.readKeyBlocks(); err != nil {
		return err
	}
	if err := mdict.readRecordHeader(); err != nil {
		return err
	}
	if err := mdict.readRecordInfos(); err != nil {
		return err
	}

	if mdict.options.Resort {
		sort.SliceStable(mdict.entries, func(i, j int) bool {
			return compareKey(mdict.entries[i].KeyText, mdict.entries[j].KeyText) < 0
		})
	}
	return nil
}

// compareKey orders keys by their bytes.
func compareKey(a, b string) int {
	return bytes.Compare([]byte(a), []byte(b))
}

// Close releases the file and drops the index. Every later call that reads
// the index or the file fails with ErrClosed. The header metadata (Name,
// Path, Kind, IsMDD, Header, Title, Description) is immutable and stays
// readable; FindEntry and FindKeyBlock find nothing.
func (mdict *Dictionary) Close() error {
	if mdict.closed() {
		return nil
	}
	log.Infof("Closing dictionary: %s", mdict.path)
	err := mdict.scanner.close()
	mdict.scanner = nil
	mdict.keyBlocks = nil
	mdict.entries = nil
	mdict.recordBlocks = nil
	return err
}

func (mdict *Dictionary) closed() bool {
	return mdict.scanner == nil
}

// Name returns the file name without its extension.
func (mdict *Dictionary) Name() string {
	name := filepath.Base(mdict.path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Path returns the path the dictionary was opened from.
func (mdict *Dictionary) Path() string {
	return mdict.path
}

// Kind reports whether the dictionary is an mdx or an mdd file.
func (mdict *Dictionary) Kind() Kind {
	return mdict.kind
}

// IsMDD reports whether the dictionary is a resource bundle.
func (mdict *Dictionary) IsMDD() bool {
	return mdict.kind == KindMdd
}

// Header returns the parsed file header. It stays available after Close.
func (mdict *Dictionary) Header() *Header {
	return mdict.header
}

// Title returns the Title attribute of the header.
func (mdict *Dictionary) Title() string {
	return mdict.header.Title
}

// Description returns the Description attribute of the header.
func (mdict *Dictionary) Description() string {
	return mdict.header.Description
}

// Entries returns the keyword list. It is sorted by key unless the
// dictionary was opened without Resort.
func (mdict *Dictionary) Entries() ([]*KeywordEntry, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	return mdict.entries, nil
}

// KeyBlocks returns the key block info list in file order.
func (mdict *Dictionary) KeyBlocks() ([]*KeyBlockInfo, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	return mdict.keyBlocks, nil
}

// RecordBlocks returns the record block info list in file order.
func (mdict *Dictionary) RecordBlocks() ([]*RecordBlockInfo, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	return mdict.recordBlocks, nil
}

// Lookup returns the definition of word. Result.Found is false when the
// word is not in the dictionary.
func (mdict *Dictionary) Lookup(word string) (*Result, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	entry := mdict.FindEntry(word, false)
	if entry == nil {
		log.Debugf("Word '%s' not found in '%s'", word, mdict.path)
		return &Result{KeyText: word}, nil
	}
	log.Infof("mdict.Lookup hit key:(%s)", word)

	result, err := mdict.Fetch(entry)
	if err != nil {
		return nil, err
	}
	result.KeyText = word
	return result, nil
}

// Fetch reads the record of entry. Text records are decoded with the
// dictionary's encoding, mdd records are returned in base64.
func (mdict *Dictionary) Fetch(entry *KeywordEntry) (*Result, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	if entry == nil {
		return nil, errors.New("invalid mdict keyword entry")
	}

	data, err := mdict.record(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record of '%s': %w", entry.KeyText, err)
	}

	definition, err := decodeRecord(mdict.kind, mdict.text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record of '%s': %w", entry.KeyText, err)
	}
	return &Result{KeyText: entry.KeyText, Definition: definition, Found: true}, nil
}

func decodeRecord(kind Kind, text *textDecoder, data []byte) (string, error) {
	if kind == KindMdd {
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return text.decode(data)
}
