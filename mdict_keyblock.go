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
)

// readKeyBlocks decodes every key block and builds the keyword list.
func (mdict *Dictionary) readKeyBlocks() error {
	log.Debugf("Reading key blocks for '%s' from offset %d, total size %d",
		mdict.path, mdict.offsets.keyBlock, mdict.keyHeader.blockPackSize)
	buffer, err := mdict.scanner.readRange(mdict.offsets.keyBlock, mdict.keyHeader.blockPackSize)
	if err != nil {
		return fmt.Errorf("failed to read key blocks for '%s': %w", mdict.path, err)
	}

	entries := make([]*KeywordEntry, 0, min(mdict.keyHeader.entryNum, int64(len(buffer))))
	for _, info := range mdict.keyBlocks {
		start := info.PackAccumulator
		if start < 0 || start > int64(len(buffer)) || info.PackSize > int64(len(buffer))-start {
			return fmt.Errorf("key block %d of %d bytes at %d exceeds key section of %d bytes: %w",
				info.Index, info.PackSize, start, len(buffer), ErrCorrupted)
		}
		end := start + info.PackSize

		block, err := decodeBlock(buffer[start:end], info.UnpackSize, false)
		if err != nil {
			return fmt.Errorf("failed to decode key block %d for '%s': %w", info.Index, mdict.path, err)
		}
		split, err := mdict.splitKeyBlock(block, info.Index)
		if err != nil {
			return fmt.Errorf("failed to split key block %d for '%s': %w", info.Index, mdict.path, err)
		}

		// the first start of this block closes the last entry of the previous one
		if len(entries) > 0 && len(split) > 0 {
			entries[len(entries)-1].RecordEndOffset = split[0].RecordStartOffset
		}
		if mdict.options.Debug {
			log.Debugf("Key block [%d] for '%s': %d entries", info.Index, mdict.path, len(split))
		}
		entries = append(entries, split...)
	}

	if int64(len(entries)) != mdict.keyHeader.entryNum {
		return fmt.Errorf("decoded key entries count %d not equal to expected entries number %d for '%s': %w",
			len(entries), mdict.keyHeader.entryNum, mdict.path, ErrCorrupted)
	}
	mdict.entries = entries
	log.Debugf("Key entries successfully read and decoded for '%s'. Total entries: %d", mdict.path, len(entries))
	return nil
}

// splitKeyBlock splits an unpacked key block into its entries:
// [recordStart:numWidth][key text][terminator], repeated.
func (mdict *Dictionary) splitKeyBlock(block []byte, blockIdx int) ([]*KeywordEntry, error) {
	numWidth := mdict.header.NumWidth
	width := mdict.text.width()

	var list []*KeywordEntry
	keyStart := 0
	for keyStart < len(block) {
		recordStart, err := readNumber(block[keyStart:], numWidth)
		if err != nil {
			return nil, err
		}

		textStart := keyStart + numWidth
		keyEnd := -1
		for i := textStart; i+width <= len(block); i += width {
			if block[i] == 0 && (width == 1 || block[i+1] == 0) {
				keyEnd = i
				break
			}
		}
		if keyEnd < 0 {
			log.Warningf("Key block %d of '%s' has an unterminated key at %d", blockIdx, mdict.path, keyStart)
			break
		}

		keyText, err := mdict.text.decode(block[textStart:keyEnd])
		if err != nil {
			return nil, fmt.Errorf("key text at %d: %w", textStart, err)
		}

		entry := &KeywordEntry{
			KeyText:           keyText,
			RecordStartOffset: recordStart,
			RecordEndOffset:   -1,
			KeyBlockIdx:       blockIdx,
		}
		if len(list) > 0 {
			list[len(list)-1].RecordEndOffset = recordStart
		}
		list = append(list, entry)
		keyStart = keyEnd + width
	}
	return list, nil
}

// KeyBlockEntries decodes the key block id on demand and returns its
// entries in file order. The last entry of the block has no end offset.
func (mdict *Dictionary) KeyBlockEntries(id int) ([]*KeywordEntry, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	if id < 0 || id >= len(mdict.keyBlocks) {
		return nil, fmt.Errorf("key block %d out of range [0, %d)", id, len(mdict.keyBlocks))
	}
	info := mdict.keyBlocks[id]
	buffer, err := mdict.scanner.readRange(mdict.offsets.keyBlock+info.PackAccumulator, info.PackSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read key block %d for '%s': %w", id, mdict.path, err)
	}
	block, err := decodeBlock(buffer, info.UnpackSize, false)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key block %d for '%s': %w", id, mdict.path, err)
	}
	return mdict.splitKeyBlock(block, id)
}
