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
	"errors"
	"fmt"
)

func (mdict *Dictionary) readRecordHeader() error {
	width := mdict.header.NumWidth
	size := int64(4 * width)

	log.Debugf("Reading record block metadata for '%s' from offset %d, length %d", mdict.path, mdict.offsets.recordHeader, size)
	buffer, err := mdict.scanner.readRange(mdict.offsets.recordHeader, size)
	if err != nil {
		return fmt.Errorf("failed to read record block metadata for '%s': %w", mdict.path, err)
	}

	r := &bufferReader{buf: buffer}
	rh := recordHeader{}
	if rh.blockNum, err = r.number(width); err != nil {
		return fmt.Errorf("record block number: %w", err)
	}
	if rh.entryNum, err = r.number(width); err != nil {
		return fmt.Errorf("record entry number: %w", err)
	}
	if rh.infoPackSize, err = r.number(width); err != nil {
		return fmt.Errorf("record info packed size: %w", err)
	}
	if rh.blockPackSize, err = r.number(width); err != nil {
		return fmt.Errorf("record block packed size: %w", err)
	}
	if rh.entryNum != mdict.keyHeader.entryNum {
		return fmt.Errorf("record block entries number %d does not match key block entries number %d for '%s': %w",
			rh.entryNum, mdict.keyHeader.entryNum, mdict.path, ErrCorrupted)
	}
	mdict.recordHeader = rh

	mdict.offsets.recordInfo = mdict.offsets.recordHeader + size
	mdict.offsets.recordBlock = mdict.offsets.recordInfo + rh.infoPackSize
	mdict.offsets.end = mdict.offsets.recordBlock + rh.blockPackSize
	log.Debugf("Record block metadata for '%s': %+v", mdict.path, rh)
	return nil
}

// readRecordInfos decodes the (packSize, unpackSize) pairs of the record
// section and closes the last keyword entry with the total unpacked size.
func (mdict *Dictionary) readRecordInfos() error {
	width := mdict.header.NumWidth
	buffer, err := mdict.scanner.readRange(mdict.offsets.recordInfo, mdict.recordHeader.infoPackSize)
	if err != nil {
		return fmt.Errorf("failed to read record block info data for '%s': %w", mdict.path, err)
	}

	r := &bufferReader{buf: buffer}
	infos := make([]*RecordBlockInfo, 0, min(mdict.recordHeader.blockNum, int64(len(buffer))))
	var packAccu, unpackAccu int64
	for i := int64(0); i < mdict.recordHeader.blockNum; i++ {
		info := &RecordBlockInfo{PackAccumulator: packAccu, UnpackAccumulator: unpackAccu}
		if info.PackSize, err = r.number(width); err != nil {
			return fmt.Errorf("record block %d packed size: %w", i, err)
		}
		if info.UnpackSize, err = r.number(width); err != nil {
			return fmt.Errorf("record block %d unpacked size: %w", i, err)
		}
		if mdict.options.Debug {
			log.Debugf("Record block info [%d] for '%s': %+v", i, mdict.path, info)
		}
		packAccu += info.PackSize
		unpackAccu += info.UnpackSize
		infos = append(infos, info)
	}

	if int64(r.pos) != mdict.recordHeader.infoPackSize {
		return fmt.Errorf("record block info decoded offset %d not equal to expected size %d for '%s': %w",
			r.pos, mdict.recordHeader.infoPackSize, mdict.path, ErrCorrupted)
	}
	if packAccu != mdict.recordHeader.blockPackSize {
		return fmt.Errorf("record block info accumulated packed size %d not equal to expected total %d for '%s': %w",
			packAccu, mdict.recordHeader.blockPackSize, mdict.path, ErrCorrupted)
	}
	mdict.recordBlocks = infos

	if len(mdict.entries) > 0 {
		mdict.entries[len(mdict.entries)-1].RecordEndOffset = unpackAccu
	}
	log.Debugf("Record block info successfully read and decoded for '%s'. Number of record blocks: %d", mdict.path, len(infos))
	return nil
}

// reduceRecordBlock returns the index of the record block whose unpacked
// range contains offset, or -1 when offset precedes every block.
func (mdict *Dictionary) reduceRecordBlock(offset int64) int {
	left, right := 0, len(mdict.recordBlocks)
	for left < right {
		mid := left + (right-left)/2
		if mdict.recordBlocks[mid].UnpackAccumulator <= offset {
			left = mid + 1
		} else {
			right = mid
		}
	}
	return left - 1
}

// LocateEntry resolves the record block and the in-block window that hold
// the record of entry.
func (mdict *Dictionary) LocateEntry(entry *KeywordEntry) (*RecordLocation, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	if entry == nil {
		return nil, errors.New("invalid mdict keyword entry")
	}

	idx := mdict.reduceRecordBlock(entry.RecordStartOffset)
	if idx < 0 {
		return nil, fmt.Errorf("record block not found for offset %d of '%s': %w", entry.RecordStartOffset, entry.KeyText, ErrCorrupted)
	}
	info := mdict.recordBlocks[idx]

	start := entry.RecordStartOffset - info.UnpackAccumulator
	end := entry.RecordEndOffset - info.UnpackAccumulator
	if start < 0 || start > info.UnpackSize || end < start || end > info.UnpackSize {
		log.Errorf("Record window [%d, %d) of '%s' is outside of record block %d (size %d)", start, end, entry.KeyText, idx, info.UnpackSize)
		return nil, fmt.Errorf("record window [%d, %d) of '%s' exceeds record block %d of %d bytes: %w",
			start, end, entry.KeyText, idx, info.UnpackSize, ErrCorrupted)
	}

	return &RecordLocation{
		Entry:      *entry,
		BlockIndex: idx,
		FileOffset: mdict.offsets.recordBlock + info.PackAccumulator,
		PackSize:   info.PackSize,
		UnpackSize: info.UnpackSize,
		Start:      start,
		End:        end,
	}, nil
}

// readLocation reads and decodes the block of loc and returns the record bytes.
func readLocation(scanner *fileScanner, loc *RecordLocation, encrypted bool) ([]byte, error) {
	buffer, err := scanner.readRange(loc.FileOffset, loc.PackSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read record block %d for '%s': %w", loc.BlockIndex, loc.Entry.KeyText, err)
	}
	block, err := decodeBlock(buffer, loc.UnpackSize, encrypted)
	if err != nil {
		log.Errorf("Failed to decode record block %d of '%s': %v", loc.BlockIndex, scanner.path, err)
		return nil, fmt.Errorf("failed to decode record block %d for '%s': %w", loc.BlockIndex, loc.Entry.KeyText, err)
	}
	if loc.Start < 0 || loc.End < loc.Start || loc.End > int64(len(block)) {
		return nil, fmt.Errorf("record window [%d, %d) exceeds record block of %d bytes: %w",
			loc.Start, loc.End, len(block), ErrCorrupted)
	}
	return block[loc.Start:loc.End], nil
}

// record locates and reads the record bytes of entry.
func (mdict *Dictionary) record(entry *KeywordEntry) ([]byte, error) {
	loc, err := mdict.LocateEntry(entry)
	if err != nil {
		return nil, err
	}
	return readLocation(mdict.scanner, loc, mdict.header.IsRecordEncrypted())
}
