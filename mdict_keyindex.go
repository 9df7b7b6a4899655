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
	"fmt"
)

var keyInfoZlibTag = []byte{0x02, 0x00, 0x00, 0x00}

// readKeyHeader reads the fixed size key section header.
// v2.0: 5 numbers of 8 bytes followed by a 4 byte checksum.
// v1.x: 4 numbers of 4 bytes.
func (mdict *Dictionary) readKeyHeader() error {
	width := mdict.header.NumWidth
	size := int64(4 * width)
	if mdict.header.Version >= 2.0 {
		size = int64(5 * width)
	}

	log.Debugf("Reading key header for '%s' at %d, size %d", mdict.path, mdict.offsets.keyHeader, size)
	buffer, err := mdict.scanner.readRange(mdict.offsets.keyHeader, size)
	if err != nil {
		return fmt.Errorf("failed to read key header for '%s': %w", mdict.path, err)
	}

	if mdict.header.IsKeyInfoEncrypted() {
		if mdict.options.Passcode == "" {
			return fmt.Errorf("key info of '%s' is encrypted: %w", mdict.path, ErrPasscodeRequired)
		}
		return fmt.Errorf("key info of '%s' is encrypted: %w", mdict.path, ErrUnsupportedEncryption)
	}

	r := &bufferReader{buf: buffer}
	kh := keyHeader{}
	if kh.blockNum, err = r.number(width); err != nil {
		return fmt.Errorf("key block number: %w", err)
	}
	if kh.entryNum, err = r.number(width); err != nil {
		return fmt.Errorf("key entry number: %w", err)
	}
	if mdict.header.Version >= 2.0 {
		if kh.infoUnpackSize, err = r.number(width); err != nil {
			return fmt.Errorf("key info unpacked size: %w", err)
		}
	}
	if kh.infoPackSize, err = r.number(width); err != nil {
		return fmt.Errorf("key info packed size: %w", err)
	}
	if kh.blockPackSize, err = r.number(width); err != nil {
		return fmt.Errorf("key block packed size: %w", err)
	}
	mdict.keyHeader = kh

	mdict.offsets.keyInfo = mdict.offsets.keyHeader + size
	if mdict.header.Version >= 2.0 {
		// checksum of the key header
		mdict.offsets.keyInfo += 4
	}
	mdict.offsets.keyBlock = mdict.offsets.keyInfo + kh.infoPackSize
	mdict.offsets.recordHeader = mdict.offsets.keyBlock + kh.blockPackSize

	log.Debugf("Key header for '%s': %+v", mdict.path, kh)
	return nil
}

// readKeyInfos reads and decodes the key block info table.
func (mdict *Dictionary) readKeyInfos() error {
	buffer, err := mdict.scanner.readRange(mdict.offsets.keyInfo, mdict.keyHeader.infoPackSize)
	if err != nil {
		return fmt.Errorf("failed to read key block info for '%s': %w", mdict.path, err)
	}

	infos, err := mdict.decodeKeyInfo(buffer)
	if err != nil {
		return fmt.Errorf("failed to decode key block info for '%s': %w", mdict.path, err)
	}
	if int64(len(infos)) != mdict.keyHeader.blockNum {
		return fmt.Errorf("key block info count %d does not match key block number %d: %w",
			len(infos), mdict.keyHeader.blockNum, ErrCorrupted)
	}
	mdict.keyBlocks = infos
	return nil
}

func (mdict *Dictionary) unpackKeyInfo(buffer []byte) ([]byte, error) {
	if int64(len(buffer)) != mdict.keyHeader.infoPackSize {
		return nil, fmt.Errorf("key info buffer length %d does not match packed size %d: %w",
			len(buffer), mdict.keyHeader.infoPackSize, ErrCorrupted)
	}
	if mdict.header.Version < 2.0 || len(buffer) < blockPrefixSize || !bytes.Equal(buffer[0:4], keyInfoZlibTag) {
		return buffer, nil
	}

	// the adler32 checksum in [4:8] is not verified
	unpacked, err := zlibDecompress(buffer[blockPrefixSize:], mdict.keyHeader.infoUnpackSize)
	if err != nil {
		return nil, err
	}
	if int64(len(unpacked)) != mdict.keyHeader.infoUnpackSize {
		return nil, fmt.Errorf("key info unpacked size %d does not match declared size %d: %w",
			len(unpacked), mdict.keyHeader.infoUnpackSize, ErrCorrupted)
	}
	return unpacked, nil
}

// keyTextSize converts the stored key length into the byte length of the key text.
func (mdict *Dictionary) keyTextSize(n int64) int64 {
	utf16 := mdict.text.encoding == EncodingUtf16
	if mdict.header.Version >= 2.0 {
		// the stored length excludes the terminator
		if utf16 {
			return (n + 1) * 2
		}
		return n + 1
	}
	if utf16 {
		return n * 2
	}
	return n
}

func (mdict *Dictionary) readKeyText(r *bufferReader) (string, error) {
	n, err := r.number(mdict.header.NumWidth / 4)
	if err != nil {
		return "", err
	}
	raw, err := r.take(int(mdict.keyTextSize(n)))
	if err != nil {
		return "", err
	}
	return mdict.text.decode(mdict.text.cutTerminator(raw))
}

// decodeKeyInfo decodes the key info payload into one KeyBlockInfo per key block.
// Each record: [entries][firstLen][first][lastLen][last][packSize][unpackSize].
func (mdict *Dictionary) decodeKeyInfo(buffer []byte) ([]*KeyBlockInfo, error) {
	data, err := mdict.unpackKeyInfo(buffer)
	if err != nil {
		return nil, err
	}

	width := mdict.header.NumWidth
	r := &bufferReader{buf: data}
	infos := make([]*KeyBlockInfo, 0, min(mdict.keyHeader.blockNum, int64(len(data))))

	var packAccu, unpackAccu, entryAccu int64
	for i := 0; int64(i) < mdict.keyHeader.blockNum; i++ {
		info := &KeyBlockInfo{
			Index:             i,
			PackAccumulator:   packAccu,
			UnpackAccumulator: unpackAccu,
			EntryAccumulator:  entryAccu,
		}
		if info.EntryCount, err = r.number(width); err != nil {
			return nil, fmt.Errorf("key block %d entry count: %w", i, err)
		}
		if info.FirstKey, err = mdict.readKeyText(r); err != nil {
			return nil, fmt.Errorf("key block %d first key: %w", i, err)
		}
		if info.LastKey, err = mdict.readKeyText(r); err != nil {
			return nil, fmt.Errorf("key block %d last key: %w", i, err)
		}
		if info.PackSize, err = r.number(width); err != nil {
			return nil, fmt.Errorf("key block %d packed size: %w", i, err)
		}
		if info.UnpackSize, err = r.number(width); err != nil {
			return nil, fmt.Errorf("key block %d unpacked size: %w", i, err)
		}

		if mdict.options.Debug {
			log.Debugf("Key block info [%d] for '%s': first '%s', last '%s', entries %d, pack %d, unpack %d",
				i, mdict.path, info.FirstKey, info.LastKey, info.EntryCount, info.PackSize, info.UnpackSize)
		}

		packAccu += info.PackSize
		unpackAccu += info.UnpackSize
		entryAccu += info.EntryCount
		infos = append(infos, info)
	}

	if packAccu != mdict.keyHeader.blockPackSize {
		return nil, fmt.Errorf("accumulated key block packed size %d does not match declared total %d: %w",
			packAccu, mdict.keyHeader.blockPackSize, ErrCorrupted)
	}
	if entryAccu != mdict.keyHeader.entryNum {
		return nil, fmt.Errorf("accumulated key block entry count %d does not match declared entry number %d: %w",
			entryAccu, mdict.keyHeader.entryNum, ErrCorrupted)
	}
	return infos, nil
}
