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
	"io"
	"os"
)

// fileScanner serves random access reads from a single file handle it owns.
type fileScanner struct {
	path string
	file *os.File
	size int64
}

func openScanner(path string) (*fileScanner, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file '%s': %w", path, err)
	}
	return &fileScanner{path: path, file: file, size: stat.Size()}, nil
}

// readRange reads exactly length bytes at offset. Reads that would run
// past the end of the file fail instead of returning a short buffer.
func (s *fileScanner) readRange(offset, length int64) ([]byte, error) {
	if s.file == nil {
		return nil, ErrClosed
	}
	if offset < 0 || length < 0 || offset > s.size || length > s.size-offset {
		return nil, fmt.Errorf("read range of %d bytes at %d outside of '%s' (size %d): %w",
			length, offset, s.path, s.size, io.ErrUnexpectedEOF)
	}
	buf := make([]byte, length)
	n, err := s.file.ReadAt(buf, offset)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == length) {
		return nil, fmt.Errorf("failed to read %d bytes at %d from '%s': %w", length, offset, s.path, err)
	}
	return buf, nil
}

func (s *fileScanner) close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
