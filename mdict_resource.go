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

// Locate returns the resource stored under resourceKey as base64. Keys of
// mdd files are paths such as `\img\logo.png`. Result.Found is false when
// the key is absent or its payload is empty.
func (mdict *Dictionary) Locate(resourceKey string) (*Result, error) {
	data, err := mdict.Resource(resourceKey)
	if err != nil {
		if errors.Is(err, ErrWordNotFound) {
			return &Result{KeyText: resourceKey}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return &Result{KeyText: resourceKey}, nil
	}
	result := &Result{KeyText: resourceKey, Found: true}
	result.Definition, err = decodeRecord(mdict.kind, mdict.text, data)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Resource returns the raw bytes stored under resourceKey.
func (mdict *Dictionary) Resource(resourceKey string) ([]byte, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	if mdict.kind != KindMdd {
		return nil, fmt.Errorf("resource '%s' requested from '%s': %w", resourceKey, mdict.path, ErrNotMDD)
	}

	entry := mdict.FindEntry(resourceKey, false)
	if entry == nil {
		return nil, ErrWordNotFound
	}
	log.Infof("mdict.Resource hit key:(%s)", resourceKey)

	data, err := mdict.record(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resource '%s': %w", resourceKey, err)
	}
	return data, nil
}
