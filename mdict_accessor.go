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
	"encoding/json"
)

// Accessor reads records from a RecordLocation without an open
// Dictionary. It is small enough to be stored next to persisted
// locations, and every call opens and closes the file itself.
type Accessor struct {
	Filepath        string `json:"filepath"`
	Kind            Kind   `json:"kind"`
	RecordEncrypted bool   `json:"record_encrypted"`
	TextEncoding    int    `json:"text_encoding"`
}

// NewAccessor returns an accessor for the file of mdict.
func NewAccessor(mdict *Dictionary) *Accessor {
	return &Accessor{
		Filepath:        mdict.path,
		Kind:            mdict.kind,
		RecordEncrypted: mdict.header.IsRecordEncrypted(),
		TextEncoding:    mdict.header.TextEncoding,
	}
}

// NewAccessorFromJSON creates a new Accessor from a JSON byte slice.
func NewAccessorFromJSON(data []byte) (*Accessor, error) {
	acc := new(Accessor)
	err := json.Unmarshal(data, acc)
	return acc, err
}

// Serialize converts the Accessor to its JSON representation.
func (acc *Accessor) Serialize() ([]byte, error) {
	return json.Marshal(acc)
}

// Retrieve returns the raw record bytes at loc.
func (acc *Accessor) Retrieve(loc *RecordLocation) ([]byte, error) {
	scanner, err := openScanner(acc.Filepath)
	if err != nil {
		return nil, err
	}
	defer scanner.close()

	return readLocation(scanner, loc, acc.RecordEncrypted)
}

// RetrieveDefinition returns the record at loc as a Result, decoded like
// Dictionary.Fetch does.
func (acc *Accessor) RetrieveDefinition(loc *RecordLocation) (*Result, error) {
	data, err := acc.Retrieve(loc)
	if err != nil {
		return nil, err
	}
	definition, err := decodeRecord(acc.Kind, newTextDecoder(acc.TextEncoding), data)
	if err != nil {
		return nil, err
	}
	return &Result{KeyText: loc.Entry.KeyText, Definition: definition, Found: true}, nil
}
