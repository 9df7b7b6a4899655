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

// Options configures how a dictionary is opened and searched.
type Options struct {
	// Passcode is the user identification for encrypted dictionaries.
	Passcode string
	// Debug enables per-block debug logging while the index is built.
	Debug bool
	// Resort sorts the keyword list ordinally after loading. Lookups
	// depend on the sort, so disable it only for pre-sorted files.
	Resort bool
	// StripKey removes punctuation before comparing keys in fuzzy search.
	// The header's StripKey attribute enables stripping as well.
	StripKey bool
	// CaseSensitive skips the lower-casing that precedes the mdd strip
	// pattern. The header's KeyCaseSensitive attribute enables it as well.
	// Fuzzy search always compares case-folded keys.
	CaseSensitive bool
	// EncryptType overrides the header's Encrypted attribute unless it is -1.
	EncryptType int
}

// DefaultOptions returns the options used when Open is given nil.
func DefaultOptions() *Options {
	return &Options{
		Resort:      true,
		StripKey:    true,
		EncryptType: -1,
	}
}
