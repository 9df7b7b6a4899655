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
	"sort"
	"strings"
)

// FindEntry binary searches the keyword list for word. When associate is
// true and word is absent, the entry of the last probe is returned, which
// is a neighbour of word in key order. It returns nil for an empty or
// closed dictionary; use Lookup to tell a closed dictionary apart.
func (mdict *Dictionary) FindEntry(word string, associate bool) *KeywordEntry {
	list := mdict.entries
	if len(list) == 0 {
		return nil
	}

	left, right, mid := 0, len(list)-1, 0
	for left <= right {
		mid = left + (right-left)>>1
		c := compareKey(word, list[mid].KeyText)
		if c > 0 {
			left = mid + 1
		} else if c == 0 {
			return list[mid]
		} else {
			right = mid - 1
		}
	}
	if !associate {
		return nil
	}
	return list[mid]
}

// FindKeyBlock returns the index of the key block whose [FirstKey, LastKey]
// range holds word, or -1. A closed dictionary has no key blocks.
func (mdict *Dictionary) FindKeyBlock(word string) int {
	list := mdict.keyBlocks
	left, right := 0, len(list)-1
	for left <= right {
		mid := left + (right-left)>>1
		if compareKey(word, list[mid].FirstKey) >= 0 && compareKey(word, list[mid].LastKey) <= 0 {
			return mid
		}
		if compareKey(word, list[mid].LastKey) >= 0 {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return -1
}

// Associate returns the entries that share a key block with the nearest
// match of phrase.
func (mdict *Dictionary) Associate(phrase string) ([]*KeywordEntry, error) {
	if mdict.closed() {
		return nil, ErrClosed
	}
	nearest := mdict.FindEntry(phrase, true)
	if nearest == nil {
		return []*KeywordEntry{}, nil
	}

	var list []*KeywordEntry
	for _, entry := range mdict.entries {
		if entry.KeyBlockIdx == nearest.KeyBlockIdx {
			list = append(list, entry)
		}
	}
	log.Debugf("Associate '%s' in '%s': %d entries of key block %d", phrase, mdict.path, len(list), nearest.KeyBlockIdx)
	return list, nil
}

// Prefix returns the associated entries whose key starts with prefix.
func (mdict *Dictionary) Prefix(prefix string) ([]*KeywordEntry, error) {
	associated, err := mdict.Associate(prefix)
	if err != nil {
		return nil, err
	}
	list := make([]*KeywordEntry, 0, len(associated))
	for _, entry := range associated {
		if strings.HasPrefix(entry.KeyText, prefix) {
			list = append(list, entry)
		}
	}
	return list, nil
}

// Suggest returns the associated entries within maxDistance edits of phrase.
// Keys are normalized by the dictionary's strip rules before comparison.
func (mdict *Dictionary) Suggest(phrase string, maxDistance int) ([]*KeywordEntry, error) {
	fuzzy, err := mdict.near(phrase, maxDistance)
	if err != nil {
		return nil, err
	}
	list := make([]*KeywordEntry, 0, len(fuzzy))
	for _, word := range fuzzy {
		list = append(list, word.KeywordEntry)
	}
	return list, nil
}

// FuzzySearch returns up to limit associated entries within maxDistance
// edits of word, closest first. Entries at equal distance keep key order.
func (mdict *Dictionary) FuzzySearch(word string, limit, maxDistance int) ([]*FuzzyWord, error) {
	fuzzy, err := mdict.near(word, maxDistance)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(fuzzy, func(i, j int) bool {
		return fuzzy[i].Distance < fuzzy[j].Distance
	})
	if limit < 0 {
		limit = 0
	}
	if len(fuzzy) > limit {
		fuzzy = fuzzy[:limit]
	}
	return fuzzy, nil
}

func (mdict *Dictionary) near(word string, maxDistance int) ([]*FuzzyWord, error) {
	associated, err := mdict.Associate(word)
	if err != nil {
		return nil, err
	}
	target := mdict.stripper.Strip(word)
	list := make([]*FuzzyWord, 0, len(associated))
	for _, entry := range associated {
		d := EditDistance(mdict.stripper.Strip(entry.KeyText), target)
		if d <= maxDistance {
			list = append(list, &FuzzyWord{KeywordEntry: entry, Distance: d})
		}
	}
	return list, nil
}

// Strip normalizes key the way fuzzy search does before comparing keys.
func (mdict *Dictionary) Strip(key string) string {
	return mdict.stripper.Strip(key)
}
