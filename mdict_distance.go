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
	"github.com/xrash/smetrics"
)

// DistanceSentinel is the edit distance reported when either side is empty.
// It is larger than any practical search distance.
const DistanceSentinel = 9999

// EditDistance returns the Levenshtein distance between a and b with unit
// costs, counted in characters.
func EditDistance(a, b string) int {
	if a == "" || b == "" {
		return DistanceSentinel
	}
	if isASCII(a) && isASCII(b) {
		return smetrics.WagnerFischer(a, b, 1, 1, 1)
	}
	return runeDistance([]rune(a), []rune(b))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// runeDistance is the two-row Wagner-Fischer recurrence over runes.
func runeDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1]
				continue
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+1)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
