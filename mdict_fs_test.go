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
	"encoding/base64"
	"io"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resourceEntries = []testEntry{
	{`\css\main.css`, "body { color: #333; }"},
	{`\img\logo.png`, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"},
	{`\sound\apple.mp3`, "ID3\x03\x00\x00\x00\x00\x00\x00"},
}

func newTestResources() *testDict {
	td := newTestDict(resourceEntries)
	td.kind = KindMdd
	return td
}

func TestResource_Locate(t *testing.T) {
	dict := newTestResources().open(t, nil)
	assert.True(t, dict.IsMDD())
	assert.Equal(t, KindMdd, dict.Kind())

	for _, e := range resourceEntries {
		result, err := dict.Locate(e.key)
		require.NoError(t, err)
		assert.True(t, result.Found, e.key)
		assert.Equal(t, e.key, result.KeyText)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(e.value)), result.Definition)

		raw, err := dict.Resource(e.key)
		require.NoError(t, err)
		assert.Equal(t, []byte(e.value), raw)
	}

	result, err := dict.Locate(`\img\missing.png`)
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, result.Definition)

	_, err = dict.Resource(`\img\missing.png`)
	assert.ErrorIs(t, err, ErrWordNotFound)

	// lookups on resource bundles are base64 as well
	lookup, err := dict.Lookup(`\css\main.css`)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(resourceEntries[0].value)), lookup.Definition)
}

func TestResource_NotMDD(t *testing.T) {
	dict := newTestDict(fruitEntries).open(t, nil)
	_, err := dict.Resource("apple")
	assert.ErrorIs(t, err, ErrNotMDD)
	_, err = dict.Locate("apple")
	assert.ErrorIs(t, err, ErrNotMDD)
}

func TestResource_Prefix(t *testing.T) {
	dict := newTestResources().open(t, nil)
	list, err := dict.Prefix(`\img`)
	require.NoError(t, err)
	assert.Equal(t, []string{`\img\logo.png`}, keyTexts(list))

	fuzzy, err := dict.FuzzySearch(`\img\Logo.png`, 3, 1)
	require.NoError(t, err)
	require.NotEmpty(t, fuzzy)
	assert.Equal(t, `\img\logo.png`, fuzzy[0].KeyText)
	assert.Equal(t, 0, fuzzy[0].Distance)
}

func TestFS_Mdx(t *testing.T) {
	dict := newTestDict(fruitEntries).open(t, nil)
	fsys := NewFS(dict)

	data, err := fs.ReadFile(fsys, "banana")
	require.NoError(t, err)
	assert.Equal(t, fruitEntries[2].value, string(data))

	f, err := fsys.Open("banana")
	require.NoError(t, err)
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, "banana", info.Name())
	assert.Equal(t, int64(len(fruitEntries[2].value)), info.Size())
	assert.False(t, info.IsDir())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), info.ModTime())
	seeker, ok := f.(io.Seeker)
	require.True(t, ok)
	_, err = seeker.Seek(0, io.SeekStart)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = f.Read(make([]byte, 4))
	assert.ErrorIs(t, err, fs.ErrClosed)

	_, err = fsys.Open("cherry")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = fsys.Open("../apple")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestFS_ReadDir(t *testing.T) {
	dict := newTestDict(fruitEntries).open(t, nil)
	fsys := NewFS(dict)

	entries, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)
	require.Len(t, entries, len(fruitEntries))
	assert.Equal(t, "apple", entries[0].Name())

	root, err := fsys.Open(".")
	require.NoError(t, err)
	info, err := root.Stat()
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	dir, ok := root.(fs.ReadDirFile)
	require.True(t, ok)
	page, err := dir.ReadDir(5)
	require.NoError(t, err)
	assert.Len(t, page, 5)
	page, err = dir.ReadDir(5)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	_, err = dir.ReadDir(5)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFS_Mdd(t *testing.T) {
	dict := newTestResources().open(t, nil)
	fsys := NewFS(dict)

	data, err := fs.ReadFile(fsys, "img/logo.png")
	require.NoError(t, err)
	assert.Equal(t, resourceEntries[1].value, string(data))

	// resource names match case-insensitively
	data, err = fs.ReadFile(fsys, "CSS/Main.css")
	require.NoError(t, err)
	assert.Equal(t, resourceEntries[0].value, string(data))

	_, err = fs.ReadFile(fsys, "img/missing.png")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	entries, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)
	require.Len(t, entries, len(resourceEntries))
	// fs.ReadDir sorts by name
	assert.Equal(t, "apple.mp3", entries[0].Name())
}
