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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

// FS exposes a dictionary as a flat, read-only file system: every
// headword of an mdx file is a file holding its definition, every
// resource of an mdd file is a file holding its bytes. It can back an
// http.FileServer.
type FS struct {
	dict    *Dictionary
	modTime time.Time
}

var _ fs.FS = (*FS)(nil)

// NewFS returns a file system view of d.
func NewFS(d *Dictionary) *FS {
	return &FS{dict: d, modTime: creationTime(d.header.CreationDate)}
}

// creationTime parses the CreationDate attribute, falling back to now.
func creationTime(date string) time.Time {
	if date == "" {
		return time.Now()
	}
	for _, layout := range []string{"2006-01-02", "2006.01.02 15:04:05", "2006-1-2"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t
		}
	}
	log.Warningf("Could not parse CreationDate '%s' for ModTime, using current time.", date)
	return time.Now()
}

// resourceKey turns a slash separated path into an mdd key: `\dir\name`.
func resourceKey(name string) string {
	key := strings.ReplaceAll(name, "/", "\\")
	if !strings.HasPrefix(key, "\\") {
		key = "\\" + key
	}
	return key
}

// Open opens the definition or resource called name.
func (dfs *FS) Open(name string) (fs.File, error) {
	log.Debugf("FS: Open called with name: '%s'", name)
	if name == "" || name == "." {
		return &dirFile{fs: dfs, info: &fileInfo{name: ".", isDir: true, modTime: dfs.modTime}}, nil
	}
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	content, err := dfs.content(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		log.Errorf("FS: Error getting content for '%s': %v", name, err)
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	return &file{
		reader: bytes.NewReader(content),
		info: &fileInfo{
			name:    path.Base(name),
			size:    int64(len(content)),
			modTime: dfs.modTime,
		},
	}, nil
}

func (dfs *FS) content(name string) ([]byte, error) {
	if dfs.dict.IsMDD() {
		key := resourceKey(name)
		entry := dfs.dict.FindEntry(key, false)
		if entry == nil {
			entry = dfs.findFold(key)
		}
		if entry == nil {
			log.Debugf("FS: MDD resource '%s' (normalized: '%s') not found.", name, key)
			return nil, fs.ErrNotExist
		}
		return dfs.dict.record(entry)
	}

	result, err := dfs.dict.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("error looking up keyword '%s': %w", name, err)
	}
	if !result.Found || result.Definition == "" {
		log.Debugf("FS: Keyword '%s' not found in MDX.", name)
		return nil, fs.ErrNotExist
	}
	return []byte(result.Definition), nil
}

// findFold scans for a key that matches key case-insensitively.
func (dfs *FS) findFold(key string) *KeywordEntry {
	for _, entry := range dfs.dict.entries {
		if strings.EqualFold(entry.KeyText, key) {
			return entry
		}
	}
	return nil
}

// file is an opened definition or resource.
type file struct {
	reader *bytes.Reader
	info   *fileInfo
}

var _ io.ReadSeeker = (*file)(nil)

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }

func (f *file) Read(b []byte) (int, error) {
	if f.reader == nil {
		return 0, &fs.PathError{Op: "read", Path: f.info.name, Err: fs.ErrClosed}
	}
	return f.reader.Read(b)
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	if f.reader == nil {
		return 0, &fs.PathError{Op: "seek", Path: f.info.name, Err: fs.ErrClosed}
	}
	return f.reader.Seek(offset, whence)
}

func (f *file) Close() error {
	f.reader = nil
	return nil
}

// dirFile is the root directory, listing every key of the dictionary.
type dirFile struct {
	fs     *FS
	info   *fileInfo
	offset int
}

var _ fs.ReadDirFile = (*dirFile)(nil)

func (d *dirFile) Stat() (fs.FileInfo, error) { return d.info, nil }

func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: ".", Err: errors.New("is a directory")}
}

func (d *dirFile) Close() error { return nil }

// ReadDir lists the keys of the dictionary in index order.
func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	keys, err := d.fs.dict.Entries()
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: ".", Err: err}
	}

	rest := keys[min(d.offset, len(keys)):]
	if n > 0 {
		if len(rest) == 0 {
			return nil, io.EOF
		}
		rest = rest[:min(n, len(rest))]
	}

	entries := make([]fs.DirEntry, 0, len(rest))
	for _, kw := range rest {
		name := kw.KeyText
		if d.fs.dict.IsMDD() {
			name = strings.ReplaceAll(strings.TrimLeft(name, "\\/"), "\\", "/")
		}
		entries = append(entries, &fileInfo{
			name:    path.Base(name),
			size:    kw.RecordEndOffset - kw.RecordStartOffset,
			modTime: d.fs.modTime,
		})
	}
	d.offset += len(rest)
	log.Debugf("ReadDir for '%s' returning %d entries", d.fs.dict.path, len(entries))
	return entries, nil
}

// fileInfo implements fs.FileInfo and fs.DirEntry.
type fileInfo struct {
	name    string
	size    int64
	isDir   bool
	modTime time.Time
}

func (fi *fileInfo) Name() string               { return fi.name }
func (fi *fileInfo) Size() int64                { return fi.size }
func (fi *fileInfo) IsDir() bool                { return fi.isDir }
func (fi *fileInfo) ModTime() time.Time         { return fi.modTime }
func (fi *fileInfo) Sys() any                   { return nil }
func (fi *fileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi *fileInfo) Type() fs.FileMode          { return fi.Mode().Type() }

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.isDir {
		return fs.ModeDir | 0555
	}
	return 0444
}
