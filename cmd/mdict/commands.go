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

package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/lib-x/mdict"
	"github.com/urfave/cli/v2"
)

var infoCommand = cli.Command{
	Action:    printInfo,
	Name:      "info",
	Usage:     "Prints the header and index summary of a dictionary",
	ArgsUsage: "<file>",
}

var lookupCommand = cli.Command{
	Action:    lookup,
	Name:      "lookup",
	Usage:     "Prints the definitions of words",
	ArgsUsage: "<file> <word>...",
	Flags: []cli.Flag{
		&styleFlag,
	},
}

var prefixCommand = cli.Command{
	Action:    listPrefix,
	Name:      "prefix",
	Usage:     "Lists keys starting with a prefix",
	ArgsUsage: "<file> <prefix>",
	Flags: []cli.Flag{
		&limitFlag,
	},
}

var associateCommand = cli.Command{
	Action:    listAssociate,
	Name:      "associate",
	Usage:     "Lists keys of the key block holding the nearest match of a phrase",
	ArgsUsage: "<file> <phrase>",
	Flags: []cli.Flag{
		&limitFlag,
	},
}

var suggestCommand = cli.Command{
	Action:    listSuggest,
	Name:      "suggest",
	Usage:     "Lists keys close to a phrase in its key block",
	ArgsUsage: "<file> <phrase>",
	Flags: []cli.Flag{
		&limitFlag,
		&distanceFlag,
	},
}

var fuzzyCommand = cli.Command{
	Action:    listFuzzy,
	Name:      "fuzzy",
	Usage:     "Lists keys ranked by edit distance to a word",
	ArgsUsage: "<file> <word>",
	Flags: []cli.Flag{
		&limitFlag,
		&distanceFlag,
	},
}

var resourceCommand = cli.Command{
	Action:    extractResource,
	Name:      "resource",
	Usage:     "Extracts a resource from an mdd bundle",
	ArgsUsage: "<file.mdd> <key>",
	Flags: []cli.Flag{
		&outputFlag,
	},
}

var listCommand = cli.Command{
	Action:    listEntries,
	Name:      "list",
	Usage:     "Lists keyword entries with their record ranges",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&limitFlag,
		&blockFlag,
	},
}

var versionCommand = cli.Command{
	Action: func(ctx *cli.Context) error {
		_, err := fmt.Fprintf(ctx.App.Writer, "%s %s\n", ctx.App.HelpName, ctx.App.Version)
		return err
	},
	Name:  "version",
	Usage: "Prints the version of the tool",
}

// openDictionary opens the file named by the first argument after checking
// that at least args arguments were given.
func openDictionary(ctx *cli.Context, args int) (*mdict.Dictionary, error) {
	if ctx.Args().Len() < args {
		return nil, fmt.Errorf("%s: expected arguments %s", ctx.Command.Name, ctx.Command.ArgsUsage)
	}
	return mdict.Open(ctx.Args().First(), dictionaryOptions(ctx))
}

func printInfo(ctx *cli.Context) error {
	dict, err := openDictionary(ctx, 1)
	if err != nil {
		return err
	}
	defer dict.Close()

	entries, err := dict.Entries()
	if err != nil {
		return err
	}
	keyBlocks, err := dict.KeyBlocks()
	if err != nil {
		return err
	}
	recordBlocks, err := dict.RecordBlocks()
	if err != nil {
		return err
	}

	header := dict.Header()
	rows := [][2]any{
		{"Path", dict.Path()},
		{"Kind", dict.Kind()},
		{"Title", header.Title},
		{"Engine", header.GeneratedByEngineVersion},
		{"Format", header.Format},
		{"Encoding", header.Encoding},
		{"Encrypted", header.EncryptType},
		{"KeyCaseSensitive", header.KeyCaseSensitive},
		{"StripKey", header.StripKey},
		{"CreationDate", header.CreationDate},
		{"Styles", len(header.Styles)},
		{"Entries", len(entries)},
		{"KeyBlocks", len(keyBlocks)},
		{"RecordBlocks", len(recordBlocks)},
	}
	tbl := newTable(ctx.App.Writer, "Attribute", "Value")
	for _, row := range rows {
		tbl.AddRow(row[0], row[1])
	}
	tbl.Print()

	if description := strings.TrimSpace(header.Description); description != "" {
		output(ctx.App.Writer, "\n%s\n", description)
	}
	return nil
}

func lookup(ctx *cli.Context) error {
	dict, err := openDictionary(ctx, 2)
	if err != nil {
		return err
	}
	defer dict.Close()

	for _, word := range ctx.Args().Tail() {
		result, err := dict.Lookup(word)
		if err != nil {
			return err
		}
		if !result.Found {
			log.Warningf("'%s' is not in %s", word, dict.Name())
			continue
		}
		definition := result.Definition
		if ctx.Bool(styleFlag.Name) && !dict.IsMDD() {
			if definition, err = dict.Header().SubstituteStyleSheet(definition); err != nil {
				return err
			}
		}
		output(ctx.App.Writer, "%s\n%s\n", bold(result.KeyText), definition)
	}
	return nil
}

func listPrefix(ctx *cli.Context) error {
	return listKeys(ctx, func(dict *mdict.Dictionary, arg string) ([]*mdict.KeywordEntry, error) {
		return dict.Prefix(arg)
	})
}

func listAssociate(ctx *cli.Context) error {
	return listKeys(ctx, func(dict *mdict.Dictionary, arg string) ([]*mdict.KeywordEntry, error) {
		return dict.Associate(arg)
	})
}

func listSuggest(ctx *cli.Context) error {
	return listKeys(ctx, func(dict *mdict.Dictionary, arg string) ([]*mdict.KeywordEntry, error) {
		return dict.Suggest(arg, ctx.Int(distanceFlag.Name))
	})
}

// listKeys prints one key per line for the search run on the second argument.
func listKeys(ctx *cli.Context, search func(*mdict.Dictionary, string) ([]*mdict.KeywordEntry, error)) error {
	dict, err := openDictionary(ctx, 2)
	if err != nil {
		return err
	}
	defer dict.Close()

	entries, err := search(dict, ctx.Args().Get(1))
	if err != nil {
		return err
	}
	for _, entry := range limit(entries, ctx.Int(limitFlag.Name)) {
		output(ctx.App.Writer, "%s\n", entry.KeyText)
	}
	return nil
}

func listFuzzy(ctx *cli.Context) error {
	dict, err := openDictionary(ctx, 2)
	if err != nil {
		return err
	}
	defer dict.Close()

	n := ctx.Int(limitFlag.Name)
	if n <= 0 {
		n = math.MaxInt
	}
	words, err := dict.FuzzySearch(ctx.Args().Get(1), n, ctx.Int(distanceFlag.Name))
	if err != nil {
		return err
	}
	tbl := newTable(ctx.App.Writer, "Key", "Distance", "Block")
	for _, word := range words {
		tbl.AddRow(word.KeyText, word.Distance, word.KeyBlockIdx)
	}
	tbl.Print()
	return nil
}

func extractResource(ctx *cli.Context) error {
	dict, err := openDictionary(ctx, 2)
	if err != nil {
		return err
	}
	defer dict.Close()

	key := ctx.Args().Get(1)
	data, err := dict.Resource(key)
	if err != nil {
		return fmt.Errorf("cannot extract '%s': %w", key, err)
	}

	var w io.Writer = ctx.App.Writer
	if path := ctx.Path(outputFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
		log.Noticef("writing %d bytes of '%s' to %s", len(data), key, path)
	}
	_, err = w.Write(data)
	return err
}

func listEntries(ctx *cli.Context) error {
	dict, err := openDictionary(ctx, 1)
	if err != nil {
		return err
	}
	defer dict.Close()

	var entries []*mdict.KeywordEntry
	if block := ctx.Int(blockFlag.Name); block >= 0 {
		entries, err = dict.KeyBlockEntries(block)
	} else {
		entries, err = dict.Entries()
	}
	if err != nil {
		return err
	}

	tbl := newTable(ctx.App.Writer, "Key", "Start", "End", "Block")
	for _, entry := range limit(entries, ctx.Int(limitFlag.Name)) {
		tbl.AddRow(entry.KeyText, entry.RecordStartOffset, entry.RecordEndOffset, entry.KeyBlockIdx)
	}
	tbl.Print()
	return nil
}

func limit[T any](list []T, n int) []T {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}
