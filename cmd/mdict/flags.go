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
	"github.com/lib-x/mdict"
	"github.com/urfave/cli/v2"
)

var (
	passcodeFlag = cli.StringFlag{
		Name:    "passcode",
		Usage:   "user identification for encrypted dictionaries",
		EnvVars: []string{"MDICT_PASSCODE"},
	}
	encryptTypeFlag = cli.IntFlag{
		Name:    "encrypt-type",
		Usage:   "override the header's Encrypted attribute (-1 keeps the header value)",
		Value:   -1,
		EnvVars: []string{"MDICT_ENCRYPT_TYPE"},
	}
	noResortFlag = cli.BoolFlag{
		Name:    "no-resort",
		Usage:   "keep the keyword list in file order",
		EnvVars: []string{"MDICT_NO_RESORT"},
	}
	stripKeyFlag = cli.BoolFlag{
		Name:    "strip-key",
		Usage:   "strip punctuation from keys before fuzzy matching",
		Value:   true,
		EnvVars: []string{"MDICT_STRIP_KEY"},
	}
	caseSensitiveFlag = cli.BoolFlag{
		Name:    "case-sensitive",
		Usage:   "skip early key lower-casing (fuzzy matching still compares case-folded keys)",
		EnvVars: []string{"MDICT_CASE_SENSITIVE"},
	}
	debugFlag = cli.BoolFlag{
		Name:    "debug",
		Usage:   "log every key and record block while indexing",
		EnvVars: []string{"MDICT_DEBUG"},
	}

	limitFlag = cli.IntFlag{
		Name:  "limit",
		Usage: "maximum number of rows to print (0 prints all)",
		Value: 20,
	}
	distanceFlag = cli.IntFlag{
		Name:  "distance",
		Usage: "maximum edit distance between the stripped keys",
		Value: 2,
	}
	styleFlag = cli.BoolFlag{
		Name:  "style",
		Usage: "expand the header's style sheet in definitions",
	}
	outputFlag = cli.PathFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write the resource to this file instead of stdout",
	}
	blockFlag = cli.IntFlag{
		Name:  "block",
		Usage: "only list the entries of this key block",
		Value: -1,
	}
)

// dictionaryOptions maps the global flags onto the library options.
func dictionaryOptions(ctx *cli.Context) *mdict.Options {
	options := mdict.DefaultOptions()
	options.Passcode = ctx.String(passcodeFlag.Name)
	options.EncryptType = ctx.Int(encryptTypeFlag.Name)
	options.Resort = !ctx.Bool(noResortFlag.Name)
	options.StripKey = ctx.Bool(stripKeyFlag.Name)
	options.CaseSensitive = ctx.Bool(caseSensitiveFlag.Name)
	options.Debug = ctx.Bool(debugFlag.Name)
	return options
}
