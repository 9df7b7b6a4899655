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

// Command mdict inspects and queries MDict .mdx dictionaries and .mdd
// resource bundles.
package main

import (
	"fmt"
	"os"

	"github.com/lib-x/mdict/internal/logger"
	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"
)

// version is overwritten at link time with -ldflags "-X main.version=...".
var version = "dev"

var log = logging.MustGetLogger("mdict-cli")

func newApp() *cli.App {
	return &cli.App{
		Name:     "MDict Reader",
		HelpName: "mdict",
		Usage:    "inspect and query MDict dictionaries (.mdx) and resource bundles (.mdd)",
		Version:  version,
		Flags: []cli.Flag{
			&logger.LogLevelFlag,
			&passcodeFlag,
			&encryptTypeFlag,
			&noResortFlag,
			&stripKeyFlag,
			&caseSensitiveFlag,
			&debugFlag,
		},
		Before: func(ctx *cli.Context) error {
			log = logger.NewLogger(ctx.String(logger.LogLevelFlag.Name), "mdict-cli")
			return nil
		},
		Commands: []*cli.Command{
			&infoCommand,
			&lookupCommand,
			&prefixCommand,
			&associateCommand,
			&suggestCommand,
			&fuzzyCommand,
			&resourceCommand,
			&listCommand,
			&versionCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
