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

// Package logger installs the formatted, levelled go-logging backend used
// by the mdict command line tool.
package logger

import (
	"io"
	"os"

	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"
)

// LogLevelFlag selects the level of the mdict and the command loggers.
var LogLevelFlag = cli.StringFlag{
	Name:    "log",
	Aliases: []string{"l"},
	Usage:   "Level of the logging (\"critical\", \"error\", \"warning\", \"notice\", \"info\", \"debug\")",
	Value:   "warning",
	EnvVars: []string{"MDICT_LOG"},
}

const defaultLogFormat = "%{time:2006/01/02 15:04:05} %{color}%{level:-8s} %{shortpkg}/%{shortfunc}%{color:reset}: %{message}"

// NewLogger installs a stderr backend filtered at level and returns the
// logger of module. Stdout is left to command output. An unknown level
// falls back to INFO.
func NewLogger(level string, module string) *logging.Logger {
	return newLogger(os.Stderr, level, module)
}

func newLogger(w io.Writer, level string, module string) *logging.Logger {
	backend := logging.NewLogBackend(w, "", 0)

	fm := logging.MustStringFormatter(defaultLogFormat)
	fmtBackend := logging.NewBackendFormatter(backend, fm)

	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	lvlBackend := logging.AddModuleLevel(fmtBackend)
	lvlBackend.SetLevel(lvl, "")

	logging.SetBackend(lvlBackend)
	return logging.MustGetLogger(module)
}
