// Copyright © 2024 The metafast Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"

	"github.com/ivartb/metafast/ferrors"
)

// log is the package-level structured logger, backed by the colored
// backend installed in cmd/metafast/main.go's init.
var log = logging.MustGetLogger("metafast")

// checkError logs err and exits the process. Apart from Execute's handling
// of a command-line parse error, it is the only place in this binary that
// calls os.Exit on error; every library package returns errors instead.
func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// Options holds the flags shared across subcommands, constructed once per
// invocation and validated eagerly.
type Options struct {
	K                   int
	SequenceLen         int
	MaximalBadFrequency *int
	BottomCutPercent    *float64
	MaxSize             uint64
	Threshold           uint32
	Reads               []string
	Kmers               []string
	ComponentsFile      string
	Workers             int
	WorkDir             string
	Verbose             bool
}

func getOptions(cmd *cobra.Command) *Options {
	workDir := getFlagString(cmd, "work-dir")
	if expanded, err := homedir.Expand(workDir); err == nil {
		workDir = expanded
	}

	opt := &Options{
		K:       getFlagPositiveInt(cmd, "k"),
		Workers: getFlagPositiveInt(cmd, "workers"),
		WorkDir: workDir,
		Verbose: getFlagBool(cmd, "verbose"),
	}

	if opt.K < 1 || opt.K > 31 {
		checkError(fmt.Errorf("k must be in [1, 31], got %d", opt.K))
	}

	if cmd.Flags().Lookup("sequence-len") != nil {
		opt.SequenceLen = getFlagInt(cmd, "sequence-len")
	}
	if cmd.Flags().Lookup("max-size") != nil {
		opt.MaxSize = getFlagByteSize(cmd, "max-size")
	}

	if cmd.Flags().Changed("maximal-bad-frequency") {
		v := getFlagInt(cmd, "maximal-bad-frequency")
		opt.MaximalBadFrequency = &v
	}
	if cmd.Flags().Changed("bottom-cut-percent") {
		v := getFlagFloat64(cmd, "bottom-cut-percent")
		opt.BottomCutPercent = &v
	}
	if opt.MaximalBadFrequency != nil && opt.BottomCutPercent != nil {
		checkError(ferrors.ErrInvalidInput)
	}

	if cmd.Flags().Lookup("reads") != nil {
		opt.Reads = getFlagCommaSeparatedStrings(cmd, "reads")
	}
	if cmd.Flags().Lookup("kmers") != nil {
		opt.Kmers = getFlagCommaSeparatedStrings(cmd, "kmers")
	}
	if cmd.Flags().Lookup("components-file") != nil {
		opt.ComponentsFile = getFlagString(cmd, "components-file")
	}
	if cmd.Flags().Lookup("threshold") != nil {
		opt.Threshold = uint32(getFlagNonNegativeInt(cmd, "threshold"))
	}

	return opt
}

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(err)
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return v
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		checkError(fmt.Errorf("value of --%s should be a positive integer", flag))
	}
	return v
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v < 0 {
		checkError(fmt.Errorf("value of --%s should be a non-negative integer", flag))
	}
	return v
}

func getFlagFloat64(cmd *cobra.Command, flag string) float64 {
	v, err := cmd.Flags().GetFloat64(flag)
	checkError(err)
	return v
}

func getFlagCommaSeparatedStrings(cmd *cobra.Command, flag string) []string {
	v := getFlagString(cmd, flag)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getFlagByteSize(cmd *cobra.Command, flag string) uint64 {
	s := getFlagString(cmd, flag)
	v, err := humanizeParseBytes(s)
	checkError(err)
	return v
}

func checkInputFiles(files ...string) {
	for _, file := range files {
		if file == "-" {
			continue
		}
		ok, err := pathutil.Exists(file)
		if err != nil {
			checkError(fmt.Errorf("failed to check file %s: %s", file, err))
		}
		if !ok {
			checkError(fmt.Errorf("file does not exist: %s", file))
		}
	}
}
