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
	"runtime"

	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

// VERSION is the metafast release version.
const VERSION = "0.1.0"

// RootCmd is the base command when metafast is called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "metafast",
	Short: "De Bruijn graph construction and traversal engine",
	Long: fmt.Sprintf(`metafast - De Bruijn graph construction and traversal engine

A command-line toolkit that builds a k-mer De Bruijn graph from short-read
metagenomic samples, emits maximal non-branching unitigs, and projects
further samples onto a fixed list of connected components as normalized
feature vectors.

Version: %s
`, VERSION),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if workers, err := cmd.Flags().GetInt("workers"); err == nil && workers > 0 {
			runtime.GOMAXPROCS(workers)
		}
		if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
			logging.SetLevel(logging.DEBUG, "metafast")
		}
	},
}

// Execute runs RootCmd; the subcommands register themselves with it in
// their own init functions. Called once by main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func init() {
	defaultWorkers := runtime.NumCPU()

	RootCmd.PersistentFlags().IntP("workers", "w", defaultWorkers, "number of goroutine workers to use per stage (default: number of CPUs)")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "print verbose information")
	RootCmd.PersistentFlags().StringP("work-dir", "d", ".", "directory to read/write run artifacts")
}
