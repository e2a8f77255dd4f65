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

	"github.com/spf13/cobra"

	"github.com/ivartb/metafast/pipeline"
	"github.com/ivartb/metafast/shardmap"
)

var histogramCmd = &cobra.Command{
	Use:   "histogram",
	Short: "Count k-mers and dump the frequency histogram, without building a graph",
	Long: `histogram

Runs C3 alone over the given reads and writes --work-dir/distribution, the
same file "build" writes as a side effect. Useful for picking
--bottom-cut-percent interactively before committing to a full build,
mirroring unikmer stats' standalone-diagnostic role.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if len(opt.Reads) == 0 {
			checkError(fmt.Errorf("histogram requires at least one --reads file"))
		}
		checkInputFiles(opt.Reads...)

		table := shardmap.New(opt.MaxSize, 0, opt.K)
		if opt.Verbose {
			log.Infof("counting k-mers from %d read file(s)", len(opt.Reads))
		}
		runPipeline(opt, table, pipeline.InsertMode)

		hist := buildHistogram(table)
		writeDistribution(opt, hist)

		if opt.Verbose {
			log.Infof("distribution written to %s/distribution", opt.WorkDir)
		}
	},
}

func init() {
	RootCmd.AddCommand(histogramCmd)

	histogramCmd.Flags().IntP("k", "k", 21, "k-mer length (1-31)")
	histogramCmd.Flags().StringP("reads", "r", "", "comma-separated list of FASTA/FASTQ reads files")
	histogramCmd.Flags().String("max-size", "1G", "memory budget for the k-mer table")
}
