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
	"text/tabwriter"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ivartb/metafast/pipeline"
	"github.com/ivartb/metafast/shardmap"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report k-mer table size and shard occupancy for a reads sample",
	Long: `info

Builds the frequency table for the given reads (C3) and reports its total
distinct canonical k-mer count plus the occupancy of each shard, the way
unikmer stats reports file-level summary statistics.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if len(opt.Reads) == 0 {
			checkError(fmt.Errorf("info requires at least one --reads file"))
		}
		checkInputFiles(opt.Reads...)

		table := shardmap.New(opt.MaxSize, 0, opt.K)
		runPipeline(opt, table, pipeline.InsertMode)

		reportTableInfo(table)
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)

	infoCmd.Flags().IntP("k", "k", 21, "k-mer length (1-31)")
	infoCmd.Flags().StringP("reads", "r", "", "comma-separated list of FASTA/FASTQ reads files")
	infoCmd.Flags().String("max-size", "1G", "memory budget for the k-mer table")
}

func reportTableInfo(table *shardmap.ShardedMap) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "distinct k-mers:\t%s\n", humanize.Comma(int64(table.Size())))
	fmt.Fprintf(tw, "shards:\t%d\n", table.NumShards())

	perShard := make([]int, table.NumShards())
	for i := 0; i < table.NumShards(); i++ {
		var count int
		table.EachInShard(i, func(_ uint64, _ int64) bool {
			count++
			return true
		})
		perShard[i] = count
	}
	for i, count := range perShard {
		fmt.Fprintf(tw, "shard %d:\t%s entries\n", i, humanize.Comma(int64(count)))
	}
}
