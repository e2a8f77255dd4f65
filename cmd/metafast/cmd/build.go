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
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivartb/metafast/component"
	"github.com/ivartb/metafast/graph"
	"github.com/ivartb/metafast/kmer"
	"github.com/ivartb/metafast/pipeline"
	"github.com/ivartb/metafast/seqio"
	"github.com/ivartb/metafast/shardmap"
	"github.com/ivartb/metafast/threshold"
	"github.com/ivartb/metafast/vector"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the De Bruijn graph from reads and emit unitig sequences",
	Long: `build

Reads one or more FASTA/FASTQ samples (C3), picks an erroneous-kmer
threshold from the resulting frequency histogram (C6), bans branching
k-mers (C4), walks out maximal non-branching unitigs (C5), and writes the
unitig k-mer set (C8) for an external component-finder to consume.

Writes to --work-dir: sequences.fasta, seq-info, distribution,
component-kmers.bin.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if len(opt.Reads) == 0 {
			checkError(fmt.Errorf("build requires at least one --reads file"))
		}
		checkInputFiles(opt.Reads...)

		table := shardmap.New(opt.MaxSize, 0, opt.K)

		if opt.Verbose {
			log.Infof("counting k-mers from %d read file(s)", len(opt.Reads))
		}
		runPipeline(opt, table, pipeline.InsertMode)

		hist := buildHistogram(table)
		tau, err := threshold.Select(threshold.Config{
			MaximalBadFrequency: opt.MaximalBadFrequency,
			BottomCutPercent:    opt.BottomCutPercent,
		}, hist)
		checkError(err)
		if opt.Verbose {
			log.Infof("selected erroneous-kmer threshold tau=%d", tau)
		}

		writeDistribution(opt, hist)

		graph.BanBranching(table, opt.K, int64(tau), opt.Workers)

		tr := &graph.Traverser{
			Table:   table,
			K:       opt.K,
			Tau:     int64(tau),
			MinLen:  opt.SequenceLen,
			Workers: opt.Workers,
		}
		unitigs, errCh := tr.Run(context.Background())

		writeUnitigs(opt, unitigs)
		checkError(<-errCh)
	},
}

func init() {
	RootCmd.AddCommand(buildCmd)

	buildCmd.Flags().IntP("k", "k", 21, "k-mer length (1-31)")
	buildCmd.Flags().StringP("reads", "r", "", "comma-separated list of FASTA/FASTQ reads files")
	buildCmd.Flags().IntP("sequence-len", "l", 1, "minimum unitig length (in bases) to emit")
	buildCmd.Flags().Int("maximal-bad-frequency", 0, "treat k-mers occurring at most this many times as erroneous (mutually exclusive with --bottom-cut-percent)")
	buildCmd.Flags().Float64("bottom-cut-percent", 0, "cut the bottom percent of the k-mer mass as erroneous (mutually exclusive with --maximal-bad-frequency)")
	buildCmd.Flags().String("max-size", "1G", "memory budget for the k-mer table, e.g. 512M, 4G")
}

func runPipeline(opt *Options, table *shardmap.ShardedMap, mode pipeline.UpdateMode) {
	its := make([]seqio.Iterator, 0, len(opt.Reads))
	for _, f := range opt.Reads {
		it, err := seqio.Open(f)
		checkError(err)
		its = append(its, it)
	}
	chain := seqio.NewChain(its...)
	defer chain.Close()

	p := &pipeline.Pipeline{K: opt.K, Workers: opt.Workers, Table: table, Mode: mode}
	checkError(p.Run(context.Background(), chain))
}

// buildHistogram tallies h[i] = number of distinct canonical k-mers with
// count exactly i, saturating the last bucket at STAT_LEN-1, per spec.md
// §4.6's histogram contract.
func buildHistogram(table *shardmap.ShardedMap) []int64 {
	hist := make([]int64, threshold.STAT_LEN)
	table.Entries(func(_ uint64, value int64) bool {
		if value < 0 {
			return true // skip already-banned entries
		}
		i := value
		if i >= threshold.STAT_LEN {
			i = threshold.STAT_LEN - 1
		}
		hist[i]++
		return true
	})
	return hist
}

func writeDistribution(opt *Options, hist []int64) {
	path := filepath.Join(opt.WorkDir, "distribution")
	ensureDir(path)
	w, err := outStream(path)
	checkError(err)
	defer w.Close()
	bw := bufferedWriter(w)
	defer bw.Flush()

	for i := 1; i < len(hist); i++ {
		fmt.Fprintf(bw, "%d\t%d\n", i, hist[i])
	}
}

func writeUnitigs(opt *Options, unitigs <-chan graph.Unitig) {
	fastaPath := filepath.Join(opt.WorkDir, "sequences.fasta")
	infoPath := filepath.Join(opt.WorkDir, "seq-info")
	kmersPath := filepath.Join(opt.WorkDir, "component-kmers.bin")

	ensureDir(fastaPath)
	fw, err := outStream(fastaPath)
	checkError(err)
	defer fw.Close()
	fbw := bufferedWriter(fw)
	defer fbw.Flush()

	iw, err := outStream(infoPath)
	checkError(err)
	defer iw.Close()
	ibw := bufferedWriter(iw)
	defer ibw.Flush()

	kw, err := outStream(kmersPath)
	checkError(err)
	defer kw.Close()
	cwriter := component.NewWriter(kw)

	n := 0
	for u := range unitigs {
		n++
		fmt.Fprintf(fbw, ">unitig_%d length=%d sum_weight=%s min_weight=%s max_weight=%s\n%s\n",
			n, u.Length(), vector.FormatFeature(float64(u.Sum)), vector.FormatFeature(float64(u.Min)), vector.FormatFeature(float64(u.Max)), u.Seq)
		fmt.Fprintf(ibw, "%d\t%s\n", u.Length(), vector.FormatFeature(u.Weight))

		kmers := unitigKmers(u.Seq, opt.K)
		checkError(cwriter.Write(component.Component{Kmers: kmers}))
	}

	if opt.Verbose {
		log.Infof("%d unitigs written to %s", n, fastaPath)
	}
}

// unitigKmers re-derives the canonical k-mer set spanned by a unitig's own
// sequence, for the external component-finder's input file.
func unitigKmers(seq []byte, k int) []uint64 {
	if len(seq) < k {
		return nil
	}
	out := make([]uint64, 0, len(seq)-k+1)
	for i := 0; i+k <= len(seq); i++ {
		code, err := kmer.Encode(seq[i : i+k])
		if err != nil {
			continue
		}
		out = append(out, kmer.Canonical(code, k))
	}
	return out
}
