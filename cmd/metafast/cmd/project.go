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
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivartb/metafast/component"
	"github.com/ivartb/metafast/kmerfile"
	"github.com/ivartb/metafast/seqio"
	"github.com/ivartb/metafast/shardmap"
	"github.com/ivartb/metafast/vector"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project one or more samples onto a fixed component list as feature vectors",
	Long: `project

Loads the component list written by a prior "build" run (or any compatible
components file) and projects each given sample — reads files or .kmc
k-mer count files — onto it (C7), writing one normalized feature vector
per sample to --work-dir/vectors/<sample-basename>.vec.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if opt.ComponentsFile == "" {
			checkError(fmt.Errorf("project requires --components-file"))
		}
		if len(opt.Reads) == 0 && len(opt.Kmers) == 0 {
			checkError(fmt.Errorf("project requires --reads or --kmers"))
		}
		checkInputFiles(opt.ComponentsFile)

		components := loadComponents(opt.ComponentsFile)
		if opt.Verbose {
			log.Infof("loaded %d components from %s", len(components), opt.ComponentsFile)
		}

		table := shardmap.New(opt.MaxSize, 0, opt.K)
		builder := &vector.Builder{
			Table:      table,
			Components: components,
			K:          opt.K,
			Tau:        int64(opt.Threshold),
			Workers:    opt.Workers,
		}

		for _, readsFile := range opt.Reads {
			checkInputFiles(readsFile)
			builder.Seed()

			it, err := seqio.Open(readsFile)
			checkError(err)
			v, err := builder.FromReads(context.Background(), it)
			checkError(err)
			checkError(it.Close())

			writeVector(opt, readsFile, v)
		}

		for _, kmersFile := range opt.Kmers {
			checkInputFiles(kmersFile)
			builder.Seed()

			r, err := openKmerFile(kmersFile)
			checkError(err)
			v, err := builder.FromKmerCounts(r)
			checkError(err)

			writeVector(opt, kmersFile, v)
		}
	},
}

func init() {
	RootCmd.AddCommand(projectCmd)

	projectCmd.Flags().IntP("k", "k", 21, "k-mer length (1-31), must match the value used to build --components-file")
	projectCmd.Flags().StringP("reads", "r", "", "comma-separated list of FASTA/FASTQ samples to project")
	projectCmd.Flags().String("kmers", "", "comma-separated list of .kmc k-mer count files to project")
	projectCmd.Flags().String("components-file", "", "binary component list, as written by 'build'")
	projectCmd.Flags().Int("threshold", 0, "minimum count (exclusive) for a k-mer to contribute to its component's sum")
	projectCmd.Flags().String("max-size", "1G", "memory budget for the projection table")
}

func loadComponents(path string) []component.Component {
	r, err := inStream(path)
	checkError(err)
	defer r.Close()

	cs, err := component.NewReader(r).ReadAll()
	checkError(err)
	return cs
}

func openKmerFile(path string) (*kmerfile.Reader, error) {
	r, err := inStream(path)
	if err != nil {
		return nil, err
	}
	return kmerfile.NewReader(r)
}

func writeVector(opt *Options, sampleFile string, v []float64) {
	base := filepath.Base(sampleFile)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	path := filepath.Join(opt.WorkDir, "vectors", base+".vec")

	ensureDir(path)
	w, err := outStream(path)
	checkError(err)
	defer w.Close()
	bw := bufferedWriter(w)
	defer bw.Flush()

	for _, x := range v {
		fmt.Fprintln(bw, vector.FormatFeature(x))
	}

	if opt.Verbose {
		log.Infof("wrote feature vector for %s to %s", sampleFile, path)
	}
}
