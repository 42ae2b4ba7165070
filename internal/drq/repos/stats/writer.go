package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultRoot is where statistics are written when no output directory is configured.
const DefaultRoot = "_output"

// FileWriter dumps an Accumulator as k-definiteness tables under
// <Root>/m<Mode>/N<PaddingSize>/S<Split>/: M-ALL.txt for all lengths and
// M-<len>.txt per pattern length. Existing files are replaced.
type FileWriter struct {
	Root        string
	Mode        int
	PaddingSize int
	Split       int
}

// Dir returns the directory the tables are written to.
func (w FileWriter) Dir() string {
	root := w.Root
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(root,
		fmt.Sprintf("m%d", w.Mode),
		fmt.Sprintf("N%d", w.PaddingSize),
		fmt.Sprintf("S%d", w.Split))
}

// WriteAll writes every table and returns the paths written.
// Each file is written to a temporary file first and renamed into place, so an
// interrupted run leaves earlier dumps intact.
func (w FileWriter) WriteAll(acc *Accumulator) ([]string, error) {
	dir := w.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	header := fmt.Sprintf("# Statistics for m=%d, N=%d, S=%d, all M", w.Mode, w.PaddingSize, w.Split)
	path := filepath.Join(dir, "M-ALL.txt")
	if err := writeAtomic(path, header, acc.Overall()); err != nil {
		return nil, err
	}
	written := []string{path}

	for _, l := range acc.Lengths() {
		header = fmt.Sprintf("# Statistics for m=%d, N=%d, S=%d, M=%d", w.Mode, w.PaddingSize, w.Split, l)
		path = filepath.Join(dir, fmt.Sprintf("M-%d.txt", l))
		if err := writeAtomic(path, header, acc.ByLength(l)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeAtomic(path, header string, counts map[int]int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmp.Name())
	}()

	if err := WriteTable(tmp, header, counts); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// WriteTable writes header, the column comment and one "k count" row for every
// k from 1 to the largest observed size.
func WriteTable(w io.Writer, header string, counts map[int]int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	fmt.Fprintln(bw, "# k-definiteness count")
	for k := 1; k <= maxKey(counts); k++ {
		fmt.Fprintf(bw, "%d %d\n", k, counts[k])
	}
	return bw.Flush()
}

// WriteSummary prints the mean candidate-set size and the number of samples
// for every pattern length from 1 to the longest recorded, as two vectors:
//
//	results = [1.00, 2.50, ...];
//	samples = [4, 2, ...];
func WriteSummary(w io.Writer, acc *Accumulator) error {
	lengths := acc.Lengths()
	longest := 0
	if len(lengths) > 0 {
		longest = lengths[len(lengths)-1]
	}
	means := make([]string, 0, longest)
	samples := make([]string, 0, longest)
	for l := 1; l <= longest; l++ {
		means = append(means, fmt.Sprintf("%.2f", acc.Mean(l)))
		samples = append(samples, fmt.Sprintf("%d", acc.Samples(l)))
	}
	_, err := fmt.Fprintf(w, "results = [%s];\nsamples = [%s];\n",
		strings.Join(means, ", "), strings.Join(samples, ", "))
	return err
}
