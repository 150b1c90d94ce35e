package assemble

import (
	"bufio"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/msefunds/internal/dataset"
)

// Artifact describes a written dataset file.
type Artifact struct {
	Path  string
	Bytes int64

	// Digest is the hex SHA3-256 of the file content.
	Digest string
}

// WriteTSV writes ds to path as a header line followed by one line per
// row, tab-separated. The file is written to a temporary name in the same
// directory and renamed into place, so readers never see a partial file.
func WriteTSV(path string, ds *dataset.Dataset) (*Artifact, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	hash := sha3.New256()
	counter := &countingWriter{}
	buf := bufio.NewWriter(io.MultiWriter(tmp, hash, counter))

	if err := EncodeTSV(buf, ds); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := buf.Flush(); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("failed to sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil { //nolint:gosec // dataset is meant to be shared
		return nil, fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("failed to move output into place: %w", err)
	}

	return &Artifact{
		Path:   path,
		Bytes:  counter.n,
		Digest: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// EncodeTSV writes ds to w. Fields containing a tab, a quote or a line
// break are quoted.
func EncodeTSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range ds.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
