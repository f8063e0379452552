// Package obscuretestdata provides utility functions to help store
// test data in a less "grep-able" way. Rationale is described in
// golang.org/issue/34986.
package obscuretestdata

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFile is like os.ReadFile, but if the file is named *.base64,
// it transparently decodes the base64 file content.
func ReadFile(file string) ([]byte, error) {
	if !strings.HasSuffix(file, ".base64") {
		return os.ReadFile(file)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	b = bytes.ReplaceAll(b, []byte("\n"), nil)
	out := make([]byte, base64.StdEncoding.DecodedLen(len(b)))
	n, err := base64.StdEncoding.Decode(out, b)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// Rewrite reads the named file and writes it back out in base64-encoded
// form to the out path, for producing less "grep-able" testdata files.
func Rewrite(file, out string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	outf, err := os.Create(out)
	if err != nil {
		return err
	}
	defer outf.Close()

	enc := base64.NewEncoder(base64.StdEncoding, outf)
	if _, err := io.Copy(enc, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("writing %s: %v", out, err)
	}
	return enc.Close()
}
