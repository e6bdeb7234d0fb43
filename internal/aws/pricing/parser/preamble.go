package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

var (
	headerMarker = []byte(`"SKU",`)
	utf8BOM      = []byte("\xef\xbb\xbf")
)

// SkipPreamble discards the metadata lines ("FormatVersion", "Disclaimer",
// "Publication Date"...) that precede the CSV header. The returned reader starts
// at the header line and reports how many lines were skipped.
func SkipPreamble(r io.Reader) (io.Reader, int, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	skipped := 0
	for {
		line, err := br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			// Overlong preamble line; drain the rest of it.
			for err == bufio.ErrBufferFull {
				_, err = br.ReadSlice('\n')
			}
			if err != nil && err != io.EOF {
				return nil, skipped, fmt.Errorf("failed to read price list preamble: %w", err)
			}
			skipped++
			if err == io.EOF {
				return nil, skipped, fmt.Errorf("price list header not found")
			}
			continue
		}
		if trimmed := bytes.TrimPrefix(line, utf8BOM); bytes.HasPrefix(trimmed, headerMarker) {
			header := append([]byte(nil), trimmed...)
			return io.MultiReader(bytes.NewReader(header), br), skipped, nil
		}
		if err == io.EOF {
			return nil, skipped, fmt.Errorf("price list header not found")
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to read price list preamble: %w", err)
		}
		skipped++
	}
}
