// Package dump prints records and raw buffers for debugging.
package dump

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ssargent/sdbuf/pkg/codec"
)

// BytesPerLine is the width of one Hex line.
const BytesPerLine = 16

// Debug writes one line per element of rec followed by the encoded size and
// the overhead compared to the same values packed into a plain struct.
func Debug(w io.Writer, rec *codec.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE\tINDEX\tVALUE\tRAW")

	packed := 0
	rec.Range(func(key uint16, e codec.Entry) bool {
		packed += e.Len() * e.ElemSize()
		for i, v := range e.Values() {
			fmt.Fprintf(tw, "%04x\t%s\t%d/%d\t%s\t0x%s\n",
				key, e.Type, i, e.Len(), formatValue(v), hex.EncodeToString(e.ElementBytes(i)))
		}
		return true
	})
	if err := tw.Flush(); err != nil {
		return err
	}

	total := codec.EncodedSize(rec)
	if _, err := fmt.Fprintf(w, "size: %d bytes, value section %d bytes\n",
		total, total-codec.ValueSectionOffset); err != nil {
		return err
	}
	if packed == 0 {
		_, err := fmt.Fprintln(w, "packed struct would have been: 0 bytes")
		return err
	}
	_, err := fmt.Fprintf(w, "packed struct would have been: %d bytes. %d%% overhead\n",
		packed, 100*total/packed-100)
	return err
}

func formatValue(v codec.Value) string {
	switch x := v.(type) {
	case codec.IntValue:
		return strconv.FormatInt(int64(x), 10)
	case codec.UintValue:
		return strconv.FormatUint(uint64(x), 10)
	case codec.FloatValue:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case codec.BlobValue:
		return fmt.Sprintf("%d bytes", len(x))
	}
	return "?"
}

// Hex writes b as offset-prefixed lines of sixteen bytes, grouped by four:
//
//	00000000  10160000_00010004_0b020001_22ff0300
func Hex(w io.Writer, b []byte) error {
	for off := 0; off < len(b); off += BytesPerLine {
		end := min(off+BytesPerLine, len(b))
		if _, err := fmt.Fprintf(w, "%08x  %s\n", off, groupByFour(b[off:end])); err != nil {
			return err
		}
	}
	return nil
}

func groupByFour(b []byte) string {
	groups := make([]string, 0, (len(b)+3)/4)
	for i := 0; i < len(b); i += 4 {
		groups = append(groups, hex.EncodeToString(b[i:min(i+4, len(b))]))
	}
	return strings.Join(groups, "_")
}
