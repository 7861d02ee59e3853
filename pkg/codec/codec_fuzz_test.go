//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"errors"
	"testing"
)

// FuzzDecode feeds arbitrary bytes to the decoder. It must never panic, and
// whatever it accepts must re-encode to a buffer it accepts again.
func FuzzDecode(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x10})
	f.Add([]byte{0x10, 0, 0, 0, 0})
	f.Add([]byte{0x10, 4, 0, 0, 0, 1, 0, 4, 0x0b})
	f.Add([]byte{0x10, 11, 0, 0, 0, 0x0a, 0, 0x81, 3, 0, 0x0a, 0, 0x9c, 0xff, 0xe8, 3})
	if buf, err := Encode(sampleRecord(f)); err == nil {
		f.Add(buf)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 1<<20 {
			t.Skip("input too large")
		}

		rec, err := Decode(data)
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("decode error is not a *DecodeError: %v", err)
			}
			if rec != nil {
				t.Fatal("decode returned a record together with an error")
			}
			return
		}

		buf, err := Encode(rec)
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		again, err := Decode(buf)
		if err != nil {
			t.Fatalf("decode of re-encoded buffer failed: %v", err)
		}
		if !again.Equal(rec) {
			t.Fatal("re-encoded record differs")
		}
	})
}

// FuzzRoundTrip builds single-entry records from fuzzed integers and blobs.
func FuzzRoundTrip(f *testing.F) {
	f.Add(uint16(1), int64(11), []byte("blob"))
	f.Add(uint16(0xffff), int64(-9999999999), []byte{})
	f.Add(uint16(7), int64(1000), []byte{0, 1, 2})

	f.Fuzz(func(t *testing.T, key uint16, n int64, blob []byte) {
		if len(blob) > 0xffff {
			t.Skip("blob too large")
		}

		rec := NewRecord()
		if err := rec.SetInferred(key, Ints(n, n/2)); err != nil {
			t.Fatalf("set inferred: %v", err)
		}
		if err := rec.SetBlob(key^1, blob, blob); err != nil {
			t.Fatalf("set blob: %v", err)
		}

		buf, err := Encode(rec)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		decoded, err := Decode(buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !decoded.Equal(rec) {
			t.Fatalf("round trip mismatch for key=%d n=%d", key, n)
		}

		again, err := Encode(decoded)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		if !bytes.Equal(buf, again) {
			t.Fatalf("re-encoding differs: %x vs %x", buf, again)
		}
	})
}
