//go:build bench
// +build bench

package codec

import (
	"bytes"
	"testing"
)

func benchRecords(b *testing.B) map[string]*Record {
	b.Helper()

	small := NewRecord()
	if err := small.SetUnsigned(1, 11); err != nil {
		b.Fatal(err)
	}

	wide := make([]Value, 1024)
	for i := range wide {
		wide[i] = IntValue(int64(i) - 512)
	}
	array := NewRecord()
	if err := array.Set(1, S32, wide...); err != nil {
		b.Fatal(err)
	}

	blobs := NewRecord()
	for k := uint16(0); k < 64; k++ {
		if err := blobs.SetBlob(k, bytes.Repeat([]byte{byte(k)}, 256)); err != nil {
			b.Fatal(err)
		}
	}

	return map[string]*Record{
		"small":  small,
		"sample": sampleRecord(b),
		"array":  array,
		"blobs":  blobs,
	}
}

func BenchmarkEncode(b *testing.B) {
	c := NewCodec()
	for name, rec := range benchRecords(b) {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Encode(rec); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	c := NewCodec()
	for name, rec := range benchRecords(b) {
		buf, err := c.Encode(rec)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(buf)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Decode(buf); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkInfer(b *testing.B) {
	values := Ints(10, -100, 1000, 70000, -3)
	for i := 0; i < b.N; i++ {
		if _, err := Infer(values); err != nil {
			b.Fatal(err)
		}
	}
}
