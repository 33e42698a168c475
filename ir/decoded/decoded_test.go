package decoded

import (
	"bytes"
	"compress/zlib"
	"context"
	"testing"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
)

func flateCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeStreams(t *testing.T) {
	plain := []byte("BT /F1 12 Tf (Hello) Tj ET")

	flateDict := raw.Dict()
	flateDict.Set(raw.NameObj{Val: "Filter"}, raw.NameLiteral("FlateDecode"))
	plainDict := raw.Dict()
	badDict := raw.Dict()
	badDict.Set(raw.NameObj{Val: "Filter"}, raw.NameLiteral("FlateDecode"))

	doc := &raw.Document{Objects: map[raw.ObjectRef]raw.Object{
		{Num: 1}: raw.NewStream(flateDict, flateCompress(t, plain)),
		{Num: 2}: raw.NewStream(plainDict, []byte("uncompressed")),
		{Num: 3}: raw.NewStream(badDict, []byte("not zlib at all")),
		{Num: 4}: raw.NumberInt(7),
	}}

	dec := NewDecoder(Config{Parallelism: 2})
	out, err := dec.Decode(context.Background(), doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got, ok := out.StreamData(raw.ObjectRef{Num: 1}); !ok || !bytes.Equal(got, plain) {
		t.Errorf("stream 1 = %q ok=%v, want %q", got, ok, plain)
	}
	if got, ok := out.StreamData(raw.ObjectRef{Num: 2}); !ok || string(got) != "uncompressed" {
		t.Errorf("stream 2 = %q ok=%v", got, ok)
	}
	if _, ok := out.StreamData(raw.ObjectRef{Num: 3}); ok {
		t.Error("stream 3 should have failed to decode")
	}
	if _, ok := out.Failed[raw.ObjectRef{Num: 3}]; !ok {
		t.Error("stream 3 missing from Failed")
	}
	if _, ok := out.StreamData(raw.ObjectRef{Num: 4}); ok {
		t.Error("non-stream object should not appear in Streams")
	}
}

func TestIndirectDecodeParms(t *testing.T) {
	parms := raw.Dict()
	parms.Set(raw.NameObj{Val: "Predictor"}, raw.NumberInt(1))

	dict := raw.Dict()
	dict.Set(raw.NameObj{Val: "Filter"}, raw.NameLiteral("FlateDecode"))
	dict.Set(raw.NameObj{Val: "DecodeParms"}, raw.Ref(9, 0))

	plain := []byte("payload")
	doc := &raw.Document{Objects: map[raw.ObjectRef]raw.Object{
		{Num: 1}: raw.NewStream(dict, flateCompress(t, plain)),
		{Num: 9}: parms,
	}}

	out, err := NewDecoder(Config{}).Decode(context.Background(), doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, ok := out.StreamData(raw.ObjectRef{Num: 1}); !ok || !bytes.Equal(got, plain) {
		t.Errorf("stream 1 = %q ok=%v, want %q", got, ok, plain)
	}
}
