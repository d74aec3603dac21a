package store

import (
	"bytes"
	"testing"
)

type payload struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadJSON(t *testing.T) {
	s := openTestStore(t)

	in := payload{Name: "state", Count: 3, Tags: []string{"a", "b"}}
	if err := s.SaveJSON("test:state", in); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	if !s.Has("test:state") {
		t.Fatal("key missing after save")
	}

	var out payload
	if err := s.LoadJSON("test:state", &out); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if out.Name != in.Name || out.Count != in.Count || len(out.Tags) != 2 {
		t.Errorf("round trip = %+v", out)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveJSON("test:gone", payload{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("test:gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Has("test:gone") {
		t.Error("key still present after delete")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte("trigger "), 512)
	packed, err := compress(raw)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(packed) >= len(raw) {
		t.Errorf("repetitive input did not shrink: %d >= %d", len(packed), len(raw))
	}
	back, err := decompress(packed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(raw, back) {
		t.Error("round trip lost data")
	}
}
