package store

import (
	"bytes"
	"context"
	"testing"
)

func TestMemoryEmptyLoad(t *testing.T) {
	m := NewMemory(nil)
	data, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for an empty store, got %q", data)
	}
}

func TestMemorySaveLoad(t *testing.T) {
	m := NewMemory(nil)
	if err := m.Save(context.Background(), []byte(`{"v":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(data, []byte(`{"v":1}`)) {
		t.Fatalf("unexpected payload: %q", data)
	}
}

func TestMemoryCopiesPayload(t *testing.T) {
	src := []byte("original")
	m := NewMemory(src)
	src[0] = 'X'

	data, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "original" {
		t.Fatalf("seed must be copied, got %q", data)
	}

	// mutating the loaded slice must not leak into the store
	data[0] = 'Y'
	again, _ := m.Load(context.Background())
	if string(again) != "original" {
		t.Fatalf("load must return a copy, got %q", again)
	}
}
