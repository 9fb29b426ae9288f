package storage

import (
	"errors"
	"testing"

	"adhesim/internal/model"
)

func TestNewStoreMemory(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	if store == nil {
		t.Fatal("expected non-nil store")
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close memory store: %v", err)
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("postgres", "")
	if !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := NewStore("sqlite", ""); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing db path, got %v", err)
	}
}

func TestNewStoreNormalizesKind(t *testing.T) {
	store, err := NewStore(" Memory ", "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestDefaultStoreKindIsBuildable(t *testing.T) {
	if _, err := NewStore(DefaultStoreKind(), "unused.db"); err != nil {
		t.Fatalf("default store kind %q: %v", DefaultStoreKind(), err)
	}
}
