package options

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/botirk38/embedsim/config"
	"github.com/botirk38/embedsim/embcache"
	"github.com/botirk38/embedsim/registry"
	"github.com/botirk38/embedsim/types"
)

type mockStore struct {
	closed bool
}

func (m *mockStore) Get(context.Context, string) ([]float32, bool, error) { return nil, false, nil }
func (m *mockStore) Set(context.Context, string, []float32) error        { return nil }
func (m *mockStore) Close() error {
	m.closed = true
	return nil
}

func TestConfigCreation(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		cfg := NewConfig()
		if cfg.Settings == nil {
			t.Error("Expected default settings")
		}
		if cfg.Logger == nil {
			t.Error("Expected default logger")
		}
		if len(cfg.Models) != len(registry.BuiltinModels()) {
			t.Errorf("Expected built-in models, got %d", len(cfg.Models))
		}
		if cfg.Store != nil {
			t.Error("Expected no embedding store by default")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Default config should validate: %v", err)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Settings = nil
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error for missing settings")
		}

		cfg = NewConfig()
		cfg.Settings.Logging.Level = "loud"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error for bad settings")
		}
	})
}

func TestModelID(t *testing.T) {
	cfg := NewConfig()
	if got := cfg.ModelID(); got != registry.DefaultModelID {
		t.Errorf("ModelID() = %q, want fallback", got)
	}

	cfg.Settings.Model = "google/text-embedding-004"
	if got := cfg.ModelID(); got != "google/text-embedding-004" {
		t.Errorf("ModelID() = %q, want settings model", got)
	}

	if err := cfg.Apply(WithDefaultModel("openai/text-embedding-3-large")); err != nil {
		t.Fatal(err)
	}
	if got := cfg.ModelID(); got != "openai/text-embedding-3-large" {
		t.Errorf("ModelID() = %q, want explicit default", got)
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{"nil settings", WithConfig(nil), true},
		{"settings", WithConfig(config.Defaults()), false},
		{"nil logger", WithLogger(nil), true},
		{"logger", WithLogger(zap.NewNop()), false},
		{"no models", WithModels(), true},
		{"models", WithModels(types.ModelDescriptor{ID: "x", Kind: types.KindRemoteAPI}), false},
		{"nil factory", WithFactory(nil), true},
		{"empty default model", WithDefaultModel(""), true},
		{"zero LRU", WithLRUCache(0), true},
		{"LRU", WithLRUCache(8), false},
		{"LFU", WithMemoryCache(embcache.PolicyLFU, 8), false},
		{"unknown policy", WithMemoryCache("mru", 8), true},
		{"nil store", WithEmbeddingStore(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig().Apply(tt.opt)
			if (err != nil) != tt.wantErr {
				t.Errorf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStoreOwnership(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Apply(WithLRUCache(4)); err != nil {
		t.Fatal(err)
	}
	if !cfg.OwnsStore {
		t.Error("LRU store created by an option should be owned")
	}
	if _, ok := cfg.Store.(*embcache.LRUStore); !ok {
		t.Errorf("Store = %T, want *embcache.LRUStore", cfg.Store)
	}

	external := &mockStore{}
	if err := cfg.Apply(WithEmbeddingStore(external)); err != nil {
		t.Fatal(err)
	}
	if cfg.OwnsStore {
		t.Error("caller-supplied store must not be owned")
	}

	owned := &mockStore{}
	cfg.setOwnedStore(owned)
	failing := func(*Config) error { return errors.New("boom") }
	if err := cfg.Apply(failing); err == nil {
		t.Fatal("expected error")
	}
	if !owned.closed {
		t.Error("owned store should be closed when Apply fails")
	}
	if external.closed {
		t.Error("external store must never be closed")
	}
}

func TestWithConfigFileMissing(t *testing.T) {
	if err := NewConfig().Apply(WithConfigFile(t.TempDir() + "/missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
