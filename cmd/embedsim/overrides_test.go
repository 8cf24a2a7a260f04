package main

import (
	"reflect"
	"testing"
)

func TestParseOverrides(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "typed values",
			pairs: []string{"max_seq_length=128", "dimensions=256", "pooling=cls"},
			want:  map[string]any{"max_seq_length": 128, "dimensions": 256, "pooling": "cls"},
		},
		{
			name:  "value containing equals",
			pairs: []string{"base_url=http://localhost:8080/v1?x=1"},
			want:  map[string]any{"base_url": "http://localhost:8080/v1?x=1"},
		},
		{
			name:  "bool-like strings stay strings",
			pairs: []string{"task_type=T"},
			want:  map[string]any{"task_type": "T"},
		},
		{
			name:  "numeric strings stay strings",
			pairs: []string{"task_type=123", "organization=42"},
			want:  map[string]any{"task_type": "123", "organization": "42"},
		},
		{
			name:  "empty",
			pairs: nil,
			want:  map[string]any{},
		},
		{name: "missing equals", pairs: []string{"dimensions"}, wantErr: true},
		{name: "missing key", pairs: []string{"=3"}, wantErr: true},
		{name: "non-integer length", pairs: []string{"max_seq_length=long"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOverrides(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseOverrides() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseOverrides() = %v, want %v", got, tt.want)
			}
		})
	}
}
