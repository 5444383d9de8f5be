// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package validate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		allowedSchemes []string
		wantErr        bool
	}{
		{"valid http", "http://collector.local/events", []string{"http", "https"}, false},
		{"valid https", "https://collector.local", []string{"http", "https"}, false},
		{"empty url", "", []string{"http"}, true},
		{"no host", "http://", []string{"http"}, true},
		{"invalid scheme", "ftp://collector.local", []string{"http", "https"}, true},
		{"no scheme", "collector.local", []string{"http"}, true},
		{"with port", "http://collector.local:8080/events", []string{"http"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("endpoint", tt.value, tt.allowedSchemes)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{":9090", false},
		{"127.0.0.1:8080", false},
		{"[::1]:0", false},
		{"9090", true},
		{":http", true},
		{":70000", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			v := New()
			v.ListenAddr("listen", tt.addr)
			assert.Equal(t, tt.wantErr, !v.IsValid(), "errors: %v", v.Err())
		})
	}
}

func TestValidator_HostPort(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"localhost:6379", false},
		{"10.0.0.5:9092", false},
		{":6379", true},
		{"localhost", true},
		{"localhost:0", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			v := New()
			v.HostPort("addr", tt.addr)
			assert.Equal(t, tt.wantErr, !v.IsValid(), "errors: %v", v.Err())
		})
	}
}

func TestValidator_Ranges(t *testing.T) {
	v := New()
	v.Range("inRange", 5, 0, 10)
	v.FloatRange("rate", 0.5, 0, 1)
	v.PositiveDuration("interval", time.Second)
	v.NonNegativeDuration("delay", 0)
	v.Positive("threshold", 3)
	v.NonNegative("retries", 0)
	require.True(t, v.IsValid(), "unexpected errors: %v", v.Err())

	v.Range("low", -1, 0, 10)
	v.FloatRange("rate", 1.5, 0, 1)
	v.PositiveDuration("interval", 0)
	v.NonNegativeDuration("delay", -time.Second)
	v.Positive("threshold", 0)
	v.NonNegative("retries", -2)
	assert.Len(t, v.Errors(), 6)
}

func TestValidator_OneOfAndNotEmpty(t *testing.T) {
	v := New()
	v.OneOf("kind", "kafka", []string{"http", "kafka", "file"})
	v.NotEmpty("topic", "analytics")
	require.True(t, v.IsValid())

	v.OneOf("kind", "smtp", []string{"http", "kafka", "file"})
	v.NotEmpty("topic", "   ")
	require.Len(t, v.Errors(), 2)
	assert.Equal(t, "kind", v.Errors()[0].Field)
	assert.Equal(t, "topic", v.Errors()[1].Field)
}

func TestValidator_Directory(t *testing.T) {
	root := t.TempDir()

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(root, "spool")
		v := New()
		v.Directory("spool", dir, false)
		require.True(t, v.IsValid(), "unexpected errors: %v", v.Err())
		assert.DirExists(t, dir)
	})

	t.Run("must exist", func(t *testing.T) {
		v := New()
		v.Directory("spool", filepath.Join(root, "absent"), true)
		assert.False(t, v.IsValid())
	})

	t.Run("rejects traversal", func(t *testing.T) {
		v := New()
		v.Directory("spool", "../outside", false)
		assert.False(t, v.IsValid())
	})

	t.Run("rejects regular file", func(t *testing.T) {
		file := filepath.Join(root, "plain")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		v := New()
		v.Directory("spool", file, true)
		assert.False(t, v.IsValid())
	})
}

func TestValidator_File(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "city.mmdb")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	v := New()
	v.File("db", file)
	require.True(t, v.IsValid())

	v.File("db", root)
	v.File("db", filepath.Join(root, "missing.mmdb"))
	assert.Len(t, v.Errors(), 2)
}

func TestValidationErrorAggregates(t *testing.T) {
	v := New()
	require.NoError(t, v.Err())

	v.AddError("a", "first", 1)
	v.AddError("b", "second", 2)
	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed for a: first; validation failed for b: second", err.Error())

	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors(), 2)

	// The returned error is detached from later additions.
	v.AddError("c", "third", 3)
	assert.Len(t, verr.Errors(), 2)
}
