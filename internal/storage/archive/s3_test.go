// internal/storage/archive/s3_test.go
package archive

import (
	"testing"
)

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	if _, err := NewS3(S3Config{Region: "us-east-1"}); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestNewS3(t *testing.T) {
	s, err := NewS3(S3Config{
		Bucket:   "watchlists",
		Region:   "us-east-1",
		Endpoint: "http://localhost:9000",
		Prefix:   "/gems/",
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if s.Name() != "s3" {
		t.Errorf("unexpected name %s", s.Name())
	}
	if s.prefix != "gems" {
		t.Errorf("expected trimmed prefix, got %q", s.prefix)
	}
}

func TestS3Config_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "file.csv", "file.csv"},
		{"archive", "file.csv", "archive/file.csv"},
		{"archive", "/file.csv", "archive/file.csv"},
	}

	for _, tt := range tests {
		s := &S3Storage{prefix: tt.prefix}
		got := s.key(tt.path)
		if got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}
