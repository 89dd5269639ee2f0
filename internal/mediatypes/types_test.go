package mediatypes

import "testing"

func TestGetKind(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want MediaKind
	}{
		{"JPEG", ".jpg", KindPhoto},
		{"JPEG long", ".jpeg", KindPhoto},
		{"PNG", ".png", KindPhoto},
		{"WebP", ".webp", KindPhoto},
		{"MP4", ".mp4", KindVideo},
		{"MOV", ".mov", KindVideo},
		{"WebM", ".webm", KindVideo},
		{"Unknown", ".pdf", KindOther},
		{"Empty", "", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetKind(tt.ext); got != tt.want {
				t.Errorf("GetKind(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".jpg", "image/jpeg"},
		{".png", "image/png"},
		{".mp4", "video/mp4"},
		{".xyz", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.ext); got != tt.want {
			t.Errorf("GetMimeType(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestIsProcessableImage(t *testing.T) {
	if !IsProcessableImage("image/jpeg") {
		t.Error("image/jpeg should be processable")
	}
	if !IsProcessableImage("image/webp") {
		t.Error("image/webp should be processable")
	}
	if IsProcessableImage("image/gif") {
		t.Error("image/gif should not be processable")
	}
	if IsProcessableImage("video/mp4") {
		t.Error("video/mp4 should not be processable")
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"JPEG", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"PNG", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"GIF", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"WebP", []byte{0x52, 0x49, 0x46, 0x46, 0, 0, 0, 0, 0x57, 0x45, 0x42, 0x50}, "webp"},
		{"MP4", append([]byte{0, 0, 0, 0x18, 0x66, 0x74, 0x79, 0x70}, []byte("isom")...), "mp4-container"},
		{"MOV", append([]byte{0, 0, 0, 0x14, 0x66, 0x74, 0x79, 0x70}, []byte("qt  ")...), "mov"},
		{"WebM", []byte{0x1A, 0x45, 0xDF, 0xA3}, "webm"},
		{"Unknown", []byte{0x00, 0x01, 0x02, 0x03}, "unknown"},
		{"Empty", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffMime(t *testing.T) {
	if got := SniffMime([]byte{0xFF, 0xD8, 0xFF}); got != "image/jpeg" {
		t.Errorf("SniffMime(jpeg header) = %q", got)
	}
	if got := SniffMime([]byte{1, 2, 3}); got != "application/octet-stream" {
		t.Errorf("SniffMime(garbage) = %q", got)
	}
}
