package player

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindAlbumArt(t *testing.T) {
	dir := t.TempDir()
	coverPath := touch(t, dir, "cover.jpg")

	if got := FindAlbumArt(filepath.Join(dir, "track.mp3")); got != coverPath {
		t.Errorf("FindAlbumArt() = %q, want %q", got, coverPath)
	}
}

func TestFindAlbumArt_NotFound(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "notes.txt")

	if got := FindAlbumArt(filepath.Join(dir, "track.mp3")); got != "" {
		t.Errorf("FindAlbumArt() = %q, want empty", got)
	}
	if got := FindAlbumArt(""); got != "" {
		t.Errorf("FindAlbumArt(\"\") = %q, want empty", got)
	}
	if got := FindAlbumArt(filepath.Join(dir, "missing", "track.mp3")); got != "" {
		t.Errorf("FindAlbumArt() in missing dir = %q, want empty", got)
	}
}

func TestFindAlbumArt_Priority(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "folder.jpg")
	coverPath := touch(t, dir, "cover.png")

	if got := FindAlbumArt(filepath.Join(dir, "track.mp3")); got != coverPath {
		t.Errorf("FindAlbumArt() = %q, want %q", got, coverPath)
	}
}

func TestFindAlbumArt_CaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	coverPath := touch(t, dir, "Folder.JPG")

	if got := FindAlbumArt(filepath.Join(dir, "track.flac")); got != coverPath {
		t.Errorf("FindAlbumArt() = %q, want %q", got, coverPath)
	}
}

func TestFindAlbumArt_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "cover.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}
	frontPath := touch(t, dir, "front.png")

	if got := FindAlbumArt(filepath.Join(dir, "track.mp3")); got != frontPath {
		t.Errorf("FindAlbumArt() = %q, want %q", got, frontPath)
	}
}
