package cli

import (
	"io"
	"path/filepath"
	"testing"
)

func TestUserDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name   string
		env    string
		envVal string
		get    func() (string, error)
		want   string
	}{
		{"cache default", "XDG_CACHE_HOME", "", cacheDir, filepath.Join(home, ".cache", appName)},
		{"cache xdg", "XDG_CACHE_HOME", "/srv/cache", cacheDir, filepath.Join("/srv/cache", appName)},
		{"data default", "XDG_DATA_HOME", "", dataDir, filepath.Join(home, ".local", "share", appName)},
		{"data xdg", "XDG_DATA_HOME", "/srv/data", dataDir, filepath.Join("/srv/data", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.envVal)
			got, err := tt.get()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileCacheDir_Config(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/srv/cache")
	c := New(io.Discard, LogInfo)

	got, err := c.fileCacheDir()
	if err != nil || got != filepath.Join("/srv/cache", appName) {
		t.Errorf("fileCacheDir() = %q, %v, want the XDG default", got, err)
	}

	c.Config.Cache.Dir = "/var/cache/diagrams"
	if got, _ := c.fileCacheDir(); got != "/var/cache/diagrams" {
		t.Errorf("fileCacheDir() = %q, want the configured dir", got)
	}
}
