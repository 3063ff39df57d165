package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		arg     string
		wantURL string
		wantID  string
	}{
		{"tAP1eZYEuKA", "https://www.youtube.com/watch?v=tAP1eZYEuKA", "tAP1eZYEuKA"},
		{" tAP1eZYEuKA ", "https://www.youtube.com/watch?v=tAP1eZYEuKA", "tAP1eZYEuKA"},
		{"https://www.youtube.com/watch?v=tAP1eZYEuKA", "https://www.youtube.com/watch?v=tAP1eZYEuKA", "tAP1eZYEuKA"},
		{"https://youtu.be/tAP1eZYEuKA", "https://youtu.be/tAP1eZYEuKA", "tAP1eZYEuKA"},
		{"https://example.com/video", "https://example.com/video", "https://example.com/video"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			gotURL, gotID := ParseArg(tt.arg)
			if gotURL != tt.wantURL || gotID != tt.wantID {
				t.Errorf("ParseArg(%q) = %q, %q; want %q, %q", tt.arg, gotURL, gotID, tt.wantURL, tt.wantID)
			}
		})
	}
}

func TestIsLikelyCommand(t *testing.T) {
	tests := map[string]bool{
		"serv":                         true,
		"versoin":                      true,
		"tAP1eZYEuKA":                  false,
		"https://youtu.be/tAP1eZYEuKA": false,
	}
	for arg, want := range tests {
		if got := IsLikelyCommand(arg); got != want {
			t.Errorf("IsLikelyCommand(%q) = %v, want %v", arg, got, want)
		}
	}
}

func TestValidateModel(t *testing.T) {
	if err := ValidateModel("gpt-4o-mini"); err != nil {
		t.Errorf("gpt-4o-mini should be supported: %v", err)
	}
	if err := ValidateModel("gpt-2"); err == nil {
		t.Error("gpt-2 should be rejected")
	}
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	existing := base + "/existing"
	nested := base + "/a/b/c"
	if err := EnsureDirs(base, existing, nested); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{existing, nested} {
		if !FileExists(dir) {
			t.Errorf("%s was not created", dir)
		}
	}
}

func TestCleanupTempDirKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "audio-1234.webm")
	foreign := filepath.Join(dir, "notes.txt")
	for _, p := range []string{artifact, foreign} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	if err := CleanupTempDir(dir); err != nil {
		t.Fatalf("CleanupTempDir: %v", err)
	}
	if FileExists(artifact) {
		t.Error("artifact should have been removed")
	}
	if !FileExists(foreign) {
		t.Error("foreign file should have been kept")
	}

	if err := CleanupTempDir(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("missing dir should not be an error: %v", err)
	}
}
