package files

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestAtomicWrite_Replaces(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "report.json")

	if err := AtomicWrite(path, []byte(`{"labels":["sky"]}`), 0600); err != nil {
		t.Fatalf("initial write failed: %v", err)
	}
	if err := AtomicWrite(path, []byte(`{"labels":["snow"]}`), 0600); err != nil {
		t.Fatalf("replacement write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content) != `{"labels":["snow"]}` {
		t.Fatalf("content = %s", content)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Fatalf("perm = %v, want 0600", info.Mode().Perm())
		}
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "percept-") && strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("leaked temp file: %s", entry.Name())
		}
	}
}

func TestAtomicWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")
	if err := AtomicWrite(path, []byte("{}"), 0600); err == nil {
		t.Fatal("expected error for a missing directory")
	}
}

func TestAtomicWrite_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink not permitted on Windows")
	}
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target.json")
	if err := os.WriteFile(target, []byte("original"), 0600); err != nil {
		t.Fatalf("write target: %v", err)
	}
	link := filepath.Join(tmp, "report.json")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := AtomicWrite(link, []byte("new"), 0600); err == nil {
		t.Fatal("expected symlink rejection")
	}
	content, _ := os.ReadFile(target)
	if string(content) != "original" {
		t.Fatalf("symlink target was modified: %s", content)
	}
}

func TestOpenLogFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "percept.jsonl")
	for _, line := range []string{"{\"msg\":\"one\"}\n", "{\"msg\":\"two\"}\n"} {
		f, err := OpenLogFile(path)
		if err != nil {
			t.Fatalf("OpenLogFile: %v", err)
		}
		if _, err := f.WriteString(line); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content) != "{\"msg\":\"one\"}\n{\"msg\":\"two\"}\n" {
		t.Fatalf("content = %q", content)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Fatalf("perm = %v, want 0600", info.Mode().Perm())
		}
	}
}

func TestOpenLogFile_RejectsSymlink(t *testing.T) {
	skipWithoutSymlinks(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "elsewhere.log")
	link := filepath.Join(dir, "percept.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if f, err := OpenLogFile(link); err == nil {
		f.Close()
		t.Fatal("expected symlink rejection")
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("symlink target was created: %v", err)
	}
}
