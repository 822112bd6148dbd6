package file

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := PathExists(dir)
	if err != nil || !exists {
		t.Errorf("PathExists(%s) = (%v, %v); want (true, nil)", dir, exists, err)
	}

	exists, err = PathExists(filepath.Join(dir, "absent"))
	if err != nil || exists {
		t.Errorf("PathExists(absent) = (%v, %v); want (false, nil)", exists, err)
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	isDir, err := IsDir(dir)
	if err != nil || !isDir {
		t.Errorf("IsDir(dir) = (%v, %v); want (true, nil)", isDir, err)
	}

	isDir, err = IsDir(path)
	if err != nil || isDir {
		t.Errorf("IsDir(file) = (%v, %v); want (false, nil)", isDir, err)
	}

	isDir, err = IsDir(filepath.Join(dir, "absent"))
	if err != nil || isDir {
		t.Errorf("IsDir(absent) = (%v, %v); want (false, nil)", isDir, err)
	}
}

func TestCreateDirIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := CreateDir(path); err != nil {
		t.Fatalf("CreateDir failed: %v", err)
	}
	if err := CreateDir(path); err != nil {
		t.Fatalf("CreateDir on existing dir failed: %v", err)
	}
	if isDir, _ := IsDir(path); !isDir {
		t.Errorf("%s should be a directory", path)
	}
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run-1", "report.yaml")
	content := []byte("runId: abc\n")

	if err := WriteFile(path, content); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q; want %q", got, content)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.conf")
	if err := os.WriteFile(src, []byte("listen 8080\n"), 0644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "nested", "dest.conf")

	if err := CopyFile(src, dest, 0600); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading copy failed: %v", err)
	}
	if string(got) != "listen 8080\n" {
		t.Errorf("content = %q", got)
	}
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v; want 0600", info.Mode().Perm())
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	if err := CopyFile(filepath.Join(t.TempDir(), "absent"), filepath.Join(t.TempDir(), "x"), 0644); err == nil {
		t.Error("expected an error for a missing source")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
