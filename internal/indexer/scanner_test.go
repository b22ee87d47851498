package indexer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewScannerSniffsSeparatorWhenUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semicolons.csv")
	data := "id;name;value\n1;alpha;10\n2;beta;20\n3;gamma;30\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewScanner(path, "")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	defer s.Close()

	if s.separator != ';' {
		t.Errorf("separator = %q, want ';'", s.separator)
	}

	headers := s.GetHeaders()
	want := []string{"id", "name", "value"}
	if len(headers) != len(want) {
		t.Fatalf("headers = %v, want %v", headers, want)
	}
	for i, h := range want {
		if headers[i] != h {
			t.Errorf("headers[%d] = %q, want %q", i, headers[i], h)
		}
	}
}

func TestNewScannerPinnedSeparatorSkipsSniffing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.csv")
	data := "a,b\n1,2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewScanner(path, ",")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	defer s.Close()

	if s.separator != ',' {
		t.Errorf("separator = %q, want ','", s.separator)
	}
	if s.quote != '"' {
		t.Errorf("quote = %q, want '\"'", s.quote)
	}
}

func TestNewScannerTrimsHeaderQuotesWithDetectedQuote(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quoted.csv")
	// Row 1's second field quotes a literal '|', which only the correct
	// quote='\'' hypothesis parses as a single two-column row; the
	// double-quote hypothesis (apostrophe isn't special to it) reads that
	// row as three raw pipe-split columns and gets rejected instead.
	data := "'id'|'name'\n'1'|'va|lue'\n'2'|'bob'\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewScanner(path, "")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	defer s.Close()

	if s.separator != '|' {
		t.Errorf("separator = %q, want '|'", s.separator)
	}

	headers := s.GetHeaders()
	want := []string{"id", "name"}
	if len(headers) != len(want) {
		t.Fatalf("headers = %v, want %v", headers, want)
	}
	for i, h := range want {
		if headers[i] != h {
			t.Errorf("headers[%d] = %q, want %q", i, headers[i], h)
		}
	}
}
