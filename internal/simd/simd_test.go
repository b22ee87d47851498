package simd

import (
	"testing"
)

func TestScanSeparatorsCountsOccurrences(t *testing.T) {
	data := []byte("a,b,c,d\n1,2,3,4\n")
	got := ScanSeparators(data, ',')
	want := uint64(6)
	if got != want {
		t.Errorf("ScanSeparators() = %d, want %d", got, want)
	}
}

func TestScanSeparatorsEmptyInput(t *testing.T) {
	if got := ScanSeparators(nil, ','); got != 0 {
		t.Errorf("ScanSeparators(nil) = %d, want 0", got)
	}
}

func TestScanSeparatorsNoMatches(t *testing.T) {
	if got := ScanSeparators([]byte("abcdef"), ';'); got != 0 {
		t.Errorf("ScanSeparators() = %d, want 0", got)
	}
}

func TestScanSeparatorsCustomByte(t *testing.T) {
	data := []byte("a;b;c\n")
	if got := ScanSeparators(data, ';'); got != 2 {
		t.Errorf("ScanSeparators() = %d, want 2", got)
	}
}

func TestScanBuildsQuoteCommaNewlineBitmaps(t *testing.T) {
	data := []byte(`"a",b` + "\n")
	bitmapLen := (len(data) + 63) / 64
	quotes := make([]uint64, bitmapLen)
	commas := make([]uint64, bitmapLen)
	newlines := make([]uint64, bitmapLen)

	Scan(data, quotes, commas, newlines)

	bit := func(bm []uint64, pos int) bool {
		return bm[pos/64]&(1<<uint(pos%64)) != 0
	}

	if !bit(quotes, 0) || !bit(quotes, 2) {
		t.Errorf("expected quote bits at 0 and 2")
	}
	if !bit(commas, 3) {
		t.Errorf("expected comma bit at 3")
	}
	if !bit(newlines, 5) {
		t.Errorf("expected newline bit at 5")
	}
}

func TestScanWithSeparatorUsesCustomByte(t *testing.T) {
	data := []byte("a;b;c\n")
	bitmapLen := (len(data) + 63) / 64
	quotes := make([]uint64, bitmapLen)
	seps := make([]uint64, bitmapLen)
	newlines := make([]uint64, bitmapLen)

	ScanWithSeparator(data, ';', quotes, seps, newlines)

	bit := func(bm []uint64, pos int) bool {
		return bm[pos/64]&(1<<uint(pos%64)) != 0
	}

	if !bit(seps, 1) || !bit(seps, 3) {
		t.Errorf("expected separator bits at 1 and 3")
	}
	if bit(seps, 0) || bit(seps, 2) || bit(seps, 4) {
		t.Errorf("unexpected separator bit set")
	}
}
