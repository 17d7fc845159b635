package label

import (
	"strings"
	"testing"
)

func TestLineLoaderUnaligned(t *testing.T) {
	src := strings.Join([]string{
		"# comment line, ignored",
		"x/A:a-b+c/B:...",
		"",
		"x/A:b-c+d/B:...",
	}, "\n")

	lbl, err := LineLoader{}.Load(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(lbl) != 2 {
		t.Fatalf("got %d entries, want 2", len(lbl))
	}
	if lbl.HasAlignment() {
		t.Fatal("expected no alignment")
	}
	if err := lbl.Validate(); err != nil {
		t.Fatalf("expected valid label, got %v", err)
	}
}

func TestLineLoaderAligned(t *testing.T) {
	src := "0 500000 x/A:a-b+c/B:...\n500000 1200000 x/A:b-c+d/B:...\n"

	lbl, err := LineLoader{}.Load(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if !lbl.HasAlignment() {
		t.Fatal("expected alignment")
	}
	if lbl[0].Start != 0 || lbl[0].End != 500000 {
		t.Fatalf("got entry 0 = %+v", lbl[0])
	}
}

func TestLineLoaderEmpty(t *testing.T) {
	if _, err := (LineLoader{}).Load(strings.NewReader("\n# only a comment\n")); err == nil {
		t.Fatal("expected error for an empty label sequence")
	}
}

func TestLineLoaderBadAlignment(t *testing.T) {
	if _, err := (LineLoader{}).Load(strings.NewReader("100 50 x/A:a-b+c")); err == nil {
		t.Fatal("expected error when end <= start")
	}
}

func TestValidateMixedAlignment(t *testing.T) {
	lbl := Label{
		{Label: "x", Start: 0, End: 100},
		{Label: "y", Start: -1, End: -1},
	}
	if err := lbl.Validate(); err == nil {
		t.Fatal("expected error for mixed aligned/unaligned entries")
	}
}
