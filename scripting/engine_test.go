package scripting

import (
	"context"
	"testing"
	"time"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/outline"
)

var sample = []outline.Entry{
	{Level: "H1", Text: "Introduction ", Page: 0},
	{Level: "H2", Text: "Appendix A ", Page: 9},
	{Level: "H3", Text: "Notes ", Page: 10},
}

func TestAcceptBoolean(t *testing.T) {
	eng, err := NewEngine(`function accept(entry) { return entry.level !== "H3"; }`)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	out, err := eng.Filter(context.Background(), sample)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(out), out)
	}
}

func TestAcceptLevelRewrite(t *testing.T) {
	eng, err := NewEngine(`function accept(entry) {
		if (entry.text.indexOf("Appendix") === 0) { return "H1"; }
		return true;
	}`)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	out, err := eng.Filter(context.Background(), sample)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d entries, want 3", len(out))
	}
	if out[1].Level != "H1" {
		t.Errorf("Appendix level = %q, want rewritten H1", out[1].Level)
	}
	if out[1].Text != "Appendix A " {
		t.Errorf("text changed: %q", out[1].Text)
	}
}

func TestInvalidLevelRewriteDropsEntry(t *testing.T) {
	eng, err := NewEngine(`function accept(entry) { return "H9"; }`)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	out, err := eng.Filter(context.Background(), sample)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d entries, want 0", len(out))
	}
}

func TestMissingReturnDropsEntries(t *testing.T) {
	eng, err := NewEngine(`function accept(entry) { entry.level; }`)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	out, err := eng.Filter(context.Background(), sample)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("undefined return should drop entries, got %d", len(out))
	}
}

func TestMissingAcceptFunction(t *testing.T) {
	if _, err := NewEngine(`var x = 1;`); err == nil {
		t.Error("script without accept() should fail to load")
	}
	if _, err := NewEngine(`function accept(`); err == nil {
		t.Error("syntax error should fail to load")
	}
}

func TestContextCancellation(t *testing.T) {
	eng, err := NewEngine(`function accept(entry) { while (true) {} }`)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := eng.Filter(ctx, sample); err == nil {
		t.Error("looping rule should be interrupted")
	}
}

func TestPassthrough(t *testing.T) {
	out, err := Passthrough{}.Filter(context.Background(), sample)
	if err != nil || len(out) != len(sample) {
		t.Errorf("Passthrough = %v entries, err %v", len(out), err)
	}
}
