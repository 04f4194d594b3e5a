package schema

import (
	"strings"
	"testing"
)

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{"plain int", "45", 45, true},
		{"plain float", "45.5", 45.5, true},
		{"whitespace", "  45 ", 45, true},
		{"unit suffix", "45分钟", 45, true},
		{"episode suffix", "24集", 24, true},
		{"placeholder dash", "-", 0, false},
		{"placeholder slash", "/", 0, false},
		{"placeholder cjk", "暂无", 0, false},
		{"placeholder pending", "待定", 0, false},
		{"placeholder in production", "制作中", 0, false},
		{"placeholder unknown", "未知", 0, false},
		{"placeholder na", "N/A", 0, false},
		{"placeholder null", "null", 0, false},
		{"empty", "", 0, false},
		{"pure text", "约一小时", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanNumeric(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("CleanNumeric(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("CleanNumeric(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanString(t *testing.T) {
	if got := CleanString("  张三  "); got != "张三" {
		t.Fatalf("got %q", got)
	}
	if got := CleanString("暂无"); got != "" {
		t.Fatalf("placeholder should clean to empty, got %q", got)
	}
	if got := CleanString("-"); got != "" {
		t.Fatalf("dash should clean to empty, got %q", got)
	}
}

func TestCleanStringCapsLength(t *testing.T) {
	long := strings.Repeat("剧", 600)
	if got := CleanString(long); len([]rune(got)) != 500 {
		t.Fatalf("default cap: %d runes", len([]rune(got)))
	}
	if got := CleanStringMax(long, 10); got != strings.Repeat("剧", 10) {
		t.Fatalf("explicit cap: %q", got)
	}
	if got := CleanStringMax(long, 0); len([]rune(got)) != 600 {
		t.Fatalf("uncapped: %d runes", len([]rune(got)))
	}
}

func TestCleanInt(t *testing.T) {
	if n, ok := CleanInt("24.0"); !ok || n != 24 {
		t.Fatalf("got %d ok=%v", n, ok)
	}
	if _, ok := CleanInt("待定"); ok {
		t.Fatal("placeholder should not parse")
	}
}
