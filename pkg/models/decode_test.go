package models

import "testing"

func TestDecodeStringList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"valid", `["a","b","c"]`, 3},
		{"empty string", "", 0},
		{"not json", "not-json", 0},
		{"wrong shape", `{"a":1}`, 0},
		{"json null", "null", 0},
		{"empty array", "[]", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeStringList(tt.raw)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDecodeMentor(t *testing.T) {
	m := DecodeMentor(`{"name":"Ada","personality":"patient","expertise":["math"]}`)
	if m.Name != "Ada" || len(m.Expertise) != 1 {
		t.Errorf("unexpected mentor: %+v", m)
	}

	for _, raw := range []string{"", "not-json", "[1,2]"} {
		got := DecodeMentor(raw)
		if got.Name != "" || got.SystemPrompt != "" || len(got.Expertise) != 0 {
			t.Errorf("DecodeMentor(%q) should fall back to zero mentor, got %+v", raw, got)
		}
	}
}

func TestDecodeSpaceColor(t *testing.T) {
	c := DecodeSpaceColor(`{"main":"#aabbcc","accent":"#112233"}`)
	if c == nil || c.Main != "#aabbcc" {
		t.Fatalf("unexpected color: %+v", c)
	}

	for _, raw := range []string{"", "not-json", "{}"} {
		if got := DecodeSpaceColor(raw); got != nil {
			t.Errorf("DecodeSpaceColor(%q) = %+v, want nil", raw, got)
		}
	}
}
