package timeline

import "testing"

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hero1", "hero1"},
		{"My Save", "my-save"},
		{"My  Save", "my-save"},
		{"under_score", "under_score"},
		{"Already-Hyphen", "already-hyphen"},
		{"Trailing ", "trailing"},
		{"We!rd@Chars#", "werdchars"},
		{"--lead--", "lead"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMainBranchName(t *testing.T) {
	if got := MainBranchName("Hero1"); got != "hero1-main" {
		t.Errorf("MainBranchName(Hero1) = %q, want hero1-main", got)
	}
	if got := MainBranchName("My Save"); got != "my-save-main" {
		t.Errorf("MainBranchName(My Save) = %q, want my-save-main", got)
	}
}

func TestBranchRef(t *testing.T) {
	if got := BranchRef("Hero1", "experiment"); got != "hero1-experiment" {
		t.Errorf("BranchRef = %q, want hero1-experiment", got)
	}
}
