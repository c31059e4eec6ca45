package transcript

import "testing"

func TestParseRound(t *testing.T) {
	cases := []struct {
		key, name string
		round     int
		ok        bool
	}{
		{"linkedin_post_0", "linkedin_post", 0, true},
		{"linkedin_post_12", "linkedin_post", 12, true},
		{"linkedin_post", "linkedin_post", 0, false},
		{"linkedin_post_0_1", "linkedin_post", 0, false},
		{"post_judge_0", "linkedin_post", 0, false},
		{"linkedin_post_x", "linkedin_post", 0, false},
	}
	for _, tc := range cases {
		round, ok := ParseRound(tc.key, tc.name)
		if ok != tc.ok || round != tc.round {
			t.Errorf("ParseRound(%q, %q) = (%d, %v), want (%d, %v)", tc.key, tc.name, round, ok, tc.round, tc.ok)
		}
	}
}

func TestLatestRound(t *testing.T) {
	analysis := map[string]*Result{
		"post_0":     {},
		"post_1":     {},
		"post_2":     {},
		"post_2_1":   {},
		"post_judge": {},
		"post":       {},
	}
	round, ok := LatestRound(analysis, "post")
	if !ok || round != 2 {
		t.Fatalf("LatestRound = (%d, %v), want (2, true)", round, ok)
	}
	if _, ok := LatestRound(analysis, "summary"); ok {
		t.Fatal("summary has no versioned keys")
	}
}

func TestRoundsSorted(t *testing.T) {
	analysis := map[string]*Result{
		"post_2": {},
		"post_0": {},
		"post_1": {},
	}
	rounds := Rounds(analysis, "post")
	if len(rounds) != 3 || rounds[0] != 0 || rounds[1] != 1 || rounds[2] != 2 {
		t.Fatalf("unexpected rounds: %v", rounds)
	}
}
