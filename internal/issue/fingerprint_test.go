package issue

import "testing"

func TestFingerprintIgnoresDetectorID(t *testing.T) {
	text := "I think the compay is doing well overall"
	first := Issue{ID: "run1-7", Type: TypeSpelling, Position: Position{Start: 12, End: 18}}
	second := Issue{ID: "run2-3", Type: TypeSpelling, Position: Position{Start: 12, End: 18}}

	if Fingerprint(first, text) != Fingerprint(second, text) {
		t.Error("fingerprints should match across runs when only the id differs")
	}
}

func TestFingerprintDistinguishesType(t *testing.T) {
	text := "I think the compay is doing well overall"
	spelling := Issue{Type: TypeSpelling, Position: Position{Start: 12, End: 18}}
	grammar := Issue{Type: TypeGrammar, Position: Position{Start: 12, End: 18}}

	if Fingerprint(spelling, text) == Fingerprint(grammar, text) {
		t.Error("fingerprints should differ by issue type")
	}
}

func TestFingerprintDistinguishesContext(t *testing.T) {
	iss := Issue{Type: TypeSpelling, Position: Position{Start: 12, End: 18}}
	a := Fingerprint(iss, "I think the compay is doing well overall")
	b := Fingerprint(iss, "I think the compay was doing well before")
	if a == b {
		t.Error("fingerprints should differ when surrounding text differs")
	}
}

func TestFingerprintClampsAtBounds(t *testing.T) {
	// Positions near the edges, or past the end entirely, must not panic.
	short := "hi"
	cases := []Issue{
		{Type: TypeGrammar, Position: Position{Start: 0, End: 2}},
		{Type: TypeGrammar, Position: Position{Start: 1, End: 50}},
		{Type: TypeGrammar, Position: Position{Start: -3, End: 1}},
	}
	for _, iss := range cases {
		_ = Fingerprint(iss, short)
	}
}
