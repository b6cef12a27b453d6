package fingerprint

import "testing"

func TestFastDeterministic(t *testing.T) {
	if Fast("hello") != Fast("hello") {
		t.Error("expected deterministic hash")
	}
	if Fast("hello") == Fast("world") {
		t.Error("expected different content to hash differently")
	}
}

func TestFastHexLength(t *testing.T) {
	hex := FastHex("some content")
	if len(hex) != 16 {
		t.Errorf("expected 16 hex chars, got %d (%s)", len(hex), hex)
	}
}

func TestCryptoHexLength(t *testing.T) {
	hex := CryptoHex("some content")
	if len(hex) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(hex))
	}
}

func TestBlockTrim(t *testing.T) {
	if Fast("  hello  ", BlockTrim()) != Fast("hello", BlockTrim()) {
		t.Error("expected BlockTrim to make leading/trailing whitespace insignificant")
	}
}

func TestStripBlankLines(t *testing.T) {
	got := Normalize("a\n\n\nb\n", StripBlankLines())
	want := "a\nb"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestStripLeadingTrailingPerLine(t *testing.T) {
	got := Normalize("  a  \n  b  ", StripLeadingPerLine(), StripTrailingPerLine())
	want := "a\nb"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestCollapseInteriorWhitespace(t *testing.T) {
	got := Normalize("a    b\tc", CollapseInteriorWhitespace())
	want := "a b c"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestReplacementMap(t *testing.T) {
	got := Normalize("“Hello”", ReplacementMap(map[string]string{"“": `"`, "”": `"`}))
	want := `"Hello"`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestDropChars(t *testing.T) {
	got := Normalize("a-b_c", DropChars("-_"))
	want := "abc"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestVariantOrderPreserved(t *testing.T) {
	// Replacing '-' with a space and then dropping spaces removes the
	// separator; dropping first leaves nothing to drop, so the replacement
	// survives.
	content := "a-b"
	a := Normalize(content, ReplacementMap(map[string]string{"-": " "}), DropChars(" "))
	b := Normalize(content, DropChars(" "), ReplacementMap(map[string]string{"-": " "}))
	if a != "ab" || b != "a b" {
		t.Errorf("got %q and %q, want %q and %q", a, b, "ab", "a b")
	}
}

func TestHashPasswordAndVerify(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	ok, err := VerifyPassword("correct horse battery staple", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("expected correct password to verify")
	}

	ok, err = VerifyPassword("wrong password", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if ok {
		t.Error("expected wrong password to fail verification")
	}
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	a, _ := HashPassword("same-secret")
	b, _ := HashPassword("same-secret")
	if a == b {
		t.Error("expected distinct salts to produce distinct encoded hashes")
	}
}
