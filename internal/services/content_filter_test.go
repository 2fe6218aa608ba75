package services

import "testing"

func TestContentFilterAllowsNormalMessages(t *testing.T) {
	f := NewContentFilter()
	for _, text := range []string{
		"",
		"Running 10 minutes late, sorry!",
		"I'll wait by the north gate",
		"Can you pick me up at the library instead?",
	} {
		if ok, reason := f.Check(text); !ok {
			t.Fatalf("Check(%q) rejected with %q, want allowed", text, reason)
		}
	}
}

func TestContentFilterRejectsBannedWords(t *testing.T) {
	f := NewContentFilter()
	ok, reason := f.Check("this is such a scam")
	if ok || reason != "inappropriate_language" {
		t.Fatalf("Check = (%v, %q), want banned word rejection", ok, reason)
	}

	// Word boundaries: "class" contains "ass" but is fine.
	if ok, _ := f.Check("see you after class"); !ok {
		t.Fatal("substring of a banned word inside a clean word should pass")
	}

	// Case-insensitive.
	if ok, _ := f.Check("SPAM"); ok {
		t.Fatal("banned word matching must ignore case")
	}
}

func TestContentFilterRejectsContactInfo(t *testing.T) {
	f := NewContentFilter()

	if ok, reason := f.Check("check https://example.com/deal"); ok || reason != "url_not_allowed" {
		t.Fatalf("url check = (%v, %q)", ok, reason)
	}
	if ok, reason := f.Check("mail me at rider@example.com"); ok || reason != "contact_info_not_allowed" {
		t.Fatalf("email check = (%v, %q)", ok, reason)
	}
	if ok, reason := f.Check("call 555-123-4567"); ok || reason != "contact_info_not_allowed" {
		t.Fatalf("phone check = (%v, %q)", ok, reason)
	}
}

func TestRejectionMessageFallback(t *testing.T) {
	f := NewContentFilter()
	if msg := f.RejectionMessage("url_not_allowed"); msg == "" {
		t.Fatal("known reason should map to copy")
	}
	if msg := f.RejectionMessage("unknown_reason"); msg == "" {
		t.Fatal("unknown reason should fall back to generic copy")
	}
}
