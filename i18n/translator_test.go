package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("required", nil); msg != "required property missing" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", nil); msg == "required property missing" {
		t.Fatalf("expected japanese message, got %q", msg)
	}
	// falls back to en for codes without a translation
	if msg := T("regex", map[string]string{"pattern": "^a"}); msg != "does not match pattern ^a" {
		t.Fatalf("expected en fallback, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	if msg := T("min_length", map[string]string{"min": "3"}); msg != "shorter than 3" {
		t.Fatalf("unexpected %q", msg)
	}
	if msg := T("invalid_type", nil); msg != "invalid type" {
		t.Fatalf("missing data should drop the placeholder, got %q", msg)
	}
	if msg := T("custom_code", nil); msg != "custom_code" {
		t.Fatalf("unknown codes render as themselves, got %q", msg)
	}
}

type fixed string

func (f fixed) Message(string, map[string]string) string { return string(f) }

func TestSetTranslator(t *testing.T) {
	SetTranslator(fixed("x"))
	defer SetTranslator(nil)
	if msg := T("required", nil); msg != "x" {
		t.Fatalf("unexpected %q", msg)
	}
}
