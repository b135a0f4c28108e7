package event

import (
	"strings"
	"testing"
)

func TestParse_ObjectFinalized(t *testing.T) {
	payload := `{
		"bucket": "docdex-docs",
		"name": "uploads/widgets.pdf",
		"contentType": "application/pdf",
		"size": "102400",
		"timeCreated": "2026-08-30T12:00:00Z"
	}`

	ev, err := Parse(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ev.Bucket != "docdex-docs" || ev.Name != "uploads/widgets.pdf" {
		t.Errorf("ev = %+v", ev)
	}
	if ev.URI() != "gs://docdex-docs/uploads/widgets.pdf" {
		t.Errorf("URI = %q", ev.URI())
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", "nope"},
		{"missing bucket", `{"name": "a.pdf"}`},
		{"missing name", `{"bucket": "b"}`},
		{"blank name", `{"bucket": "b", "name": "   "}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.payload)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
