package logfields

import (
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Mode", KeyMode, "write", Mode("write")},
		{"Target", KeyTarget, "site", Target("site")},
		{"Page", KeyPage, "about", Page("about")},
		{"Lang", KeyLang, "de", Lang("de")},
		{"Dest", KeyDest, "/srv/static/index.html", Dest("/srv/static/index.html")},
		{"Status", KeyStatus, "generated", Status("generated")},
		{"Asset", KeyAsset, "assets", Asset("assets")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestDurationHelper(t *testing.T) {
	v := Duration(1500 * time.Microsecond)
	if v.Key != KeyDurationMS {
		t.Fatalf("Duration key mismatch: %s", v.Key)
	}
	if v.Value.Float64() != 1.5 {
		t.Fatalf("expected 1.5ms, got %v", v.Value.Float64())
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
