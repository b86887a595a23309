package config_test

import (
	"slices"
	"strings"
	"testing"
	"time"

	"firedesk/internal/platform/config"
)

func fullEnv() map[string]string {
	return map[string]string{
		"FIREBASE_API_KEY":             "AIzaSyA-0123456789abcdef",
		"FIREBASE_AUTH_DOMAIN":         "demo.firebaseapp.com",
		"FIREBASE_DATABASE_URL":        "https://demo.firebaseio.com",
		"FIREBASE_PROJECT_ID":          "demo",
		"FIREBASE_STORAGE_BUCKET":      "demo.appspot.com",
		"FIREBASE_MESSAGING_SENDER_ID": "123456",
		"FIREBASE_APP_ID":              "1:123456:web:abc",
		"FIREBASE_MEASUREMENT_ID":      "G-XYZ",
	}
}

func lookupFrom(env map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestValidateCompleteRecord(t *testing.T) {
	t.Parallel()
	rec := config.Load(lookupFrom(fullEnv()))
	got := rec.Validate()
	if !got.Valid || len(got.Missing) != 0 {
		t.Fatalf("complete record should validate, got %+v", got)
	}
	if rec.ProjectID != "demo" {
		t.Fatalf("unexpected project id %q", rec.ProjectID)
	}
}

func TestValidateReportsMissingInDeclarationOrder(t *testing.T) {
	t.Parallel()
	env := fullEnv()
	delete(env, "FIREBASE_MEASUREMENT_ID")
	delete(env, "FIREBASE_API_KEY")
	env["FIREBASE_PROJECT_ID"] = ""

	got := config.Load(lookupFrom(env)).Validate()
	want := []string{config.FieldAPIKey, config.FieldProjectID, config.FieldMeasurementID}
	if got.Valid || !slices.Equal(got.Missing, want) {
		t.Fatalf("got %+v, want missing %v", got, want)
	}
}

func TestWhitespaceValueCountsAsPresent(t *testing.T) {
	t.Parallel()
	env := fullEnv()
	env["FIREBASE_APP_ID"] = "  "
	rec := config.Load(lookupFrom(env))
	if got := rec.Validate(); !got.Valid {
		t.Fatalf("a non-empty value is present, got missing %v", got.Missing)
	}
	if rec.AppID != "  " {
		t.Fatalf("values must be kept verbatim, got %q", rec.AppID)
	}
}

func TestValidateEmptyEnvironment(t *testing.T) {
	t.Parallel()
	got := config.Load(lookupFrom(nil)).Validate()
	want := []string{
		"apiKey", "authDomain", "databaseURL", "projectId",
		"storageBucket", "messagingSenderId", "appId", "measurementId",
	}
	if got.Valid || !slices.Equal(got.Missing, want) {
		t.Fatalf("got %+v, want missing %v", got, want)
	}
}

func TestEachSingleMissingFieldIsReported(t *testing.T) {
	t.Parallel()
	names := []string{"apiKey", "authDomain", "databaseURL", "projectId", "storageBucket", "messagingSenderId", "appId", "measurementId"}
	for i, key := range config.EnvKeys() {
		env := fullEnv()
		delete(env, key)
		got := config.Load(lookupFrom(env)).Validate()
		if got.Valid || !slices.Equal(got.Missing, []string{names[i]}) {
			t.Fatalf("%s: got %+v, want only %s missing", key, got, names[i])
		}
	}
}

func TestMaskAPIKey(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"":                         "(missing)",
		"abc":                      "****abc",
		"abcdef":                   "****abcdef",
		"AIzaSyA-0123456789abcdef": "****abcdef",
	}
	for in, want := range cases {
		got := config.MaskAPIKey(in)
		if got != want {
			t.Fatalf("MaskAPIKey(%q) = %q, want %q", in, got, want)
		}
		if n := len(strings.TrimPrefix(got, "****")); n > 9 {
			t.Fatalf("MaskAPIKey(%q) reveals %d characters", in, n)
		}
	}
}

func TestRedactedHidesKey(t *testing.T) {
	t.Parallel()
	rec := config.Load(lookupFrom(fullEnv()))
	red := rec.Redacted()
	if red.APIKey != "****abcdef" {
		t.Fatalf("unexpected redacted key %q", red.APIKey)
	}
	if rec.APIKey != "AIzaSyA-0123456789abcdef" {
		t.Fatalf("original must be untouched, got %q", rec.APIKey)
	}
}

func TestNewSettingsDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := config.NewSettings(config.Settings{StateDir: dir})
	if err != nil {
		t.Fatalf("new settings: %v", err)
	}
	if s.ProbeTarget != config.DefaultProbeTarget || s.ProbeInterval != 5*time.Second || s.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if !strings.HasPrefix(s.QueuePath(), dir) || !strings.HasPrefix(s.LogFile, dir) {
		t.Fatalf("state files must live under %s: %s %s", dir, s.QueuePath(), s.LogFile)
	}
}

func TestEntriesFollowFieldOrder(t *testing.T) {
	t.Parallel()
	rec := config.Record{ProjectID: "demo"}
	entries := rec.Entries()
	if len(entries) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(entries))
	}
	if entries[0].Name != config.FieldAPIKey {
		t.Fatalf("first entry should be the api key, got %s", entries[0].Name)
	}
	if entries[3].EnvKey != "FIREBASE_PROJECT_ID" || entries[3].Value != "demo" {
		t.Fatalf("unexpected project entry %+v", entries[3])
	}
	if entries[7].EnvKey != config.EnvKeys()[7] {
		t.Fatalf("last entry out of order: %+v", entries[7])
	}
}
