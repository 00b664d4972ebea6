package shared

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	contents := `# comment line
ALGOD_TEST_PLAIN=plain-value
export ALGOD_TEST_EXPORTED=exported-value
ALGOD_TEST_QUOTED="quoted value"
ALGOD_TEST_SINGLE='single value'
ALGOD_TEST_PRESET=from-file
not a valid line
=missing-key
1BADKEY=starts-with-digit
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ALGOD_TEST_PRESET", "from-environment")
	for _, key := range []string{"ALGOD_TEST_PLAIN", "ALGOD_TEST_EXPORTED", "ALGOD_TEST_QUOTED", "ALGOD_TEST_SINGLE", "1BADKEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	loadDotEnvFile(path)

	checks := map[string]string{
		"ALGOD_TEST_PLAIN":    "plain-value",
		"ALGOD_TEST_EXPORTED": "exported-value",
		"ALGOD_TEST_QUOTED":   "quoted value",
		"ALGOD_TEST_SINGLE":   "single value",
		"ALGOD_TEST_PRESET":   "from-environment",
	}
	for key, want := range checks {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if _, set := os.LookupEnv("1BADKEY"); set {
		t.Error("invalid key should not be loaded")
	}
}

func TestIsValidEnvKey(t *testing.T) {
	valid := []string{"ALGOD_URL", "indexer_url", "KEY_2", "A"}
	for _, key := range valid {
		if !isValidEnvKey(key) {
			t.Errorf("isValidEnvKey(%q) = false, want true", key)
		}
	}

	invalid := []string{"", "2KEY", "KEY-NAME", "KEY NAME", "KEY.NAME"}
	for _, key := range invalid {
		if isValidEnvKey(key) {
			t.Errorf("isValidEnvKey(%q) = true, want false", key)
		}
	}
}

func TestEnvTrimsWhitespace(t *testing.T) {
	t.Setenv("ALGOD_TEST_TRIM", "  padded  ")
	if got := Env("ALGOD_TEST_TRIM"); got != "padded" {
		t.Errorf("Env = %q, want %q", got, "padded")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "second", "third"); got != "second" {
		t.Errorf("FirstNonEmpty = %q, want %q", got, "second")
	}
	if got := FirstNonEmpty("", "   "); got != "" {
		t.Errorf("FirstNonEmpty of blanks = %q, want empty", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" http://a:4001 , ,http://b:4001,")
	want := []string{"http://a:4001", "http://b:4001"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitList = %v, want %v", got, want)
	}

	if got := SplitList(""); len(got) != 0 {
		t.Errorf("SplitList of empty string = %v, want empty", got)
	}
}
