package authpg

import "testing"

func TestNormalizeURL(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "pgx scheme rewritten", input: "pgx://auth:secret@db:5432/auth", expected: "postgres://auth:secret@db:5432/auth"},
		{name: "postgres untouched", input: "postgres://auth:secret@db:5432/auth", expected: "postgres://auth:secret@db:5432/auth"},
		{name: "whitespace trimmed", input: "  pgx://db/auth ", expected: "postgres://db/auth"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := normalizeURL(testCase.input); actual != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, actual)
			}
		})
	}
}
