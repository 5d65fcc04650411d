package docstore

import (
	"testing"
)

func TestBuildFTSQuery(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{
			name: "single token",
			term: "ratatouille",
			want: "ratatouille:*",
		},
		{
			name: "multiple tokens joined with AND",
			term: "quick brown fox",
			want: "quick:* & brown:* & fox:*",
		},
		{
			name: "punctuation stripped",
			term: "c'est (la) vie!",
			want: "cest:* & la:* & vie:*",
		},
		{
			name: "reserved operators dropped",
			term: "cats AND dogs OR birds NOT fish NEAR trees",
			want: "cats:* & dogs:* & birds:* & fish:* & trees:*",
		},
		{
			name: "reserved words matched case-insensitively",
			term: "and more",
			want: "more:*",
		},
		{
			name: "only punctuation yields empty query",
			term: "!!! ???",
			want: "",
		},
		{
			name: "tsquery metacharacters cannot escape",
			term: "a:*&b'--",
			want: "ab:*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildFTSQuery(tt.term); got != tt.want {
				t.Errorf("BuildFTSQuery(%q) = %q, want %q", tt.term, got, tt.want)
			}
		})
	}
}

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{
			name: "plain term wrapped in wildcards",
			term: "fox",
			want: "%fox%",
		},
		{
			name: "percent escaped",
			term: "100%",
			want: `%100\%%`,
		},
		{
			name: "underscore escaped",
			term: "snake_case",
			want: `%snake\_case%`,
		},
		{
			name: "backslash escaped first",
			term: `a\b`,
			want: `%a\\b%`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeLikePattern(tt.term); got != tt.want {
				t.Errorf("EscapeLikePattern(%q) = %q, want %q", tt.term, got, tt.want)
			}
		})
	}
}
