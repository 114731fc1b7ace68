//go:build !integration

package telegram

import (
	"strings"
	"testing"
)

func TestParseButtonLine(t *testing.T) {
	cases := []struct {
		name      string
		line      string
		wantLabel string
		wantURL   string
		wantErr   bool
	}{
		{
			name:      "plain https button",
			line:      "Buy now | https://shop.example.com",
			wantLabel: "Buy now",
			wantURL:   "https://shop.example.com",
		},
		{
			name:      "t.me link is upgraded to https",
			line:      "Join | t.me/mychannel",
			wantLabel: "Join",
			wantURL:   "https://t.me/mychannel",
		},
		{
			name:      "surrounding whitespace is trimmed",
			line:      "  Docs  |  http://docs.example.com  ",
			wantLabel: "Docs",
			wantURL:   "http://docs.example.com",
		},
		{name: "missing separator", line: "Buy now https://shop.example.com", wantErr: true},
		{name: "not a url", line: "Buy now | not-a-url", wantErr: true},
		{name: "empty label", line: " | https://shop.example.com", wantErr: true},
		{name: "label at the 64 rune limit", line: strings.Repeat("a", 64) + " | https://ok.example.com", wantLabel: strings.Repeat("a", 64), wantURL: "https://ok.example.com"},
		{name: "label over the 64 rune limit", line: strings.Repeat("a", 65) + " | https://ok.example.com", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			label, url, err := parseButtonLine(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseButtonLine(%q) = %q, %q; want error", tc.line, label, url)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseButtonLine(%q) unexpected error: %v", tc.line, err)
			}
			if label != tc.wantLabel || url != tc.wantURL {
				t.Errorf("parseButtonLine(%q) = %q, %q; want %q, %q", tc.line, label, url, tc.wantLabel, tc.wantURL)
			}
		})
	}
}
