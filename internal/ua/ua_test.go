package ua

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		device string
		bot    bool
	}{
		{"chrome desktop",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			"Desktop", false},
		{"iphone",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
			"Mobile", false},
		{"googlebot",
			"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			"", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := Parse(tc.raw)
			if tc.device != "" && info.Device != tc.device {
				t.Errorf("device = %q, want %q", info.Device, tc.device)
			}
			if info.IsBot != tc.bot {
				t.Errorf("bot = %v, want %v", info.IsBot, tc.bot)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	i := Info{Browser: "Firefox", Version: "126", OS: "Linux", Device: "Desktop"}
	if got := i.String(); got != "Firefox 126 / Linux / Desktop" {
		t.Fatalf("got %q", got)
	}
	i.IsBot = true
	if got := i.String(); got != "Firefox 126 / Linux / Desktop (bot)" {
		t.Fatalf("got %q", got)
	}
}
