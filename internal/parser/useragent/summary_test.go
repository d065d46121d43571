package useragent

import "testing"

func TestSummarize(t *testing.T) {
	testCases := []struct {
		ua       string
		expected Summary
	}{
		{chromeMac, Summary{Family: "chrome", Browser: "Chrome", BrowserVersion: "55.0.2883.95", OS: "Intel Mac OS X 10_11_6", Device: "Macintosh"}},
		{firefoxWindows, Summary{Family: "firefox", Browser: "Firefox", BrowserVersion: "47.0", OS: "Windows 7", Device: "Win64"}},
		{yahooSlurp, Summary{Family: "bot", Browser: "Mozilla", BrowserVersion: "5.0", OS: "Unknown", Device: "bot", BotName: "Yahoo! Slurp", IsBot: true}},
		{"curl/7.52.1", Summary{Family: "browserless", Browser: "curl", BrowserVersion: "7.52.1", OS: "Unknown", Device: "unknown"}},
	}

	c := newTestClassifier()
	for _, tc := range testCases {
		got := Summarize(c.Parse(tc.ua))
		if got != tc.expected {
			t.Errorf("For '%s': expected %+v, got %+v", tc.ua, tc.expected, got)
		}
	}
}

func TestSummarize_Nil(t *testing.T) {
	s := Summarize(nil)
	if s.Family != "unknown" || s.Browser != "Unknown" || s.OS != "Unknown" || s.Device != "unknown" {
		t.Errorf("Expected unknown summary, got %+v", s)
	}
}

func TestFriendlyOSName(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{"Windows NT 10.0", "Windows 10/11"},
		{"Windows NT 6.1", "Windows 7"},
		{"Windows NT 4.0", "Windows 4.0"},
		{"Android 6.0.1", "Android 6.0.1"},
	}

	for _, tc := range testCases {
		if got := FriendlyOSName(tc.name); got != tc.expected {
			t.Errorf("For '%s': expected '%s', got '%s'", tc.name, tc.expected, got)
		}
	}
}

func TestSummarize_LinkedBotName(t *testing.T) {
	testCases := []struct {
		ua       string
		expected string
	}{
		{facebookHit, "facebookexternalhit"},
		{"Googlebot/2.1 (+http://www.google.com/bot.html)", "Googlebot"},
		{googlebotPhone, "Googlebot"},
	}

	c := newTestClassifier()
	for _, tc := range testCases {
		s := Summarize(c.Parse(tc.ua))
		if !s.IsBot {
			t.Errorf("For '%s': expected a bot", tc.ua)
		}
		if s.BotName != tc.expected {
			t.Errorf("For '%s': expected bot name '%s', got '%s'", tc.ua, tc.expected, s.BotName)
		}
	}
}
