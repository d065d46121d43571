package useragent

import "strings"

// Summary contains the headline fields of a Result, used for indexed columns
// and aggregate statistics.
type Summary struct {
	Family         string
	Browser        string
	BrowserVersion string
	OS             string
	Device         string
	BotName        string
	IsBot          bool
}

// Summarize reduces r to its headline fields. A nil result summarizes as unknown.
func Summarize(r *Result) Summary {
	s := Summary{
		Family:  "unknown",
		Browser: "Unknown",
		OS:      "Unknown",
		Device:  "unknown",
	}
	if r == nil {
		return s
	}

	s.IsBot = r.IsBot
	if r.Family != "" {
		s.Family = string(r.Family)
	} else if r.IsBot {
		s.Family = "bot"
	}

	if r.Browser != nil && r.Browser.Name != nil {
		s.Browser = *r.Browser.Name
		if r.Browser.Version != nil {
			s.BrowserVersion = *r.Browser.Version
		}
	} else if r.Product != nil {
		s.Browser = r.Product.Name
		if r.Product.Version != nil {
			s.BrowserVersion = *r.Product.Version
		}
	}

	if r.OS != nil && len(r.OS.Names) > 0 {
		s.OS = FriendlyOSName(r.OS.Names[0])
	}

	if r.Device != nil {
		s.Device = r.Device.Name
	}

	if r.Bot != nil {
		s.Device = "bot"
		switch {
		case r.Bot.Name != nil:
			s.BotName = *r.Bot.Name
		case r.Product != nil:
			// Googlebot/2.1 (+http://...) names the bot only in its product token
			s.BotName = r.Product.Name
		}
	}

	return s
}

// FriendlyOSName converts a Windows NT platform name to its marketing name.
// Other names are returned unchanged.
func FriendlyOSName(name string) string {
	ntVersion, ok := strings.CutPrefix(name, "Windows NT ")
	if !ok {
		return name
	}

	versions := map[string]string{
		"10.0": "Windows 10/11",
		"6.3":  "Windows 8.1",
		"6.2":  "Windows 8",
		"6.1":  "Windows 7",
		"6.0":  "Windows Vista",
		"5.1":  "Windows XP",
	}

	if friendly, ok := versions[ntVersion]; ok {
		return friendly
	}
	return "Windows " + ntVersion
}
