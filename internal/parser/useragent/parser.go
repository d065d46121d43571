// Package useragent classifies User-Agent strings into a browser family and
// extracts browser, platform, device, rendering engine and bot details.
package useragent

import (
	"regexp"

	"weblynx/internal/parser/components"

	"github.com/pterm/pterm"
)

// MaxInputLength bounds the text handed to the matchers.
const MaxInputLength = 8 << 10

var (
	// (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)
	compatibleBotPattern = regexp.MustCompile(`\(compatible;\s.+https?://.+/.*\)`)

	// Googlebot/2.1 (+http://www.google.com/bot.html)
	linkedBotPattern = regexp.MustCompile(`^.+/.+\s?\(\+https?://.+/.*\)`)
	botLinkPattern   = regexp.MustCompile(`\(\+https?://.+/.*\)`)
)

// Classifier parses User-Agent strings. It holds no per-call state and is
// safe for concurrent use.
type Classifier struct {
	links  components.LinkParser
	logger *pterm.Logger
}

// NewClassifier creates a classifier. links decomposes bot target links and
// may be nil; a nil logger disables logging.
func NewClassifier(links components.LinkParser, logger *pterm.Logger) *Classifier {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	logger.Trace("Classifier ready", logger.Args("families", familyOrder()))
	return &Classifier{
		links:  links,
		logger: logger,
	}
}

// Name returns the parser name
func (c *Classifier) Name() string {
	return "useragent"
}

// Parse classifies userAgent. It returns nil when no family pattern matches
// and no bot signature is present. When only a bot signature is found the
// result carries the bot and the leading product, with an empty Family.
func (c *Classifier) Parse(userAgent string) *Result {
	if len(userAgent) > MaxInputLength {
		userAgent = userAgent[:MaxInputLength]
	}
	working := preprocess(userAgent)

	result := &Result{Raw: userAgent}
	result.Bot = c.detectBot(working)
	result.IsBot = result.Bot != nil

	family, matched := classify(working)
	if !matched && !result.IsBot {
		c.logger.Trace("No user agent family matched", c.logger.Args("user_agent", truncate(userAgent, 100)))
		return nil
	}

	tokens := tokenize(working)
	if len(tokens) > 0 {
		result.Product = components.NewProduct(tokens[0])
	}

	if !matched {
		c.logger.Trace("Bot-only user agent", c.logger.Args("user_agent", truncate(userAgent, 100)))
		return result
	}

	result.Family = family
	x := &extraction{tokens: tokens, result: result}
	x.extract(family)

	return result
}

func (c *Classifier) detectBot(userAgent string) *components.Bot {
	if clause := compatibleBotPattern.FindString(userAgent); clause != "" {
		return components.NewBot(clause[1:len(clause)-1], c.links)
	}

	if linkedBotPattern.MatchString(userAgent) {
		if clause := botLinkPattern.FindString(userAgent); clause != "" {
			return components.NewBot(clause[1:len(clause)-1], c.links)
		}
	}

	return nil
}

// truncate truncates a string to maxLen characters for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
