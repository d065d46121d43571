package components

import (
	"strings"

	"weblynx/internal/parser/tree"
)

// Bot is a crawler signature found in a User-Agent.
type Bot struct {
	Name       *string
	Version    *string
	TargetLink *tree.Record
}

// NewBot parses a bot descriptor. Two shapes are accepted:
//
//	compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm
//	+http://www.facebook.com/externalhit_uatext.php
//
// A descriptor without "/" in its name clause keeps the whole clause as the
// name and leaves the version absent. links may be nil, in which case the
// target link stays absent.
func NewBot(descriptor string, links LinkParser) *Bot {
	b := &Bot{}

	if bareLinkPattern.MatchString(descriptor) {
		b.TargetLink = parseLink(links, descriptor)
		return b
	}

	clauses := strings.Split(descriptor, "; ")
	if len(clauses) < 2 {
		return b
	}

	// compatible; +http://example.com/bot
	if bareLinkPattern.MatchString(clauses[1]) {
		b.TargetLink = parseLink(links, clauses[1])
		return b
	}

	name, version, found := strings.Cut(clauses[1], "/")
	if found {
		b.Name = optional(name)
		b.Version = optional(version)
	} else {
		b.Name = optional(clauses[1])
	}

	for _, clause := range clauses[2:] {
		if strings.Contains(clause, "http") {
			b.TargetLink = parseLink(links, clause)
			break
		}
	}

	return b
}

func parseLink(links LinkParser, link string) *tree.Record {
	if links == nil {
		return nil
	}
	return links(strings.TrimPrefix(link, "+"))
}

func (b *Bot) Type() string { return TypeBot }

func (b *Bot) Record() *tree.Record {
	var target tree.Node = tree.Absent()
	if b.TargetLink != nil {
		target = b.TargetLink
	}
	return tree.NewRecord().
		Set("bot_name", tree.OptionalText(b.Name)).
		Set("bot_version", tree.OptionalText(b.Version)).
		Set("target_link", target)
}
