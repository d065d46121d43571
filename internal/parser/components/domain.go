package components

import (
	"regexp"
	"strings"

	"weblynx/internal/parser/tree"
)

var (
	ipv6HostPattern = regexp.MustCompile(`^\[.+\]`)
	ipv4HostPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+`)
)

// Domain is a URL host split into levels, right to left.
type Domain struct {
	Raw               string
	UserInfo          []string
	TopLevelDomain    *string
	SecondLevelDomain *string
	OtherLevelDomains []string
}

// NewDomain decomposes an authority without its port, optionally prefixed by
// user-info ("user:pass@host", "john.doe@host"). IPv6 literals and dotted IPv4
// addresses are a single label.
func NewDomain(authority string) *Domain {
	d := &Domain{Raw: authority}

	host := authority
	if at := strings.LastIndex(authority, "@"); at != -1 {
		info := authority[:at]
		host = authority[at+1:]
		if strings.Contains(info, ":") {
			d.UserInfo = strings.Split(info, ":")
		} else {
			d.UserInfo = strings.Split(info, ".")
		}
	}

	labels := hostLabels(host)
	if len(labels) == 0 {
		return d
	}

	tld := labels[len(labels)-1]
	d.TopLevelDomain = &tld
	if len(labels) > 1 {
		sld := labels[len(labels)-2]
		d.SecondLevelDomain = &sld
	}
	if len(labels) > 2 {
		d.OtherLevelDomains = labels[:len(labels)-2]
	}

	return d
}

func hostLabels(host string) []string {
	switch {
	case host == "":
		return nil
	case ipv6HostPattern.MatchString(host):
		end := strings.Index(host, "]")
		return []string{host[1:end]}
	case ipv4HostPattern.MatchString(host):
		return []string{host}
	default:
		return strings.Split(host, ".")
	}
}

// Levels returns every label from the highest level down to the top-level domain.
func (d *Domain) Levels() []string {
	levels := make([]string, 0, len(d.OtherLevelDomains)+2)
	levels = append(levels, d.OtherLevelDomains...)
	if d.SecondLevelDomain != nil {
		levels = append(levels, *d.SecondLevelDomain)
	}
	if d.TopLevelDomain != nil {
		levels = append(levels, *d.TopLevelDomain)
	}
	return levels
}

// Host rejoins the levels with ".".
func (d *Domain) Host() string {
	return strings.Join(d.Levels(), ".")
}

func (d *Domain) Type() string { return TypeDomain }

func (d *Domain) Record() *tree.Record {
	return tree.NewRecord().
		Set("top_level_domain", tree.OptionalText(d.TopLevelDomain)).
		Set("second_level_domain", tree.OptionalText(d.SecondLevelDomain)).
		Set("other_level_domains", tree.Texts(d.OtherLevelDomains)).
		Set("user_info", tree.Texts(d.UserInfo))
}
