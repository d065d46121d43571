package components

import (
	"strings"

	"weblynx/internal/parser/tree"
)

// OS is the platform a browser runs on.
type OS struct {
	Names           []string
	Compatibilities []string
	Version         *string
}

// NewOS classifies platform terms: architecture markers become the version,
// "name/version" terms become compatibilities, device markers are skipped and
// everything else is a platform name.
func NewOS(terms []string) *OS {
	os := &OS{
		Names:           []string{},
		Compatibilities: []string{},
	}

	for _, term := range terms {
		switch {
		case archMarkerPattern.MatchString(term):
			t := term
			os.Version = &t
		case productTokenPattern.MatchString(term):
			os.Compatibilities = append(os.Compatibilities, term)
		case term == "" || IsDevice(term):
			continue
		default:
			os.Names = append(os.Names, term)
		}
	}

	return os
}

// NewOSFromClause splits a "; " separated platform clause and classifies it.
func NewOSFromClause(clause string) *OS {
	return NewOS(strings.Split(clause, "; "))
}

func (o *OS) Type() string { return TypeOS }

func (o *OS) Record() *tree.Record {
	return tree.NewRecord().
		Set("os_name", tree.Texts(o.Names)).
		Set("compatibilities", tree.Texts(o.Compatibilities)).
		Set("os_version", tree.OptionalText(o.Version))
}
