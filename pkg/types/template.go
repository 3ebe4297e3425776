package types

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// MatchesString reports whether a concrete string inhabits the
// template pattern. The pattern compiles to a regular expression:
// fixed text is escaped, interpolations become subpatterns for the
// values their type can render to.
func (t *TemplateLiteralType) MatchesString(s string) bool {
	re, err := regexp2.Compile("^"+templatePattern(t)+"$", regexp2.None)
	if err != nil {
		return false
	}
	ok, err := re.MatchString(s)
	return err == nil && ok
}

func templatePattern(t *TemplateLiteralType) string {
	var sb strings.Builder
	for _, p := range t.Parts {
		if p.Type == nil {
			sb.WriteString(regexp.QuoteMeta(p.Text))
			continue
		}
		sb.WriteString(partPattern(p.Type))
	}
	return sb.String()
}

func partPattern(t Type) string {
	switch tt := t.(type) {
	case *Primitive:
		switch tt {
		case String:
			return `.*`
		case Integer:
			return `-?\d+`
		case Number:
			return `-?\d+(?:\.\d+)?`
		case Boolean:
			return `(?:true|false)`
		case Nil:
			return `nil`
		}
	case *LiteralType:
		if tt.Kind == StringLiteral {
			return regexp.QuoteMeta(tt.Str)
		}
		return regexp.QuoteMeta(typeString(tt, nil))
	case *UnionType:
		alts := make([]string, len(tt.Types))
		for i, m := range tt.Types {
			alts[i] = partPattern(m)
		}
		return "(?:" + strings.Join(alts, "|") + ")"
	case *TemplateLiteralType:
		return templatePattern(tt)
	case *AliasType:
		if tt.Resolved != nil {
			return partPattern(tt.Resolved)
		}
	}
	return `.*`
}
