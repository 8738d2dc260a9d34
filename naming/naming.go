// Package naming provides the identifier transforms shared by every
// target generator. All case conversion and pluralization in generated
// output goes through this package; targets must not roll their own,
// since ad hoc conversion in one target is the primary cross-target
// consistency bug class.
//
// Pluralization is heuristic: a fixed rule table (e.g. trailing
// consonant+"y" becomes "ies") with a default "+s" fallback. It is not
// a natural-language pluralizer.
package naming

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	rules      = ruleset()
	titleCaser = cases.Title(language.Und, cases.NoLower)
)

// acronyms are words kept fully uppercase in Pascal/Camel output.
var acronyms = map[string]struct{}{
	"ACL": {}, "API": {}, "ASCII": {}, "CPU": {}, "CSS": {}, "DNS": {},
	"EOF": {}, "GUID": {}, "HTML": {}, "HTTP": {}, "HTTPS": {}, "ID": {},
	"IP": {}, "JSON": {}, "LHS": {}, "QPS": {}, "RAM": {}, "RHS": {},
	"RPC": {}, "SLA": {}, "SMTP": {}, "SQL": {}, "SSH": {}, "TCP": {},
	"TLS": {}, "TTL": {}, "UDP": {}, "UI": {}, "UID": {}, "UUID": {},
	"URI": {}, "URL": {}, "UTF8": {}, "VM": {}, "XML": {}, "XMPP": {},
	"XSRF": {}, "XSS": {},
}

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for a := range acronyms {
		rules.AddAcronym(a)
	}
	return rules
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

// words splits an identifier on underscore, hyphen and space.
func words(s string) []string {
	return strings.FieldsFunc(s, isSeparator)
}

func pascalWords(ws []string) string {
	for i, w := range ws {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			ws[i] = upper
			continue
		}
		ws[i] = titleCaser.String(strings.ToLower(w[:1]) + w[1:])
	}
	return strings.Join(ws, "")
}

// Pascal converts an identifier to PascalCase. Words matching a known
// acronym are kept fully uppercase ("user_id" becomes "UserID").
func Pascal(s string) string {
	return pascalWords(words(s))
}

// Camel converts an identifier to camelCase. The output always starts
// with a lowercase letter and contains no separator characters.
func Camel(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	if len(ws) == 1 {
		return strings.ToLower(ws[0])
	}
	return strings.ToLower(ws[0]) + pascalWords(ws[1:])
}

// Snake converts an identifier to snake_case. Acronym runs collapse
// into a single word ("HTTPCode" becomes "http_code").
func Snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Insert '_' when the current letter is uppercase and either
		// follows a lowercase letter ("UserInfo"), or ends an acronym
		// run before a lowercase letter ("HTTPCode").
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteByte('_')
			}
		}
		if r == '-' || unicode.IsSpace(r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Kebab converts an identifier to kebab-case.
func Kebab(s string) string {
	return strings.ReplaceAll(Snake(s), "_", "-")
}

// Plural returns the plural form of the last word of the identifier,
// preserving the identifier's word separators and case.
func Plural(s string) string {
	if s == "" {
		return s
	}
	return rules.Pluralize(s)
}

// Singular returns the singular form of the identifier.
func Singular(s string) string {
	if s == "" {
		return s
	}
	return rules.Singularize(s)
}
