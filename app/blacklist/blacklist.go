package blacklist

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	ipv4Regex = regexp.MustCompile(`^((25[0-5]|(2[0-4]|1[0-9]|[1-9])?[0-9])\.){3}(25[0-5]|(2[0-4]|1[0-9]|[1-9])?[0-9])$`)
	ipv6Regex = regexp.MustCompile(`^(` +
		`([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}|` +
		`([0-9a-fA-F]{1,4}:){1,7}:|` +
		`([0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}|` +
		`([0-9a-fA-F]{1,4}:){1,5}(:[0-9a-fA-F]{1,4}){1,2}|` +
		`([0-9a-fA-F]{1,4}:){1,4}(:[0-9a-fA-F]{1,4}){1,3}|` +
		`([0-9a-fA-F]{1,4}:){1,3}(:[0-9a-fA-F]{1,4}){1,4}|` +
		`([0-9a-fA-F]{1,4}:){1,2}(:[0-9a-fA-F]{1,4}){1,5}|` +
		`[0-9a-fA-F]{1,4}:((:[0-9a-fA-F]{1,4}){1,6})|` +
		`:((:[0-9a-fA-F]{1,4}){1,7}|:)|` +
		`fe80:(:[0-9a-fA-F]{0,4}){0,4}%[0-9a-zA-Z]+|` +
		`::(ffff(:0{1,4})?:)?((25[0-5]|(2[0-4]|1?[0-9])?[0-9])\.){3}(25[0-5]|(2[0-4]|1?[0-9])?[0-9])|` +
		`([0-9a-fA-F]{1,4}:){1,4}:((25[0-5]|(2[0-4]|1?[0-9])?[0-9])\.){3}(25[0-5]|(2[0-4]|1?[0-9])?[0-9])` +
		`)$`)
)

// Policy holds the switches that differ between filtering variants.
type Policy struct {
	// RequireAlphabeticName ignores names without a single letter, e.g. "123" or "---".
	RequireAlphabeticName bool
}

// Filter classifies normalized names and emails against the static tables.
type Filter struct {
	tables *Tables
	policy Policy
}

func NewFilter(tables *Tables, policy Policy) *Filter {
	return &Filter{tables: tables, policy: policy}
}

func (f *Filter) IsIgnoredName(name string) bool {
	name = strings.ToLower(name)
	if strings.TrimSpace(name) == "" || f.tables.Contains(TableNames, name) {
		return true
	}
	return f.policy.RequireAlphabeticName && !HasAlphabetic(name)
}

func (f *Filter) IsIgnoredEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") || IsMultipleEmails(email) {
		return true
	}

	domain := Domain(email)
	return f.IsBlacklistedEmail(email) ||
		f.IsBlacklistedDomain(domain) ||
		f.IsBlacklistedTLD(domain) ||
		IsSingleWordDomain(domain) ||
		IsIPEmail(email)
}

func (f *Filter) IsBlacklistedEmail(email string) bool {
	return f.tables.Contains(TableEmails, strings.ToLower(email))
}

// IsBlacklistedDomain accepts either a bare domain or a full email.
func (f *Filter) IsBlacklistedDomain(s string) bool {
	return f.tables.Contains(TableDomains, Domain(strings.ToLower(s)))
}

// IsBlacklistedTLD accepts either a bare domain or a full email.
func (f *Filter) IsBlacklistedTLD(s string) bool {
	return f.tables.Contains(TableTopLevelDomains, TopLevelDomain(strings.ToLower(s)))
}

func (f *Filter) IsPopularName(name string) bool {
	return f.tables.Contains(TablePopularNames, strings.ToLower(name))
}

func (f *Filter) IsPopularEmail(email string) bool {
	return f.tables.Contains(TablePopularEmails, strings.ToLower(email))
}

// Domain returns the part after the last "@", or s itself when there is none.
func Domain(s string) string {
	return s[strings.LastIndex(s, "@")+1:]
}

// TopLevelDomain returns the part of the domain after the last ".".
func TopLevelDomain(s string) string {
	domain := Domain(s)
	return domain[strings.LastIndex(domain, ".")+1:]
}

func IsSingleWordDomain(s string) bool {
	return !strings.Contains(Domain(s), ".")
}

func IsMultipleEmails(s string) bool {
	return strings.Count(s, "@") > 1
}

// IsIPEmail reports whether the domain part is an IPv4 or IPv6 literal,
// optionally in the bracketed "[...]" or "[ipv6:...]" forms.
func IsIPEmail(s string) bool {
	domain := strings.ToLower(Domain(s))
	domain = strings.TrimSuffix(strings.TrimPrefix(domain, "["), "]")
	domain = strings.TrimPrefix(domain, "ipv6:")
	return ipv4Regex.MatchString(domain) || ipv6Regex.MatchString(domain)
}

func HasAlphabetic(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
