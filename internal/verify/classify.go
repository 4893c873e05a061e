// Package verify checks the dataset's citation sources: it fetches each
// source URL, classifies and scores the results against the catalogued work,
// and decides per record whether the source set supports publication.
package verify

import (
	"net/url"
	"strings"

	"github.com/slidestudy/curator-cli/internal/rules"
)

// Source quality tiers, best first. Wikipedia ranks below everything that
// can be cited, including the default tier.
const (
	TierOfficial  = 1
	TierScholarly = 2
	TierAcademic  = 3
	TierDefault   = 4
	TierCrowd     = 9
)

// Hostname extracts the lowercased host of a URL, or "" when unparseable.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// InstitutionFor names the institution behind a URL from the domain table,
// matching exact hosts and subdomains. University hosts fall back to the
// host itself; anything else unknown keeps its host as a label.
func InstitutionFor(raw string, rs *rules.Set) string {
	host := Hostname(raw)
	for _, inst := range rs.Institutions {
		if host == inst.Domain || strings.HasSuffix(host, "."+inst.Domain) {
			return inst.Name
		}
	}
	if isAcademicHost(host) {
		return host
	}
	if host == "" {
		return "Unknown"
	}
	return host
}

// SourceTier ranks a URL's citability.
func SourceTier(raw string, rs *rules.Set) int {
	host := Hostname(raw)

	for _, m := range rs.Tiers.Official {
		if strings.Contains(host, m) {
			return TierOfficial
		}
	}
	if strings.Contains(host, "collection.") || strings.Contains(host, "collections.") {
		return TierOfficial
	}
	for _, m := range rs.Tiers.Scholarly {
		if strings.Contains(host, m) {
			return TierScholarly
		}
	}
	if isAcademicHost(host) {
		return TierAcademic
	}
	if strings.Contains(host, "wikipedia.org") || strings.Contains(host, "wikimedia.org") {
		return TierCrowd
	}
	return TierDefault
}

func isAcademicHost(host string) bool {
	return strings.HasSuffix(host, ".edu") || strings.Contains(host, ".edu.") ||
		strings.HasSuffix(host, ".ac.uk") || strings.Contains(host, ".ac.")
}

// IsCrowdSourced reports whether the URL points at Wikipedia or Wikimedia.
func IsCrowdSourced(raw string) bool {
	return strings.Contains(raw, "wikipedia.org") || strings.Contains(raw, "wikimedia.org")
}
