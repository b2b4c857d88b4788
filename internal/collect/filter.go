package collect

import "strings"

// DefaultExcludePrefixes lists the institutional and social URLs that
// appear in the portal chrome on every page and are never part of the
// audited content.
var DefaultExcludePrefixes = []string{
	"https://data.europa.eu",
	"https://op.europa.eu",
	"https://european-union.europa.eu",
	"https://dataeuropa.gitlab.io",
	"https://twitter.com",
	"https://www.linkedin.com",
	"https://www.youtube.com/c/PublicationsOffice",
	"https://www.instagram.com",
	"https://ec.europa.eu",
	"https://eur-lex.europa.eu",
	"https://ted.europa.eu/en",
	"https://cordis.europa.eu",
	"http://europa.eu",
	"https://style-guide.europa.eu/",
	"https://www.europa.eu/",
}

// ExternalOnly keeps absolute http(s) links that match none of the
// excluded prefixes. Everything else, mailto and javascript links
// included, is dropped.
func ExternalOnly(links []string, excludePrefixes []string) []string {
	kept := make([]string, 0, len(links))
	for _, link := range links {
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			continue
		}
		if hasAnyPrefix(link, excludePrefixes) {
			continue
		}
		kept = append(kept, link)
	}
	return kept
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
