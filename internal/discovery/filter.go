package discovery

import (
	"regexp"
	"strings"
)

// Filter — предикат релевантности ссылки. Эвристика: ложные
// срабатывания в обе стороны допустимы.
type Filter func(link string) bool

var excludeKeywords = []string{
	"/webmail",
	"/about",
	"/contact",
	"/privacy",
	"/terms",
	"/taxonomy",
	"/category",
	"/tag",
	"/search",
	"/login",
	"/register",
	"/rss",
	"/sitemap",
}

var includePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/news/`),
	regexp.MustCompile(`(?i)/press`),
	regexp.MustCompile(`(?i)/press-release`),
	regexp.MustCompile(`(?i)/media`),
	regexp.MustCompile(`(?i)/release`),
	regexp.MustCompile(`(?i)/announcement`),
	regexp.MustCompile(`(?i)/publications?`),
	regexp.MustCompile(`(?i)/statement`),
	regexp.MustCompile(`(?i)/speeches?`),
	regexp.MustCompile(`(?i)/t\d{8}_\d+\.htm`),
	regexp.MustCompile(`/\d{4}/\d{2}/`),
}

// NewsFilter пропускает ссылки, похожие на пресс-релизы и новости
// государственных сайтов, и отсекает служебные разделы.
func NewsFilter(link string) bool {
	lower := strings.ToLower(link)
	for _, kw := range excludeKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, re := range includePatterns {
		if re.MatchString(link) {
			return true
		}
	}
	return false
}

// AcceptAll — фильтр без отсечения.
func AcceptAll(string) bool { return true }
