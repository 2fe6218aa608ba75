package services

import (
	"regexp"
	"sync"
)

var bannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"retard", "retarded",
	"spam", "scam", "scammer", "phishing",
}

// ContentFilter screens chat messages before they are stored. Rejections
// are send-time moderation; stored content is hidden globally only by the
// admin panel.
type ContentFilter struct {
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
	once              sync.Once
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{}
	f.compile()
	return f
}

func (f *ContentFilter) compile() {
	f.once.Do(func() {
		f.bannedWordRegexps = make([]*regexp.Regexp, 0, len(bannedWords))
		for _, word := range bannedWords {
			f.bannedWordRegexps = append(f.bannedWordRegexps,
				regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
		}
		f.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
		f.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
		f.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	})
}

// Check returns whether text is acceptable and, if not, a machine-readable
// rejection reason.
func (f *ContentFilter) Check(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if f.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if f.emailPattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if f.phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	return true, ""
}

// RejectionMessage maps a rejection reason to user-facing copy.
func (f *ContentFilter) RejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Your message contains inappropriate language.",
		"url_not_allowed":          "URLs and web links are not allowed.",
		"contact_info_not_allowed": "Contact information is not allowed.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your message does not meet our content guidelines."
}
