package user

import (
	"net/url"
	"regexp"

	"github.com/sarvashiksha/backend/core"
)

var resetLinkRegex = regexp.MustCompile(`/password-reset/confirm\?(\S+)`)

// ParseResetLink extracts the uid & token of the password reset link found in a rendered message.
func ParseResetLink(msg core.EmailMessage) (uid, token string) {
	m := resetLinkRegex.FindStringSubmatch(msg.TextContent)
	if m == nil {
		return "", ""
	}
	q, err := url.ParseQuery(m[1])
	if err != nil {
		return "", ""
	}
	return q.Get("uid"), q.Get("token")
}
