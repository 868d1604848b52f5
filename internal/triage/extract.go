package triage

import (
	"net/mail"
	"strings"
	"unicode"
)

// NormalizeName collapses internal whitespace and title-cases the result.
// Any non-empty string is accepted; patients know their own names better
// than a validator does.
func NormalizeName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	for i, f := range fields {
		fields[i] = titleCaseWord(f)
	}
	return strings.Join(fields, " ")
}

func titleCaseWord(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ValidateEmail performs an RFC-shape syntax check without deliverability
// lookups and returns the normalized address. The domain is lowercased; the
// local part is preserved as typed.
func ValidateEmail(raw string) (string, bool) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", false
	}

	addr, err := mail.ParseAddress(candidate)
	if err != nil {
		return "", false
	}

	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || at == len(addr.Address)-1 {
		return "", false
	}
	local, domain := addr.Address[:at], addr.Address[at+1:]
	if !strings.Contains(domain, ".") {
		return "", false
	}

	return local + "@" + strings.ToLower(domain), true
}
