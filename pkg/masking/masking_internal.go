package masking

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

type pattern struct {
	kind  Kind
	re    *regexp.Regexp
	group int // submatch that holds the secret; 0 is the whole match
}

var builtinPatterns = []pattern{
	{KindPrivateKey, regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`), 0},
	{KindGitHubToken, regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`), 0},
	{KindGitLabToken, regexp.MustCompile(`\bglpat-[A-Za-z0-9_\-]{20,}`), 0},
	{KindAWSAccessKey, regexp.MustCompile(`\b(?:AKIA|ASIA)[A-Z0-9]{16}\b`), 0},
	{KindSlackToken, regexp.MustCompile(`\bxox[abpors]-[A-Za-z0-9\-]{10,}`), 0},
	{KindBearer, regexp.MustCompile(`(?i)\bbearer\s+([A-Za-z0-9\-._~+/]{16,}=*)`), 1},
	{KindURLPassword, regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.\-]*://[^/\s:@]+:([^@\s/]+)@`), 1},
	{KindAssignment, regexp.MustCompile(`(?i)\b[A-Z0-9_]*(?:password|passwd|secret|token|api[_-]?key)[A-Z0-9_]*\s*[:=]\s*['"]?([^\s'"$]{6,})`), 1},
}

// replace rewrites the secret submatch of every match of p in s.
func (p pattern) replace(s string, mask func(string) string) string {
	locs := p.re.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[2*p.group], loc[2*p.group+1]
		if start < 0 {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(mask(s[start:end]))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func (m *Masker) mask(value string) string {
	switch m.config.Strategy {
	case StrategyFull:
		return m.maskFull(value)
	case StrategyPartial:
		return m.maskPartial(value)
	case StrategyHash:
		return m.maskHash(value)
	default:
		return Redacted
	}
}

func (m *Masker) maskFull(value string) string {
	return strings.Repeat(string(m.config.MaskChar), len(value))
}

func (m *Masker) maskPartial(value string) string {
	if len(value) <= m.config.ShowLast*2 {
		return m.maskFull(value)
	}
	keep := len(value) - m.config.ShowLast
	return strings.Repeat(string(m.config.MaskChar), keep) + value[keep:]
}

func (m *Masker) maskHash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return "sha256:" + hex.EncodeToString(sum[:6])
}
