package masking

// Strategy defines how a detected secret is replaced.
type Strategy string

const (
	StrategyRedact  Strategy = "redact"  // Replace with [REDACTED]
	StrategyFull    Strategy = "full"    // Replace every character with the mask char
	StrategyPartial Strategy = "partial" // Keep the last ShowLast characters
	StrategyHash    Strategy = "hash"    // Replace with a short SHA-256 digest
)

// Redacted is the StrategyRedact replacement.
const Redacted = "[REDACTED]"

// Kind names the family of credential a pattern detects.
type Kind string

const (
	KindGitHubToken  Kind = "github_token"
	KindGitLabToken  Kind = "gitlab_token"
	KindAWSAccessKey Kind = "aws_access_key"
	KindSlackToken   Kind = "slack_token"
	KindBearer       Kind = "bearer"
	KindURLPassword  Kind = "url_password"
	KindAssignment   Kind = "assignment"
	KindPrivateKey   Kind = "private_key"
)

// Config holds masking settings.
type Config struct {
	Strategy Strategy
	ShowLast int  // For StrategyPartial
	MaskChar rune // For StrategyFull and StrategyPartial

	// ExtraKeys are additional map key fragments treated as sensitive.
	ExtraKeys []string
}

func DefaultConfig() *Config {
	return &Config{
		Strategy: StrategyRedact,
		ShowLast: 4,
		MaskChar: '*',
	}
}

// Finding is one detected credential in a string.
type Finding struct {
	Kind  Kind
	Start int
	End   int
}
