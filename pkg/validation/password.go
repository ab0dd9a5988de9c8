package validation

import "regexp"

// PasswordRequirements is the message shown when a password fails IsStrongPassword.
const PasswordRequirements = "Password must be at least 8 characters, with at least one uppercase letter, one lowercase letter, one number, and one special character."

// PasswordSymbols lists the special characters a strong password may use.
const PasswordSymbols = "@$!%*?&"

var (
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSymbol  = regexp.MustCompile(`[@$!%*?&]`)
)

// IsStrongPassword reports whether password has at least 8 characters drawn
// from letters, digits and PasswordSymbols, with at least one of each of
// lowercase, uppercase, digit and symbol. RE2 has no lookahead, so each class
// is matched separately.
func IsStrongPassword(password string) bool {
	return passwordCharset.MatchString(password) &&
		passwordLower.MatchString(password) &&
		passwordUpper.MatchString(password) &&
		passwordDigit.MatchString(password) &&
		passwordSymbol.MatchString(password)
}
