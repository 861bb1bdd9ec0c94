package email

import "fmt"

const (
	VerificationSubject  = "Verify your email - Reminder Board"
	PasswordResetSubject = "Reset your password - Reminder Board"
)

// VerificationBody builds the HTML body carrying the one-time verification
// link. The raw token appears only in this link; storage holds its hash.
func VerificationBody(baseURL, rawToken string) string {
	link := baseURL + "/auth/verify?token=" + rawToken
	return fmt.Sprintf(
		`<p>Thanks for signing up for Reminder Board!</p>
<p>Please confirm your email address by clicking the link below (valid for 24 hours):</p>
<p><a href="%s">%s</a></p>
<p>If you didn't create an account, you can safely ignore this email.</p>`,
		link, link,
	)
}

// PasswordResetBody builds the HTML body carrying the one-time reset link.
func PasswordResetBody(baseURL, rawToken string) string {
	link := baseURL + "/auth/reset-password?token=" + rawToken
	return fmt.Sprintf(
		`<p>We received a request to reset your Reminder Board password.</p>
<p>Click the link below to choose a new one (expires in 1 hour):</p>
<p><a href="%s">%s</a></p>
<p>If you didn't request a reset, ignore this email and your password will stay unchanged.</p>`,
		link, link,
	)
}
