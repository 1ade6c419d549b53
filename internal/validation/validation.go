// Package validation enforces field rules before any remote call is made.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxEmailLen    = 254
	minUsernameLen = 3
	maxUsernameLen = 20
	minFullNameLen = 2
	maxFullNameLen = 50
	minPasswordLen = 8
	maxPasswordLen = 64
	maxCaptionLen  = 500
	maxLocationLen = 100
	maxBioLen      = 160

	// MaxImageBytes is the upload size ceiling for post and profile images.
	MaxImageBytes = 8 * 1024 * 1024
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9._]+$`)
	fullNameRegex = regexp.MustCompile(`^[a-zA-Z]+(?: [a-zA-Z]+)*$`)
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Email validates and normalizes an email address to lowercase.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	if len(email) > maxEmailLen {
		return "", fmt.Errorf("email is too long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid email address")
	}
	return email, nil
}

// Username validates and normalizes a username to lowercase.
func Username(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < minUsernameLen {
		return "", fmt.Errorf("username must be at least %d characters", minUsernameLen)
	}
	if len(username) > maxUsernameLen {
		return "", fmt.Errorf("username must be at most %d characters", maxUsernameLen)
	}
	if !usernameRegex.MatchString(username) {
		return "", fmt.Errorf("username can contain letters, numbers, dots, and underscores only")
	}
	if strings.HasPrefix(username, ".") || strings.HasSuffix(username, ".") {
		return "", fmt.Errorf("username cannot start or end with a dot")
	}
	return username, nil
}

// FullName validates a display name.
func FullName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < minFullNameLen {
		return fmt.Errorf("full name must be at least %d characters", minFullNameLen)
	}
	if len(name) > maxFullNameLen {
		return fmt.Errorf("full name is too long")
	}
	if !fullNameRegex.MatchString(name) {
		return fmt.Errorf("full name can contain letters and single spaces only")
	}
	return nil
}

// Password validates password strength.
func Password(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password is too long")
	}
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one number")
	}
	if !hasSpecial {
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

// Caption validates a post caption.
func Caption(caption string) error {
	if strings.TrimSpace(caption) == "" {
		return fmt.Errorf("caption is required")
	}
	if len(caption) > maxCaptionLen {
		return fmt.Errorf("caption too long")
	}
	return nil
}

// Location validates an optional post location.
func Location(location string) error {
	if len(location) > maxLocationLen {
		return fmt.Errorf("location too long")
	}
	return nil
}

// Bio validates an optional profile bio.
func Bio(bio string) error {
	if len(bio) > maxBioLen {
		return fmt.Errorf("bio must be under %d characters", maxBioLen)
	}
	return nil
}

// SplitTags splits a comma-separated tag string into a trimmed ordered
// sequence, dropping empty items. An all-blank item among non-blank ones is
// an input error.
func SplitTags(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("tags must be comma separated values")
		}
		tags = append(tags, p)
	}
	return tags, nil
}

// Image validates an upload's content type and size.
func Image(contentType string, size int) error {
	if size <= 0 {
		return fmt.Errorf("image is required")
	}
	if size > MaxImageBytes {
		return fmt.Errorf("image must be less than 8MB")
	}
	if _, ok := allowedImageTypes[contentType]; !ok {
		return fmt.Errorf("only JPG, PNG or WEBP images are allowed")
	}
	return nil
}
