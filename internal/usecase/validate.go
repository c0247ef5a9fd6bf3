package usecase

import (
	"net/mail"
	"strings"
)

const minPasswordLength = 6

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

func checkPassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return invalid("Password must be at least 6 characters long.")
	}
	if confirm != "" && confirm != password {
		return invalid("Passwords do not match.")
	}
	return nil
}
