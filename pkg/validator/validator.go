// Package validator checks request input at the transport boundary and
// collects per-field messages.
package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const (
	maxUsernameLen = 50
	maxNameLen     = 100
	maxPhoneLen    = 32
	maxPasswordLen = 1024
	maxBodyLen     = 10000
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
var phoneRegex = regexp.MustCompile(`^[0-9+()\-. ]+$`)

func ValidateRegister(username, password, firstName, lastName, phone string) ValidationErrors {
	errs := make(ValidationErrors)

	validateUsername("username", username, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) > maxPasswordLen {
		errs.Add("password", "Password is too long")
	}

	requiredText("first_name", "First name", firstName, maxNameLen, errs)
	requiredText("last_name", "Last name", lastName, maxNameLen, errs)

	phone = strings.TrimSpace(phone)
	if phone == "" {
		errs.Add("phone", "Phone is required")
	} else if len(phone) > maxPhoneLen {
		errs.Add("phone", "Phone is too long")
	} else if !phoneRegex.MatchString(phone) {
		errs.Add("phone", "Phone can only contain digits, spaces and + ( ) - .")
	}

	return errs
}

func ValidateLogin(username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(username) == "" {
		errs.Add("username", "Username is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateMessage(toUsername, body string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(toUsername) == "" {
		errs.Add("to_username", "Recipient is required")
	}

	if strings.TrimSpace(body) == "" {
		errs.Add("body", "Message body is required")
	} else if utf8.RuneCountInString(body) > maxBodyLen {
		errs.Add("body", "Message body is too long")
	}

	return errs
}

func validateUsername(field, username string, errs ValidationErrors) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		errs.Add(field, "Username is required")
	case len(username) > maxUsernameLen:
		errs.Add(field, "Username is too long")
	case !usernameRegex.MatchString(username):
		errs.Add(field, "Username can only contain letters, numbers, _ . and -")
	}
}

func requiredText(field, label, value string, max int, errs ValidationErrors) {
	value = strings.TrimSpace(value)
	if value == "" {
		errs.Add(field, label+" is required")
	} else if utf8.RuneCountInString(value) > max {
		errs.Add(field, label+" is too long")
	}
}
