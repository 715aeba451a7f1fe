package catalog

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/pathways/core"
)

var (
	errWeakPassword = errors.New("weak password")

	// password policy
	pwdNoSpaceText   = "password must not contain whitespace"
	pwdNotAllNumText = "password cannot be entirely numeric"
	pwdAttrSimText   = "password cannot be similar to user attributes"
	pwdMaxSim        = .7
)

// checkPassword applies the password policy on top of the validator's min length:
// no whitespace, not all numeric, not similar to the name or the email.
func checkPassword(pwd, name, email string) error {
	reportErr := func(text string) error {
		return core.NewValidationError(errWeakPassword, core.FieldError{Field: "password", Error: text})
	}

	var digitCount int
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return reportErr(pwdNoSpaceText)
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len([]rune(pwd)) {
		return reportErr(pwdNotAllNumText)
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	lpwd := strings.ToLower(pwd)
	if getRatio(lpwd, strings.ToLower(name)) >= pwdMaxSim || getRatio(lpwd, strings.ToLower(email)) >= pwdMaxSim {
		return reportErr(pwdAttrSimText)
	}
	return nil
}
