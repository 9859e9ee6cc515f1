package sim

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateName checks a component name against the naming convention.
//  1. A name is a series of elements separated by dots, as in "Shop.Mill".
//     Elements must not be empty, so "Shop..Mill" and "Shop.Mill." are not
//     valid.
//  2. Every element is a capitalized CamelCase word made of letters and
//     digits.
func ValidateName(name string) error {
	for _, elem := range strings.Split(name, ".") {
		if err := elementMustBeValid(elem); err != nil {
			return fmt.Errorf("name %q is not valid: %w", name, err)
		}
	}

	return nil
}

// NameMustBeValid panics if the name does not follow the naming convention.
func NameMustBeValid(name string) {
	if err := ValidateName(name); err != nil {
		panic(err.Error())
	}
}

func elementMustBeValid(elem string) error {
	if elem == "" {
		return errors.New("name element must not be empty")
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		return errors.New("name element must start with a capital letter")
	}

	for _, c := range elem {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'

		if !isLetter && !isDigit {
			return fmt.Errorf("name element must not contain %q", c)
		}
	}

	return nil
}
