package utils

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateEmail(email string) (bool, error) {
	email_regex_pattern := `^[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*@(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?$`

	regex, err := regexp.Compile(email_regex_pattern)
	if err != nil {
		return false, fmt.Errorf("error: compiling regex: %s", err)
	}

	if !regex.MatchString(email) {
		return false, fmt.Errorf("error: email format incorrect")
	}
	return true, nil
}

func GetQueryParamAsInt(c fiber.Ctx, paramName string, defaultValue int) (int, error) {
	paramValue := c.Query(paramName)

	// If parameter is not provided or empty, return default value
	if paramValue == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(paramValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", paramName)
	}

	if intValue <= 0 {
		return 0, fmt.Errorf("invalid %s", paramName)
	}

	return intValue, nil
}
