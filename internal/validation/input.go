package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/directory-backend/internal/models"
)

// Константы валидации
const (
	MinProfileNameLength = 2
	MaxProfileNameLength = 100
	MaxBioLength         = 1000
	MaxNicheFieldLength  = 100
	MinHourlyRate        = 0.0
	MaxHourlyRate        = 100000.0
)

// NicheFields поле профиля, обязательное для каждого типа персоны.
var NicheFields = map[string]string{
	models.UserTypeBusiness:              "business_type",
	models.UserTypeFreelancer:            "primary_skill",
	models.UserTypeSocialMediaInfluencer: "primary_skill",
	models.UserTypeOccupationProvider:    "occupation",
}

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateProfileName проверяет отображаемое имя профиля.
func ValidateProfileName(name string) error {
	if err := ValidateNonEmpty("имя", name); err != nil {
		return err
	}
	return ValidateLength("имя", strings.TrimSpace(name), MinProfileNameLength, MaxProfileNameLength)
}

// ValidateUserType проверяет тип персоны.
func ValidateUserType(userType string) error {
	if _, ok := models.ValidUserTypes[userType]; !ok {
		return fmt.Errorf("неизвестный тип профиля %q", userType)
	}
	return nil
}

// ValidateVisibility проверяет видимость профиля.
func ValidateVisibility(visibility string) error {
	if _, ok := models.ValidVisibilities[visibility]; !ok {
		return fmt.Errorf("неизвестная видимость %q", visibility)
	}
	return nil
}

// ValidateHourlyRate проверяет почасовую ставку.
func ValidateHourlyRate(rate *float64) error {
	if rate != nil {
		if *rate < MinHourlyRate {
			return fmt.Errorf("почасовая ставка не может быть отрицательной")
		}
		if *rate > MaxHourlyRate {
			return fmt.Errorf("почасовая ставка не может превышать %.0f", MaxHourlyRate)
		}
	}
	return nil
}

// ValidateBio проверяет биографию.
func ValidateBio(bio *string) error {
	if bio != nil && *bio != "" {
		bioStr := strings.TrimSpace(*bio)
		if err := ValidateLength("биография", bioStr, 0, MaxBioLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNicheField проверяет поле, обязательное для типа персоны.
func ValidateNicheField(userType string, value *string) error {
	field, ok := NicheFields[userType]
	if !ok {
		return ValidateUserType(userType)
	}
	if value == nil {
		return fmt.Errorf("%s обязателен для типа %s", field, userType)
	}
	if err := ValidateNonEmpty(field, *value); err != nil {
		return err
	}
	return ValidateLength(field, strings.TrimSpace(*value), 0, MaxNicheFieldLength)
}
