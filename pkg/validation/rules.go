package validation

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("custom_email", isGoodEmailFormat); err != nil {
		return err
	}
	if err := v.RegisterValidation("signature_b64", isSignaturePayload); err != nil {
		return err
	}
	if err := v.RegisterValidation("inventory_code", isInventoryCode); err != nil {
		return err
	}
	return nil
}

// isGoodEmailFormat - проверка email
func isGoodEmailFormat(fl validator.FieldLevel) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(fl.Field().String())
}

// isSignaturePayload - подпись приходит с фронта как base64 (канвас с росписью).
// Пустая строка пропускается: обязательность проверяет сервис, который
// должен вернуть типизированную ошибку missing-signature, а не 400.
func isSignaturePayload(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	// data-url префикс с канваса допустим
	if idx := strings.Index(s, ","); idx != -1 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

// isInventoryCode - инвентарный номер вида MBG-001, ECG-1204 и т.п.
func isInventoryCode(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^[A-Z]{2,5}-\d{1,6}$`)
	return re.MatchString(fl.Field().String())
}
