package model

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// ValidateRequiredText は必須のテキスト項目を検証する。
// 空白のみの値は未入力とみなし、長さは文字数（rune数）で数える。
func ValidateRequiredText(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return NewInvalidInputError(field, "必須項目です")
	}
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		return NewInvalidInputError(field, "長すぎます")
	}
	return nil
}

// MaxEmailLength はメールアドレスの最大長。
const MaxEmailLength = 255

// ValidateEmail はメールアドレスの形式を検証する。
// 表示名付きの形式（"Alice <alice@example.com>"）は受け付けない。
func ValidateEmail(email string) error {
	if err := ValidateRequiredText("email", email, MaxEmailLength); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewInvalidInputError("email", "メールアドレスの形式が正しくありません")
	}
	return nil
}
