package submission

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

// Length caps applied to each field.
const (
	MaxNameLen    = 50
	MaxPhoneLen   = 30
	MaxEmailLen   = 254
	MaxChannelLen = 200
	MaxMessageLen = 2000
)

// Validation messages shown next to the offending field.
const (
	MsgNameRequired  = "이름을 입력해주세요."
	MsgPhoneRequired = "연락처를 입력해주세요."
	MsgEmailRequired = "이메일을 입력해주세요."
	MsgEmailInvalid  = "올바른 이메일 주소를 입력해주세요."
	MsgTooLong       = "입력 내용이 너무 깁니다."
)

// ValidationErrors maps a field name to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Validate checks the required fields and length caps. It returns nil when
// the fields are acceptable.
func Validate(f Fields) ValidationErrors {
	f = f.Trimmed()
	errs := ValidationErrors{}
	if f.Name == "" {
		errs[FieldName] = MsgNameRequired
	}
	if f.Phone == "" {
		errs[FieldPhone] = MsgPhoneRequired
	}
	switch {
	case f.Email == "":
		errs[FieldEmail] = MsgEmailRequired
	case !govalidator.IsEmail(f.Email):
		errs[FieldEmail] = MsgEmailInvalid
	}
	checkLen(errs, FieldName, f.Name, MaxNameLen)
	checkLen(errs, FieldPhone, f.Phone, MaxPhoneLen)
	checkLen(errs, FieldEmail, f.Email, MaxEmailLen)
	checkLen(errs, FieldChannel, f.Channel, MaxChannelLen)
	checkLen(errs, FieldMessage, f.Message, MaxMessageLen)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkLen(errs ValidationErrors, field, value string, max int) {
	if _, ok := errs[field]; ok {
		return
	}
	if utf8.RuneCountInString(value) > max {
		errs[field] = MsgTooLong
	}
}
