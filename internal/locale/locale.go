// Package locale holds the user facing messages shown to students and teachers.
//
// Persian is the default language, English is provided for staff tooling.
// Message keys are the English texts.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	MsgResultsNotVisible = "Results have not been made visible by the teacher yet."
	MsgNotAssigned       = "You have not been assigned to a group yet."
	MsgConnection        = "Unable to connect. Please check your internet connection and try again."
	MsgUnauthorized      = "Login failed. Please check your details and try again."
	MsgForbidden         = "You don't have permission to perform this action."
	MsgNotFound          = "The requested record was not found."
	MsgInvalidRequest    = "Invalid request. Please check your input and try again."
	MsgUnavailable       = "The service is temporarily unavailable. Please try again later."
	MsgGeneric           = "An error occurred. Please try again."
)

var persian = map[string]string{
	MsgResultsNotVisible: "نتایج هنوز توسط معلم نمایش داده نشده است.",
	MsgNotAssigned:       "شما هنوز به گروهی اختصاص داده نشده‌اید.",
	MsgConnection:        "اتصال برقرار نشد. لطفاً اتصال اینترنت خود را بررسی کرده و دوباره تلاش کنید.",
	MsgUnauthorized:      "ورود ناموفق بود. لطفاً اطلاعات خود را بررسی کرده و دوباره تلاش کنید.",
	MsgForbidden:         "شما اجازه انجام این عملیات را ندارید.",
	MsgNotFound:          "مورد درخواستی یافت نشد.",
	MsgInvalidRequest:    "درخواست نامعتبر است. لطفاً ورودی خود را بررسی کرده و دوباره تلاش کنید.",
	MsgUnavailable:       "سرویس موقتاً در دسترس نیست. لطفاً بعداً دوباره تلاش کنید.",
	MsgGeneric:           "خطایی رخ داد. لطفاً دوباره تلاش کنید.",
}

// Supported lists the languages with a full message set, the first entry is the default
var Supported = []language.Tag{language.Persian, language.English}

var matcher = language.NewMatcher(Supported)

func init() {
	for key, fa := range persian {
		_ = message.SetString(language.Persian, key, fa)
		_ = message.SetString(language.English, key, key)
	}
}

// Match returns the supported language closest to lang (a BCP 47 tag such as "fa", "en-GB").
// Unknown or malformed tags fall back to Persian.
func Match(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return Supported[0]
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// NewPrinter returns a printer for the supported language closest to lang
func NewPrinter(lang string) *message.Printer {
	return message.NewPrinter(Match(lang))
}
