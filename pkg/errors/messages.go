package errors

import (
	"fmt"
	"strings"
)

// Supported message languages.
const (
	LangBengali = "bn"
	LangEnglish = "en"
)

var kindMessages = map[Kind]map[string]string{
	KindValidation: {
		LangBengali: "ইনপুট সঠিক নয়",
		LangEnglish: "The input is not valid",
	},
	KindConflict: {
		LangBengali: "এই আইডি ইতিমধ্যে ব্যবহৃত হয়েছে",
		LangEnglish: "This ID is already in use",
	},
	KindReferential: {
		LangBengali: "সংশ্লিষ্ট তথ্য পাওয়া যায়নি",
		LangEnglish: "Related data not found",
	},
	KindRequired: {
		LangBengali: "প্রয়োজনীয় তথ্য প্রদান করুন",
		LangEnglish: "Please provide the required information",
	},
	KindAuthorization: {
		LangBengali: "আপনার এই কাজের অনুমতি নেই",
		LangEnglish: "You are not permitted to do this",
	},
	KindAuthentication: {
		LangBengali: "আপনি লগইন করেননি",
		LangEnglish: "You are not logged in",
	},
	KindNotFound: {
		LangBengali: "তথ্য খুঁজে পাওয়া যায়নি",
		LangEnglish: "The requested data was not found",
	},
	KindUnclassified: {
		LangBengali: "কিছু ভুল হয়েছে, আবার চেষ্টা করুন",
		LangEnglish: "Something went wrong, please try again",
	},
}

// codeMessages override the kind message for a few specific codes.
var codeMessages = map[string]map[string]string{
	"INVALID_CREDENTIALS": {
		LangBengali: "ইমেইল অথবা পাসওয়ার্ড সঠিক নয়",
		LangEnglish: "Invalid email or password",
	},
	"ACCOUNT_INACTIVE": {
		LangBengali: "অ্যাকাউন্টটি নিষ্ক্রিয়",
		LangEnglish: "This account is inactive",
	},
	"RATE_LIMITED": {
		LangBengali: "অনেকবার চেষ্টা করা হয়েছে, কিছুক্ষণ পর আবার চেষ্টা করুন",
		LangEnglish: "Too many attempts, please wait and try again",
	},
}

var ruleMessages = map[string]map[string]string{
	"required": {LangBengali: "এই ঘরটি পূরণ করা আবশ্যক", LangEnglish: "This field is required"},
	"min":      {LangBengali: "সর্বনিম্ন %s", LangEnglish: "Must be at least %s"},
	"max":      {LangBengali: "সর্বোচ্চ %s", LangEnglish: "Must be at most %s"},
	"gte":      {LangBengali: "সর্বনিম্ন %s", LangEnglish: "Must be at least %s"},
	"lte":      {LangBengali: "সর্বোচ্চ %s", LangEnglish: "Must be at most %s"},
	"gt":       {LangBengali: "%s এর বেশি হতে হবে", LangEnglish: "Must be greater than %s"},
	"oneof":    {LangBengali: "অনুমোদিত মান: %s", LangEnglish: "Must be one of: %s"},
	"email":    {LangBengali: "সঠিক ইমেইল দিন", LangEnglish: "Must be a valid email"},
	"bdphone":  {LangBengali: "সঠিক মোবাইল নম্বর দিন (01XXXXXXXXX)", LangEnglish: "Must be a valid mobile number (01XXXXXXXXX)"},
	"nid":      {LangBengali: "জাতীয় পরিচয়পত্র নম্বর ১০, ১৩ অথবা ১৭ সংখ্যার হতে হবে", LangEnglish: "National ID must have 10, 13 or 17 digits"},
	"money":    {LangBengali: "সঠিক টাকার পরিমাণ দিন", LangEnglish: "Must be a valid amount"},
	"date":     {LangBengali: "তারিখ YYYY-MM-DD আকারে দিন", LangEnglish: "Date must be YYYY-MM-DD"},
	"hhmm":     {LangBengali: "সময় HH:MM আকারে দিন", LangEnglish: "Time must be HH:MM"},
	"after":    {LangBengali: "%s এর পরে হতে হবে", LangEnglish: "Must be after %s"},
	"uuid":     {LangBengali: "সঠিক আইডি দিন", LangEnglish: "Must be a valid identifier"},
	"ltefield": {
		LangBengali: "%s এর বেশি হতে পারবে না",
		LangEnglish: "Must not exceed %s",
	},
	"gtefield": {
		LangBengali: "%s এর আগে হতে পারবে না",
		LangEnglish: "Must not be before %s",
	},
	"overlap": {
		LangBengali: "এই সময়ে ক্লাসের আরেকটি পিরিয়ড আছে (%s)",
		LangEnglish: "Overlaps another period of the class (%s)",
	},
	"dive":   {LangBengali: "তালিকার একটি ঘর সঠিক নয়", LangEnglish: "An item in the list is not valid"},
	"unique": {LangBengali: "তালিকায় একই তথ্য একাধিকবার আছে", LangEnglish: "The list contains duplicates"},
}

// NormalizeLanguage maps an Accept-Language style value onto a supported language.
func NormalizeLanguage(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, LangEnglish) {
		return LangEnglish
	}
	if strings.HasPrefix(raw, LangBengali) {
		return LangBengali
	}
	return ""
}

// Message returns the fixed user-facing text for a taxonomy kind.
func Message(kind Kind, lang string) string {
	msgs, ok := kindMessages[kind]
	if !ok {
		msgs = kindMessages[KindUnclassified]
	}
	if msg, ok := msgs[lang]; ok {
		return msg
	}
	return msgs[LangBengali]
}

// RuleMessage renders a field violation in the requested language.
func RuleMessage(v Violation, lang string) string {
	msgs, ok := ruleMessages[v.Rule]
	if !ok {
		return Message(KindValidation, lang)
	}
	tmpl, ok := msgs[lang]
	if !ok {
		tmpl = msgs[LangBengali]
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, strings.ReplaceAll(v.Param, " ", ", "))
	}
	return tmpl
}

// Localize returns a copy whose public text is rendered in lang.
func (e *Error) Localize(lang string) *Error {
	if e == nil {
		return nil
	}
	if lang != LangEnglish {
		lang = LangBengali
	}
	clone := *e
	clone.Message = Message(e.Kind, lang)
	if msgs, ok := codeMessages[e.Code]; ok {
		clone.Message = msgs[lang]
	}
	if len(e.violations) > 0 {
		clone.Fields = make(map[string]string, len(e.violations))
		for field, v := range e.violations {
			clone.Fields[field] = RuleMessage(v, lang)
		}
	}
	return &clone
}
