package dto

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

var (
	bdPhonePattern = regexp.MustCompile(`^01[3-9]\d{8}$`)
	nidPattern     = regexp.MustCompile(`^(\d{10}|\d{13}|\d{17})$`)
	hhmmPattern    = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// NewValidator returns a validator that reports JSON field names and knows
// the local formats used by the forms.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("bdphone", func(fl validator.FieldLevel) bool {
		return bdPhonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("nid", func(fl validator.FieldLevel) bool {
		return nidPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		m, err := models.ParseMoney(fl.Field().String())
		return err == nil && m >= 0
	})

	v.RegisterStructValidation(validateTimetable, TimetableRequest{})
	v.RegisterStructValidation(validateExam, ExamRequest{})
	return v
}

func validateTimetable(sl validator.StructLevel) {
	req := sl.Current().Interface().(TimetableRequest)
	if hhmmPattern.MatchString(req.StartTime) && hhmmPattern.MatchString(req.EndTime) && req.EndTime <= req.StartTime {
		sl.ReportError(req.EndTime, "end_time", "EndTime", "after", "start_time")
	}
}

func validateExam(sl validator.StructLevel) {
	req := sl.Current().Interface().(ExamRequest)
	if req.PassMarks > req.TotalMarks {
		sl.ReportError(req.PassMarks, "pass_marks", "PassMarks", "ltefield", "total_marks")
	}
}

// ParseDate parses a YYYY-MM-DD value as a calendar date.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(raw))
}

// optional turns blank input into nil.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// optionalDate parses a date when present.
func optionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
