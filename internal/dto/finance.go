package dto

import (
	"strings"
	"time"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

func parseAmount(field, raw string) (models.Money, error) {
	m, err := models.ParseMoney(raw)
	if err != nil || m < 0 {
		return 0, appErrors.Invalid(field, "money", "")
	}
	return m, nil
}

// ExpenseRequest records a single expense line.
type ExpenseRequest struct {
	Title    string `json:"title" validate:"required,max=160"`
	Category string `json:"category" validate:"required,oneof=bazar utility maintenance stationery transport rent other"`
	Amount   string `json:"amount" validate:"required,money"`
	Date     string `json:"date" validate:"required,date"`
	Notes    string `json:"notes" validate:"omitempty,max=500"`
}

// ToRecord maps the form onto an expense row.
func (r ExpenseRequest) ToRecord() (models.Expense, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return models.Expense{}, err
	}
	d, err := ParseDate(r.Date)
	if err != nil {
		return models.Expense{}, appErrors.Invalid("date", "date", "")
	}
	return models.Expense{
		Title:    strings.TrimSpace(r.Title),
		Category: models.ExpenseCategory(r.Category),
		Amount:   amount,
		Date:     d,
		Notes:    optional(r.Notes),
	}, nil
}

// ExpenseBatchItem is one line of a shopping trip.
type ExpenseBatchItem struct {
	Title    string `json:"title" validate:"required,max=160"`
	Category string `json:"category" validate:"omitempty,oneof=bazar utility maintenance stationery transport rent other"`
	Amount   string `json:"amount" validate:"required,money"`
	Notes    string `json:"notes" validate:"omitempty,max=500"`
}

// ExpenseBatchRequest records several expense lines bought together.
type ExpenseBatchRequest struct {
	BatchName string             `json:"batch_name" validate:"required,max=120"`
	Date      string             `json:"date" validate:"required,date"`
	Category  string             `json:"category" validate:"omitempty,oneof=bazar utility maintenance stationery transport rent other"`
	Items     []ExpenseBatchItem `json:"items" validate:"required,min=1,max=200,dive"`
}

// ToRecords maps the trip onto expense rows sharing batchID. Items without a
// category inherit the batch category, then "bazar".
func (r ExpenseBatchRequest) ToRecords(batchID string) ([]models.Expense, error) {
	d, err := ParseDate(r.Date)
	if err != nil {
		return nil, appErrors.Invalid("date", "date", "")
	}
	name := strings.TrimSpace(r.BatchName)
	out := make([]models.Expense, 0, len(r.Items))
	for _, item := range r.Items {
		amount, err := parseAmount("amount", item.Amount)
		if err != nil {
			return nil, err
		}
		category := item.Category
		if category == "" {
			category = r.Category
		}
		if category == "" {
			category = string(models.ExpenseBazar)
		}
		id, batchName := batchID, name
		out = append(out, models.Expense{
			Title:     strings.TrimSpace(item.Title),
			Category:  models.ExpenseCategory(category),
			Amount:    amount,
			Date:      d,
			BatchID:   &id,
			BatchName: &batchName,
			Notes:     optional(item.Notes),
		})
	}
	return out, nil
}

// TransactionRequest records a ledger entry.
type TransactionRequest struct {
	Type        string `json:"type" validate:"required,oneof=income expense"`
	Category    string `json:"category" validate:"required,max=80"`
	Amount      string `json:"amount" validate:"required,money"`
	Date        string `json:"date" validate:"required,date"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// ToRecord maps the form onto a transaction row.
func (r TransactionRequest) ToRecord() (models.Transaction, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	d, err := ParseDate(r.Date)
	if err != nil {
		return models.Transaction{}, appErrors.Invalid("date", "date", "")
	}
	return models.Transaction{
		Type:        models.TransactionType(r.Type),
		Category:    strings.TrimSpace(r.Category),
		Amount:      amount,
		Date:        d,
		Description: optional(r.Description),
	}, nil
}

// FeeStructureRequest defines a fee.
type FeeStructureRequest struct {
	FeeType    string `json:"fee_type" validate:"required,max=80"`
	Amount     string `json:"amount" validate:"required,money"`
	Frequency  string `json:"frequency" validate:"required,oneof=monthly yearly one_time"`
	Department string `json:"department" validate:"omitempty,oneof=noorani nazera hifz kitab"`
	ClassName  string `json:"class_name" validate:"omitempty,max=60"`
	Active     *bool  `json:"active"`
}

// ToRecord maps the form onto a fee structure row.
func (r FeeStructureRequest) ToRecord() (models.FeeStructure, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return models.FeeStructure{}, err
	}
	var dept *models.Department
	if r.Department != "" {
		d := models.Department(r.Department)
		dept = &d
	}
	return models.FeeStructure{
		FeeType:    strings.TrimSpace(r.FeeType),
		Amount:     amount,
		Frequency:  models.FeeFrequency(r.Frequency),
		Department: dept,
		ClassName:  optional(r.ClassName),
		Active:     boolOr(r.Active, true),
	}, nil
}

// FeePaymentRequest collects a fee from a student.
type FeePaymentRequest struct {
	StudentID      string `json:"student_id" validate:"required,uuid"`
	FeeStructureID string `json:"fee_structure_id" validate:"required,uuid"`
	Amount         string `json:"amount" validate:"required,money"`
	PaymentDate    string `json:"payment_date" validate:"omitempty,date"`
	Method         string `json:"method" validate:"omitempty,oneof=cash bkash nagad bank"`
	Month          *int   `json:"month" validate:"omitempty,min=1,max=12"`
	Year           *int   `json:"year" validate:"omitempty,gte=2000,lte=2100"`
	ReceiptNumber  string `json:"receipt_number" validate:"omitempty,max=40"`
	Notes          string `json:"notes" validate:"omitempty,max=500"`
}

// ToRecord maps the form onto a fee payment row. The payment date defaults to
// today and the method to cash.
func (r FeePaymentRequest) ToRecord(now time.Time) (models.FeePayment, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return models.FeePayment{}, err
	}
	paid := today(now)
	if r.PaymentDate != "" {
		if paid, err = ParseDate(r.PaymentDate); err != nil {
			return models.FeePayment{}, appErrors.Invalid("payment_date", "date", "")
		}
	}
	method := models.PaymentMethod(r.Method)
	if method == "" {
		method = models.PaymentCash
	}
	return models.FeePayment{
		StudentID:      r.StudentID,
		FeeStructureID: r.FeeStructureID,
		Amount:         amount,
		PaymentDate:    paid,
		Method:         method,
		Month:          r.Month,
		Year:           r.Year,
		ReceiptNumber:  optional(r.ReceiptNumber),
		Notes:          optional(r.Notes),
	}, nil
}

// SalaryPaymentRequest records a month's salary for a staff member.
type SalaryPaymentRequest struct {
	StaffID     string `json:"staff_id" validate:"required,uuid"`
	Month       int    `json:"month" validate:"required,min=1,max=12"`
	Year        int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Amount      string `json:"amount" validate:"required,money"`
	PaymentDate string `json:"payment_date" validate:"omitempty,date"`
	Method      string `json:"method" validate:"omitempty,oneof=cash bkash nagad bank"`
	Status      string `json:"status" validate:"omitempty,oneof=paid unpaid"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

// ToRecord maps the form onto a salary row. A paid salary without a date is dated today;
// an unpaid one never carries a payment date.
func (r SalaryPaymentRequest) ToRecord(now time.Time) (models.SalaryPayment, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return models.SalaryPayment{}, err
	}
	status := models.SalaryStatus(r.Status)
	if status == "" {
		status = models.SalaryPaid
	}
	paidOn, err := optionalDate(r.PaymentDate)
	if err != nil {
		return models.SalaryPayment{}, appErrors.Invalid("payment_date", "date", "")
	}
	switch {
	case status == models.SalaryUnpaid:
		paidOn = nil
	case paidOn == nil:
		d := today(now)
		paidOn = &d
	}
	method := models.PaymentMethod(r.Method)
	if method == "" {
		method = models.PaymentCash
	}
	return models.SalaryPayment{
		StaffID:     r.StaffID,
		Month:       r.Month,
		Year:        r.Year,
		Amount:      amount,
		PaymentDate: paidOn,
		Method:      method,
		Status:      status,
		Notes:       optional(r.Notes),
	}, nil
}
