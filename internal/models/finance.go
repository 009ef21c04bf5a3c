package models

import "time"

// ExpenseCategory is the fixed classification of an expense line.
type ExpenseCategory string

const (
	ExpenseBazar       ExpenseCategory = "bazar"
	ExpenseUtility     ExpenseCategory = "utility"
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseStationery  ExpenseCategory = "stationery"
	ExpenseTransport   ExpenseCategory = "transport"
	ExpenseRent        ExpenseCategory = "rent"
	ExpenseOther       ExpenseCategory = "other"
)

// Expense is one spending line. Lines entered together share BatchID.
type Expense struct {
	ID        string          `db:"id" json:"id"`
	Title     string          `db:"title" json:"title"`
	Category  ExpenseCategory `db:"category" json:"category"`
	Amount    Money           `db:"amount" json:"amount"`
	Date      time.Time       `db:"date" json:"date"`
	BatchID   *string         `db:"batch_id" json:"batch_id"`
	BatchName *string         `db:"batch_name" json:"batch_name"`
	Notes     *string         `db:"notes" json:"notes"`
	CreatedBy *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	ListFilter
	Category ExpenseCategory
	BatchID  string
	DateFrom *time.Time
	DateTo   *time.Time
}

// TransactionType separates ledger income from spending.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is a general ledger entry.
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	Type        TransactionType `db:"type" json:"type"`
	Category    string          `db:"category" json:"category"`
	Amount      Money           `db:"amount" json:"amount"`
	Date        time.Time       `db:"date" json:"date"`
	Description *string         `db:"description" json:"description"`
	CreatedBy   *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	ListFilter
	Type     TransactionType
	Category string
	DateFrom *time.Time
	DateTo   *time.Time
}

// FeeFrequency says how often a fee is charged.
type FeeFrequency string

const (
	FeeMonthly FeeFrequency = "monthly"
	FeeYearly  FeeFrequency = "yearly"
	FeeOneTime FeeFrequency = "one_time"
)

// FeeStructure defines a chargeable fee, optionally scoped to a department or class.
type FeeStructure struct {
	ID         string       `db:"id" json:"id"`
	FeeType    string       `db:"fee_type" json:"fee_type"`
	Amount     Money        `db:"amount" json:"amount"`
	Frequency  FeeFrequency `db:"frequency" json:"frequency"`
	Department *Department  `db:"department" json:"department"`
	ClassName  *string      `db:"class_name" json:"class_name"`
	Active     bool         `db:"active" json:"active"`
	CreatedBy  *string      `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// FeeStructureFilter narrows fee structure listings.
type FeeStructureFilter struct {
	ListFilter
	Department Department
	Active     *bool
}

// PaymentMethod is how money changed hands.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentBkash PaymentMethod = "bkash"
	PaymentNagad PaymentMethod = "nagad"
	PaymentBank  PaymentMethod = "bank"
)

// FeePayment records a fee collected from a student.
type FeePayment struct {
	ID             string        `db:"id" json:"id"`
	StudentID      string        `db:"student_id" json:"student_id"`
	FeeStructureID string        `db:"fee_structure_id" json:"fee_structure_id"`
	Amount         Money         `db:"amount" json:"amount"`
	PaymentDate    time.Time     `db:"payment_date" json:"payment_date"`
	Method         PaymentMethod `db:"method" json:"method"`
	Month          *int          `db:"month" json:"month"`
	Year           *int          `db:"year" json:"year"`
	ReceiptNumber  *string       `db:"receipt_number" json:"receipt_number"`
	Notes          *string       `db:"notes" json:"notes"`
	CreatedBy      *string       `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`

	StudentName *string `db:"student_name" json:"student_name,omitempty"`
	FeeType     *string `db:"fee_type" json:"fee_type,omitempty"`
}

// FeePaymentFilter narrows fee payment listings.
type FeePaymentFilter struct {
	ListFilter
	StudentID string
	Month     *int
	Year      *int
	DateFrom  *time.Time
	DateTo    *time.Time
}

// SalaryStatus records whether a month's salary was paid.
type SalaryStatus string

const (
	SalaryPaid   SalaryStatus = "paid"
	SalaryUnpaid SalaryStatus = "unpaid"
)

// SalaryPayment is one staff member's salary for one month.
type SalaryPayment struct {
	ID          string        `db:"id" json:"id"`
	StaffID     string        `db:"staff_id" json:"staff_id"`
	Month       int           `db:"month" json:"month"`
	Year        int           `db:"year" json:"year"`
	Amount      Money         `db:"amount" json:"amount"`
	PaymentDate *time.Time    `db:"payment_date" json:"payment_date"`
	Method      PaymentMethod `db:"method" json:"method"`
	Status      SalaryStatus  `db:"status" json:"status"`
	Notes       *string       `db:"notes" json:"notes"`
	CreatedBy   *string       `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`

	StaffName *string `db:"staff_name" json:"staff_name,omitempty"`
}

// SalaryFilter narrows salary listings.
type SalaryFilter struct {
	ListFilter
	StaffID string
	Month   *int
	Year    *int
	Status  SalaryStatus
}
