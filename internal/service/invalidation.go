package service

import (
	"context"

	"go.uber.org/zap"
)

// Scope names a family of cached reads. Every cached key lives under exactly one scope.
type Scope string

const (
	ScopeStudents       Scope = "students"
	ScopeStaff          Scope = "staff"
	ScopeAttendance     Scope = "attendance"
	ScopeExpenses       Scope = "expenses"
	ScopeTransactions   Scope = "transactions"
	ScopeFeeStructures  Scope = "fee_structures"
	ScopeFeePayments    Scope = "fee_payments"
	ScopeSalaryPayments Scope = "salary_payments"
	ScopeExams          Scope = "exams"
	ScopeExamResults    Scope = "exam_results"
	ScopeTimetables     Scope = "timetables"
	ScopeNotices        Scope = "notices"
	ScopeDocuments      Scope = "documents"
	ScopeUsers          Scope = "users"
	ScopeDashboard      Scope = "dashboard"
	ScopeReports        Scope = "reports"
)

// Mutation names a successful write.
type Mutation string

const (
	MutationStudentSave       Mutation = "student.save"
	MutationStudentDelete     Mutation = "student.delete"
	MutationStaffSave         Mutation = "staff.save"
	MutationStaffDelete       Mutation = "staff.delete"
	MutationAttendanceMark    Mutation = "attendance.mark"
	MutationAttendanceBulk    Mutation = "attendance.bulk"
	MutationAttendanceDelete  Mutation = "attendance.delete"
	MutationExpenseSave       Mutation = "expense.save"
	MutationExpenseDelete     Mutation = "expense.delete"
	MutationExpenseBatch      Mutation = "expense.batch"
	MutationExpenseBatchDrop  Mutation = "expense.batch_delete"
	MutationTransactionSave   Mutation = "transaction.save"
	MutationTransactionDelete Mutation = "transaction.delete"
	MutationFeeStructureSave  Mutation = "fee_structure.save"
	MutationFeeStructureDrop  Mutation = "fee_structure.delete"
	MutationFeePaymentSave    Mutation = "fee_payment.save"
	MutationFeePaymentDelete  Mutation = "fee_payment.delete"
	MutationSalarySave        Mutation = "salary.save"
	MutationSalaryDelete      Mutation = "salary.delete"
	MutationExamSave          Mutation = "exam.save"
	MutationExamDelete        Mutation = "exam.delete"
	MutationExamResultsSave   Mutation = "exam_results.save"
	MutationExamResultDelete  Mutation = "exam_result.delete"
	MutationTimetableSave     Mutation = "timetable.save"
	MutationTimetableDelete   Mutation = "timetable.delete"
	MutationNoticeSave        Mutation = "notice.save"
	MutationNoticeDelete      Mutation = "notice.delete"
	MutationDocumentSave      Mutation = "document.save"
	MutationDocumentDelete    Mutation = "document.delete"
	MutationUserRole          Mutation = "user.role"
	MutationUserStatus        Mutation = "user.status"
	MutationUserSignUp        Mutation = "user.sign_up"
)

var (
	studentScopes    = []Scope{ScopeStudents, ScopeFeePayments, ScopeExamResults, ScopeDashboard, ScopeReports}
	staffScopes      = []Scope{ScopeStaff, ScopeSalaryPayments, ScopeTimetables, ScopeDashboard, ScopeReports}
	attendanceScopes = []Scope{ScopeAttendance, ScopeDashboard, ScopeReports}
	expenseScopes    = []Scope{ScopeExpenses, ScopeDashboard, ScopeReports}
	ledgerScopes     = []Scope{ScopeTransactions, ScopeDashboard, ScopeReports}
	feeScopes        = []Scope{ScopeFeeStructures, ScopeFeePayments}
	paymentScopes    = []Scope{ScopeFeePayments, ScopeTransactions, ScopeDashboard, ScopeReports}
	salaryScopes     = []Scope{ScopeSalaryPayments, ScopeDashboard, ScopeReports}
	examScopes       = []Scope{ScopeExams, ScopeExamResults, ScopeReports}
	resultScopes     = []Scope{ScopeExamResults, ScopeReports}
	timetableScopes  = []Scope{ScopeTimetables}
	noticeScopes     = []Scope{ScopeNotices, ScopeDashboard}
	documentScopes   = []Scope{ScopeDocuments}
	userScopes       = []Scope{ScopeUsers}
)

// InvalidationTable declares, per mutation, every cached read whose data the
// write can change. Cross-entity effects are listed here and nowhere else.
var InvalidationTable = map[Mutation][]Scope{
	MutationStudentSave:       studentScopes,
	MutationStudentDelete:     studentScopes,
	MutationStaffSave:         staffScopes,
	MutationStaffDelete:       staffScopes,
	MutationAttendanceMark:    attendanceScopes,
	MutationAttendanceBulk:    attendanceScopes,
	MutationAttendanceDelete:  attendanceScopes,
	MutationExpenseSave:       expenseScopes,
	MutationExpenseDelete:     expenseScopes,
	MutationExpenseBatch:      expenseScopes,
	MutationExpenseBatchDrop:  expenseScopes,
	MutationTransactionSave:   ledgerScopes,
	MutationTransactionDelete: ledgerScopes,
	MutationFeeStructureSave:  feeScopes,
	MutationFeeStructureDrop:  feeScopes,
	MutationFeePaymentSave:    paymentScopes,
	MutationFeePaymentDelete:  paymentScopes,
	MutationSalarySave:        salaryScopes,
	MutationSalaryDelete:      salaryScopes,
	MutationExamSave:          examScopes,
	MutationExamDelete:        examScopes,
	MutationExamResultsSave:   resultScopes,
	MutationExamResultDelete:  resultScopes,
	MutationTimetableSave:     timetableScopes,
	MutationTimetableDelete:   timetableScopes,
	MutationNoticeSave:        noticeScopes,
	MutationNoticeDelete:      noticeScopes,
	MutationDocumentSave:      documentScopes,
	MutationDocumentDelete:    documentScopes,
	MutationUserRole:          userScopes,
	MutationUserStatus:        userScopes,
	MutationUserSignUp:        userScopes,
}

// ScopesFor returns the scopes a mutation invalidates.
func ScopesFor(m Mutation) []Scope {
	return InvalidationTable[m]
}

// scopeInvalidator is the part of CacheService the Invalidator needs.
type scopeInvalidator interface {
	InvalidateScope(ctx context.Context, scope Scope) error
}

// Invalidator clears cached reads after successful writes.
type Invalidator struct {
	cache  scopeInvalidator
	logger *zap.Logger
}

// NewInvalidator constructs an Invalidator. A nil cache makes it a no-op.
func NewInvalidator(cache scopeInvalidator, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{cache: cache, logger: logger}
}

// After clears every scope declared for m. Failures are logged: the write has
// already committed and stale entries expire with their TTL.
func (i *Invalidator) After(ctx context.Context, m Mutation) {
	if i == nil || i.cache == nil {
		return
	}
	scopes, ok := InvalidationTable[m]
	if !ok {
		i.logger.Warn("mutation has no invalidation entry", zap.String("mutation", string(m)))
		return
	}
	for _, scope := range scopes {
		if err := i.cache.InvalidateScope(ctx, scope); err != nil {
			i.logger.Warn("cache invalidation failed",
				zap.String("mutation", string(m)),
				zap.String("scope", string(scope)),
				zap.Error(err))
		}
	}
}
