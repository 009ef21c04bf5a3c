package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

var dhaka = time.FixedZone("Asia/Dhaka", 6*60*60)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

type dated struct {
	date   time.Time
	amount models.Money
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, dhaka)

	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, dhaka), WindowStart(Daily, now, dhaka))
	assert.Equal(t, now.Add(-7*24*time.Hour), WindowStart(Weekly, now, dhaka))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, dhaka), WindowStart(Monthly, now, dhaka))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, dhaka), WindowStart(Yearly, now, dhaka))
}

func TestWindowStartUsesLocalCalendar(t *testing.T) {
	// 20:00 UTC on 31 Dec is already 1 Jan in Dhaka.
	now := time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, dhaka), WindowStart(Yearly, now, dhaka))
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), WindowStart(Yearly, now, time.UTC))
}

func TestFilterByWindowBoundaryInclusive(t *testing.T) {
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, dhaka)
	items := []dated{
		{day(2023, 12, 31), 1},
		{day(2024, 1, 1), 2},
		{day(2024, 4, 30), 3},
		{day(2024, 5, 1), 4},
		{day(2024, 5, 8), 5},
		{day(2024, 5, 9), 6},
		{day(2024, 5, 14), 7},
		{day(2024, 5, 15), 8},
	}
	dateOf := func(d dated) time.Time { return d.date }
	amounts := func(ds []dated) []models.Money {
		out := make([]models.Money, len(ds))
		for i, d := range ds {
			out[i] = d.amount
		}
		return out
	}

	assert.Equal(t, []models.Money{8}, amounts(FilterByWindow(items, Daily, now, dhaka, dateOf)))
	// weekly boundary is 2024-05-08 09:00, so the 8th at midnight is outside
	assert.Equal(t, []models.Money{6, 7, 8}, amounts(FilterByWindow(items, Weekly, now, dhaka, dateOf)))
	assert.Equal(t, []models.Money{4, 5, 6, 7, 8}, amounts(FilterByWindow(items, Monthly, now, dhaka, dateOf)))
	assert.Equal(t, []models.Money{2, 3, 4, 5, 6, 7, 8}, amounts(FilterByWindow(items, Yearly, now, dhaka, dateOf)))

	for _, w := range []Window{Daily, Weekly, Monthly, Yearly} {
		start := WindowStart(w, now, dhaka)
		for _, item := range FilterByWindow(items, w, now, dhaka, dateOf) {
			assert.False(t, CalendarDay(item.date, dhaka).Before(start), w)
		}
	}
}

func TestYearlyWindowOnNewYearsDayIsSingleDay(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, dhaka)
	items := []dated{{day(2023, 12, 31), 1}, {day(2024, 1, 1), 2}}
	got := FilterByWindow(items, Yearly, now, dhaka, func(d dated) time.Time { return d.date })
	require.Len(t, got, 1)
	assert.Equal(t, models.Money(2), got[0].amount)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("monthly")
	require.NoError(t, err)
	assert.Equal(t, Monthly, w)
	_, err = ParseWindow("hourly")
	assert.Error(t, err)
}

type catItem struct {
	cat    string
	amount models.Money
}

func TestCategoryTotalsSumsAndSorts(t *testing.T) {
	items := []catItem{
		{"utility", 500},
		{"bazar", 1000},
		{"rent", 700},
		{"utility", 200},
		{"transport", 700},
		{"stationery", 1},
	}
	got := CategoryTotals(items, func(c catItem) string { return c.cat }, func(c catItem) models.Money { return c.amount })

	require.False(t, got.Empty)
	names := make([]string, 0)
	var sum models.Money
	for _, c := range got.Categories {
		names = append(names, c.Category)
		sum += c.Total
	}
	// utility and rent tie at 700 with transport; first-encounter order holds
	assert.Equal(t, []string{"bazar", "utility", "rent", "transport", "stationery"}, names)
	assert.Equal(t, models.Money(3101), sum)
	assert.Equal(t, sum, got.GrandTotal)
	assert.Equal(t, 2, got.Categories[1].Count)

	for i := 1; i < len(got.Categories); i++ {
		assert.GreaterOrEqual(t, int64(got.Categories[i-1].Total), int64(got.Categories[i].Total))
	}
}

func TestCategoryTotalsEmptyInput(t *testing.T) {
	got := CategoryTotals([]catItem{}, func(c catItem) string { return c.cat }, func(c catItem) models.Money { return c.amount })
	assert.True(t, got.Empty)
	assert.Empty(t, got.Categories)
	assert.Equal(t, models.Money(0), got.GrandTotal)

	pct := Percentage(0, 0)
	assert.Equal(t, 0.0, pct)
	assert.False(t, math.IsNaN(pct))
}

func TestCategoryPercentages(t *testing.T) {
	items := []catItem{{"a", 300}, {"b", 100}}
	got := CategoryTotals(items, func(c catItem) string { return c.cat }, func(c catItem) models.Money { return c.amount })
	assert.InDelta(t, 75.0, got.Categories[0].Percentage, 1e-9)
	assert.InDelta(t, 25.0, got.Categories[1].Percentage, 1e-9)
}

func TestGroupExpenseBatches(t *testing.T) {
	expenses := []models.Expense{
		{ID: "e1", Amount: models.Taka(100), Date: day(2024, 5, 10), BatchID: strPtr("B1"), BatchName: strPtr("Weekly bazar")},
		{ID: "e2", Amount: models.Taka(50), Date: day(2024, 5, 10), BatchID: strPtr("B1"), BatchName: strPtr("Weekly bazar")},
		{ID: "e3", Amount: models.Taka(30), Date: day(2024, 5, 9)},
	}
	groups := GroupExpenseBatches(expenses)

	require.Len(t, groups, 2)
	assert.True(t, groups[0].IsBatch())
	assert.Equal(t, "B1", *groups[0].BatchID)
	assert.Equal(t, models.Taka(150), groups[0].Total)
	assert.Equal(t, 2, groups[0].ItemCount)
	assert.False(t, groups[1].IsBatch())
	assert.Equal(t, models.Taka(30), groups[1].Total)
	assert.Equal(t, 1, groups[1].ItemCount)
}

func TestGroupExpenseBatchesInterleavesByDate(t *testing.T) {
	expenses := []models.Expense{
		{ID: "old-batch-1", Amount: 1, Date: day(2024, 5, 1), BatchID: strPtr("B1")},
		{ID: "single-new", Amount: 2, Date: day(2024, 5, 20)},
		{ID: "new-batch", Amount: 3, Date: day(2024, 5, 15), BatchID: strPtr("B2")},
		{ID: "single-mid", Amount: 4, Date: day(2024, 5, 10)},
		{ID: "old-batch-2", Amount: 5, Date: day(2024, 5, 2), BatchID: strPtr("B1")},
		{ID: "blank-batch", Amount: 6, Date: day(2024, 4, 1), BatchID: strPtr("")},
	}
	groups := GroupExpenseBatches(expenses)
	require.Len(t, groups, 5)

	order := make([]string, len(groups))
	for i, g := range groups {
		order[i] = g.Items[0].ID
	}
	assert.Equal(t, []string{"single-new", "new-batch", "single-mid", "old-batch-1", "blank-batch"}, order)
	assert.Equal(t, day(2024, 5, 2), groups[3].Date)
	assert.Equal(t, models.Money(6), groups[3].Total)
}

func TestGradeThresholds(t *testing.T) {
	cases := []struct {
		pct   float64
		grade string
	}{
		{100, GradeAPlus},
		{80.0, GradeAPlus},
		{79.999, GradeA},
		{70, GradeA},
		{69.999, GradeAMinus},
		{60, GradeAMinus},
		{59.999, GradeB},
		{50, GradeB},
		{49.999, GradeC},
		{40, GradeC},
		{39.999, GradeD},
		{33, GradeD},
		{32.999, GradeF},
		{0, GradeF},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, GradeForPercentage(tc.pct), "pct %v", tc.pct)
		assert.Equal(t, tc.grade, Grade(tc.pct, 100, false), "marks %v/100", tc.pct)
	}
}

func TestGradeFractionalMarksOnBoundary(t *testing.T) {
	cases := []struct {
		obtained, total float64
		grade           string
	}{
		{40.8, 51, GradeAPlus},
		{26.4, 33, GradeAPlus},
		{56, 70, GradeAPlus},
		{35.7, 51, GradeA},
		{40.79, 51, GradeA},
		{10.89, 33, GradeD},
		{10.88, 33, GradeF},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, Grade(tc.obtained, tc.total, false), "marks %v/%v", tc.obtained, tc.total)
	}
}

func TestGradeFromMarks(t *testing.T) {
	assert.Equal(t, GradeAPlus, Grade(40, 50, false))
	assert.Equal(t, GradeA, Grade(39.5, 50, false))
	assert.Equal(t, GradeF, Grade(10, 0, false))
}

func TestAbsentForcesF(t *testing.T) {
	assert.Equal(t, GradeF, Grade(100, 100, true))
	assert.Equal(t, GradeF, Grade(0, 100, true))
}

func TestGradePoint(t *testing.T) {
	assert.Equal(t, 5.0, GradePoint(GradeAPlus))
	assert.Equal(t, 3.5, GradePoint(GradeAMinus))
	assert.Equal(t, 0.0, GradePoint(GradeF))
	assert.Equal(t, 0.0, GradePoint("Z"))
}

func TestAttendancePercentageCountsLateAsPresent(t *testing.T) {
	statuses := make([]models.AttendanceStatus, 0, 20)
	for i := 0; i < 15; i++ {
		statuses = append(statuses, models.AttendancePresent)
	}
	statuses = append(statuses, models.AttendanceLate, models.AttendanceLate)
	statuses = append(statuses, models.AttendanceAbsent, models.AttendanceAbsent)
	statuses = append(statuses, models.AttendanceLeave)

	s := AttendanceStats(statuses)
	assert.Equal(t, 20, s.Total)
	assert.Equal(t, 15, s.Present)
	assert.Equal(t, 2, s.Late)
	assert.Equal(t, 2, s.Absent)
	assert.Equal(t, 1, s.Leave)
	assert.InDelta(t, 85.0, s.Percentage, 1e-9)
	assert.NotEqual(t, 75.0, s.Percentage)
}

func TestAttendancePercentageEmpty(t *testing.T) {
	s := AttendanceStats(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.Percentage)
}

func TestDedupeAttendanceLastWins(t *testing.T) {
	records := []models.Attendance{
		{UserID: "s1", UserType: models.SubjectStudent, Date: day(2024, 5, 1), Status: models.AttendancePresent},
		{UserID: "s2", UserType: models.SubjectStudent, Date: day(2024, 5, 1), Status: models.AttendancePresent},
		{UserID: "s1", UserType: models.SubjectStudent, Date: day(2024, 5, 1), Status: models.AttendanceLate},
		{UserID: "s1", UserType: models.SubjectStaff, Date: day(2024, 5, 1), Status: models.AttendanceAbsent},
	}
	out := DedupeAttendance(records)
	require.Len(t, out, 3)
	assert.Equal(t, "s1", out[0].UserID)
	assert.Equal(t, models.AttendanceLate, out[0].Status)
	assert.Equal(t, models.SubjectStaff, out[2].UserType)
}

func TestDedupeResultsLastWins(t *testing.T) {
	out := DedupeResults([]models.ExamResult{
		{ExamID: "x", StudentID: "a", MarksObtained: 10},
		{ExamID: "x", StudentID: "a", MarksObtained: 90},
	})
	require.Len(t, out, 1)
	assert.Equal(t, 90.0, out[0].MarksObtained)
}

func TestSuggestStaffRole(t *testing.T) {
	assert.Equal(t, models.StaffTeacher, SuggestStaffRole("Senior Teacher"))
	assert.Equal(t, models.StaffTeacher, SuggestStaffRole("হিফজ শিক্ষক"))
	assert.Equal(t, models.StaffTeacher, SuggestStaffRole("Maulana"))
	assert.Equal(t, models.StaffNonTeacher, SuggestStaffRole("Cook"))
	assert.Equal(t, models.StaffNonTeacher, SuggestStaffRole(""))
}
