package aggregate

// Letter grades from best to worst.
const (
	GradeAPlus  = "A+"
	GradeA      = "A"
	GradeAMinus = "A-"
	GradeB      = "B"
	GradeC      = "C"
	GradeD      = "D"
	GradeF      = "F"
)

var gradeThresholds = []struct {
	min   float64
	grade string
	point float64
}{
	{80, GradeAPlus, 5.0},
	{70, GradeA, 4.0},
	{60, GradeAMinus, 3.5},
	{50, GradeB, 3.0},
	{40, GradeC, 2.0},
	{33, GradeD, 1.0},
}

// gradeEpsilon absorbs binary rounding of decimal marks: 40.8/51 evaluates to
// 79.99999999999999 though it is exactly 80. Real gaps between marks are far
// larger than this.
const gradeEpsilon = 1e-9

// Grades lists every grade in descending order, F last.
var Grades = []string{GradeAPlus, GradeA, GradeAMinus, GradeB, GradeC, GradeD, GradeF}

// ScorePercentage returns obtained/total×100 without rounding; 0 when total is not positive.
func ScorePercentage(obtained, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return obtained * 100 / total
}

// Grade maps marks to a letter grade. The real-valued percentage is compared
// against inclusive lower bounds, so exactly 80% is A+ and 79.999% is A.
// An absent student always gets F.
func Grade(obtained, total float64, absent bool) string {
	if absent || total <= 0 {
		return GradeF
	}
	return GradeForPercentage(ScorePercentage(obtained, total))
}

// GradeForPercentage maps a percentage directly.
func GradeForPercentage(pct float64) string {
	for _, t := range gradeThresholds {
		if pct+gradeEpsilon >= t.min {
			return t.grade
		}
	}
	return GradeF
}

// GradePoint returns the grade point average weight of a letter grade.
func GradePoint(grade string) float64 {
	for _, t := range gradeThresholds {
		if t.grade == grade {
			return t.point
		}
	}
	return 0
}
