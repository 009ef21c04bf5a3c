package aggregate

import "github.com/noah-isme/madrasah-admin-api/internal/models"

// AttendanceSummary counts attendance marks.
type AttendanceSummary struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Leave      int     `json:"leave"`
	Late       int     `json:"late"`
	Percentage float64 `json:"percentage"`
}

// AttendanceStats counts statuses and computes the attendance percentage.
// Late days count as present; leave and absent days do not. An empty input yields 0.
func AttendanceStats(statuses []models.AttendanceStatus) AttendanceSummary {
	var s AttendanceSummary
	for _, status := range statuses {
		s.Total++
		switch status {
		case models.AttendancePresent:
			s.Present++
		case models.AttendanceAbsent:
			s.Absent++
		case models.AttendanceLeave:
			s.Leave++
		case models.AttendanceLate:
			s.Late++
		}
	}
	s.Percentage = AttendancePercentage(s.Present, s.Late, s.Total)
	return s
}

// AttendancePercentage is (present+late)/total×100, 0 when total is 0.
func AttendancePercentage(present, late, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(present+late) / float64(total) * 100
}

// SummarizeAttendance is AttendanceStats over full records.
func SummarizeAttendance(records []models.Attendance) AttendanceSummary {
	statuses := make([]models.AttendanceStatus, len(records))
	for i, r := range records {
		statuses[i] = r.Status
	}
	return AttendanceStats(statuses)
}

// DedupeAttendance keeps the last record for each (user_id, user_type, date),
// preserving the position of the first occurrence.
func DedupeAttendance(records []models.Attendance) []models.Attendance {
	index := make(map[models.AttendanceKey]int, len(records))
	out := make([]models.Attendance, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if i, ok := index[key]; ok {
			out[i] = r
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}

// DedupeResults keeps the last result per (exam_id, student_id).
func DedupeResults(results []models.ExamResult) []models.ExamResult {
	type key struct{ exam, student string }
	index := make(map[key]int, len(results))
	out := make([]models.ExamResult, 0, len(results))
	for _, r := range results {
		k := key{r.ExamID, r.StudentID}
		if i, ok := index[k]; ok {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}
