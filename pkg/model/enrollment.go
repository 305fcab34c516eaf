package model

// Pass identifies which enrollment pass produced an enrollment.
type Pass int

const (
	PassPrimary Pass = iota + 1
	PassBackfill
	PassThesis
)

func (p Pass) String() string {
	switch p {
	case PassPrimary:
		return "primary"
	case PassBackfill:
		return "backfill"
	case PassThesis:
		return "thesis"
	}
	return "unknown"
}

type Enrollment struct {
	StudentID string
	SectionID string
	Pass      Pass
}

type EnrollmentCSVRow struct {
	StudentID string `csv:"student_id"`
	SectionID string `csv:"section_id"`
	Pass      string `csv:"pass"`
}

func (e Enrollment) Row() *EnrollmentCSVRow {
	return &EnrollmentCSVRow{StudentID: e.StudentID, SectionID: e.SectionID, Pass: e.Pass.String()}
}
