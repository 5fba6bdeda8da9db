package entity

const (
	defaultBasePace     int32 = 20
	defaultOptionsCount int32 = 4
	minOptionsCount     int32 = 4
	maxOptionsCount     int32 = 10
)

// Assignment is the teacher-configured pacing contract for one class and
// list. It is owned by the class administration; the engine only reads it.
type Assignment struct {
	ClassID          int64   `json:"class_id"`
	ListID           int64   `json:"list_id"`
	BasePace         int32   `json:"base_pace"`
	TestOptionsCount int32   `json:"test_options_count"`
	TestMode         string  `json:"test_mode,omitempty"`
	PassThreshold    float64 `json:"pass_threshold,omitempty"`
	StudyDaysPerWeek int32   `json:"study_days_per_week,omitempty"`
}

// DefaultAssignment is used when no assignment exists for a class and list.
func DefaultAssignment() *Assignment {
	return &Assignment{BasePace: defaultBasePace, TestOptionsCount: defaultOptionsCount}
}

// Normalize clamps pacing knobs into their supported ranges.
func (a *Assignment) Normalize() {
	if a.BasePace < 1 {
		a.BasePace = defaultBasePace
	}
	if a.TestOptionsCount < minOptionsCount {
		a.TestOptionsCount = defaultOptionsCount
	}
	if a.TestOptionsCount > maxOptionsCount {
		a.TestOptionsCount = maxOptionsCount
	}
}
