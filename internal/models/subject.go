package models

// Subject is the closed set of subject departments a sponsor belongs to.
// The weekday priority table maps onto these values, so free-form strings
// are deliberately not accepted anywhere in the engine.
type Subject string

const (
	SubjectCS         Subject = "CS"
	SubjectMath       Subject = "Math"
	SubjectHumanities Subject = "Humanities"
	SubjectScience    Subject = "Science"
)

// Subjects lists every valid subject.
func Subjects() []Subject {
	return []Subject{SubjectCS, SubjectMath, SubjectHumanities, SubjectScience}
}

// Valid reports whether s is one of the known subjects.
func (s Subject) Valid() bool {
	switch s {
	case SubjectCS, SubjectMath, SubjectHumanities, SubjectScience:
		return true
	}
	return false
}

// LunchPeriod is one of the four lunch blocks a learner can be pulled from.
type LunchPeriod string

const (
	LunchA LunchPeriod = "A"
	LunchB LunchPeriod = "B"
	LunchC LunchPeriod = "C"
	LunchD LunchPeriod = "D"
)
