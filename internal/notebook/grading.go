package notebook

// Grading is the decoded nbgrader namespace of a cell.
type Grading struct {
	Tag       string
	HasTag    bool
	Locked    bool
	Graded    bool
	Points    float64
	HasPoints bool

	pointsRaw string
}

// SamePoints compares the points of two namespaces numerically, so 5 and
// 5.0 are equal. Non-numeric literals compare by their spelling.
func (g Grading) SamePoints(other Grading) bool {
	if g.HasPoints != other.HasPoints {
		return false
	}
	if !g.HasPoints {
		return true
	}
	if isNumber(g.pointsRaw) && isNumber(other.pointsRaw) {
		return g.Points == other.Points
	}
	return g.pointsRaw == other.pointsRaw
}

// Answer reports whether the cell is a student-editable answer cell.
func (g Grading) Answer() bool {
	return !g.Locked
}

func isNumber(lit string) bool {
	if lit == "" {
		return false
	}
	c := lit[0]
	return c == '-' || (c >= '0' && c <= '9')
}
