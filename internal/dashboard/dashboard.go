// Package dashboard provides the admin overview figures served to the dashboard page.
package dashboard

// Stat is one headline counter.
type Stat struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// MonthPoint is one month of recruiter and job-description activity.
type MonthPoint struct {
	Month      string `json:"month"`
	Recruiters int    `json:"recruiters"`
	JDs        int    `json:"jds"`
}

// Slice is one share of a pie breakdown.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Point is one activity sample: Days on x, Activity on y.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Snapshot is everything the admin dashboard shows.
type Snapshot struct {
	Stats     []Stat       `json:"stats"`
	Monthly   []MonthPoint `json:"monthly"`
	Selection []Slice      `json:"selection"`
	Scatter   []Point      `json:"scatter"`
}

// Selection slice names.
const (
	Selected = "Selected"
	Rejected = "Rejected"
)

// Default returns the fixed overview figures.
func Default() *Snapshot {
	return &Snapshot{
		Stats: []Stat{
			{Label: "All Recruiters", Value: 25},
			{Label: "All JDs", Value: 40},
			{Label: "Applied Candidates", Value: 132},
			{Label: "Selected Candidates", Value: 47},
			{Label: "Result List", Value: 20},
			{Label: "Active Users", Value: 150},
		},
		Monthly: []MonthPoint{
			{Month: "Jan", Recruiters: 20, JDs: 35},
			{Month: "Feb", Recruiters: 30, JDs: 45},
			{Month: "Mar", Recruiters: 25, JDs: 40},
			{Month: "Apr", Recruiters: 35, JDs: 30},
			{Month: "May", Recruiters: 40, JDs: 20},
		},
		Selection: []Slice{
			{Name: Selected, Value: 47},
			{Name: Rejected, Value: 85},
		},
		Scatter: []Point{
			{X: 10, Y: 30},
			{X: 20, Y: 50},
			{X: 30, Y: 40},
			{X: 40, Y: 80},
			{X: 50, Y: 70},
		},
	}
}

// SelectionRatio returns the selected share of all decided candidates in percent.
// Returns 0 when there are no candidates.
func (s *Snapshot) SelectionRatio() float64 {
	selected, total := 0, 0
	for _, slice := range s.Selection {
		total += slice.Value
		if slice.Name == Selected {
			selected += slice.Value
		}
	}
	if total == 0 {
		return 0
	}
	return float64(selected) * 100 / float64(total)
}

// GrowthSeries returns the recruiter count per month, in order.
func (s *Snapshot) GrowthSeries() []int {
	series := make([]int, 0, len(s.Monthly))
	for _, m := range s.Monthly {
		series = append(series, m.Recruiters)
	}
	return series
}

// Stat returns the value of the counter with the given label.
func (s *Snapshot) Stat(label string) (int, bool) {
	for _, st := range s.Stats {
		if st.Label == label {
			return st.Value, true
		}
	}
	return 0, false
}
