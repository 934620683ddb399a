package gestation

type Milestone struct {
	Week  int    `json:"week"`
	Label string `json:"label"`
}

type DevelopmentFact struct {
	Month          int      `json:"month"`
	SizeComparison string   `json:"size_comparison"`
	LengthEstimate string   `json:"length_estimate"`
	WeightEstimate string   `json:"weight_estimate"`
	Highlights     []string `json:"developmental_highlights"`
}

// ascending by week
var milestones = [...]Milestone{
	{Week: 8, Label: "First Heartbeat"},
	{Week: 12, Label: "End of First Trimester"},
	{Week: 16, Label: "Baby's Gender Visible"},
	{Week: 20, Label: "Anatomy Scan"},
	{Week: 24, Label: "Viability"},
	{Week: 28, Label: "Third Trimester"},
	{Week: 32, Label: "Baby's Position"},
	{Week: 36, Label: "Full Term Soon"},
	{Week: 40, Label: "Due Date"},
}

// indexed by month-1
var developmentFacts = [MaxMonth]DevelopmentFact{
	{
		Month:          1,
		SizeComparison: "Size of a poppy seed",
		LengthEstimate: "0.1 inch",
		WeightEstimate: "Less than 1 gram",
		Highlights:     []string{"Heart begins to beat", "Neural tube forms", "Basic structure begins to form"},
	},
	{
		Month:          2,
		SizeComparison: "Size of a raspberry",
		LengthEstimate: "0.63 inch",
		WeightEstimate: "3-4 grams",
		Highlights:     []string{"Facial features forming", "Limb buds appear", "Brain development accelerates"},
	},
	{
		Month:          3,
		SizeComparison: "Size of a lime",
		LengthEstimate: "3 inches",
		WeightEstimate: "30 grams",
		Highlights:     []string{"External genitalia begin to form", "Fingers and toes are well-defined", "Can make a fist and move arms"},
	},
	{
		Month:          4,
		SizeComparison: "Size of an avocado",
		LengthEstimate: "5-6 inches",
		WeightEstimate: "100-200 grams",
		Highlights:     []string{"Can hear sounds", "Facial muscles develop", "Beginning to form taste buds"},
	},
	{
		Month:          5,
		SizeComparison: "Size of a banana",
		LengthEstimate: "10 inches",
		WeightEstimate: "300-450 grams",
		Highlights:     []string{"Sleep patterns develop", "Hair and nails growing", "Movement becomes stronger"},
	},
	{
		Month:          6,
		SizeComparison: "Size of a mango",
		LengthEstimate: "12 inches",
		WeightEstimate: "600-700 grams",
		Highlights:     []string{"Eyes can open and close", "Fingerprints are formed", "Responds to sounds"},
	},
	{
		Month:          7,
		SizeComparison: "Size of a cauliflower",
		LengthEstimate: "14 inches",
		WeightEstimate: "900-1000 grams",
		Highlights:     []string{"Brain growth rapid", "Regular movement patterns", "Can hiccup"},
	},
	{
		Month:          8,
		SizeComparison: "Size of a pumpkin",
		LengthEstimate: "18 inches",
		WeightEstimate: "2000-2500 grams",
		Highlights:     []string{"Fat layers forming", "Most organs mature", "Can see and hear well"},
	},
	{
		Month:          9,
		SizeComparison: "Size of a watermelon",
		LengthEstimate: "20+ inches",
		WeightEstimate: "3000-3500 grams",
		Highlights:     []string{"Lungs fully mature", "Position for birth", "Immune system developing"},
	},
}

// Milestones returns a copy of the full table.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones[:])
	return out
}

// MilestonesUpTo returns the milestones reached by week, in order.
func MilestonesUpTo(week int) []Milestone {
	out := make([]Milestone, 0, len(milestones))
	for _, m := range milestones {
		if m.Week > week {
			break
		}
		out = append(out, m)
	}
	return out
}

func NextMilestone(week int) (Milestone, bool) {
	for _, m := range milestones {
		if m.Week > week {
			return m, true
		}
	}
	return Milestone{}, false
}

// DevelopmentFactFor clamps month into [1,9]; it never fails.
func DevelopmentFactFor(month int) DevelopmentFact {
	f := developmentFacts[ClampMonth(month)-1]
	f.Highlights = append([]string(nil), f.Highlights...)
	return f
}
