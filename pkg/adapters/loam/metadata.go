package loam

// DocMetadata is the frontmatter of an algorithm documentation file.
// Every field is optional; empty fields keep the built-in text.
type DocMetadata struct {
	// Algorithm defaults to the file name without extension (quick.md -> quick).
	Algorithm string `json:"algorithm" mapstructure:"algorithm"`
	Name      string `json:"name" mapstructure:"name"`

	TimeBest    string `json:"time_best" mapstructure:"time_best"`
	TimeAverage string `json:"time_average" mapstructure:"time_average"`
	TimeWorst   string `json:"time_worst" mapstructure:"time_worst"`
	Space       string `json:"space" mapstructure:"space"`
	Stable      *bool  `json:"stable,omitempty" mapstructure:"stable"`
	InPlace     *bool  `json:"in_place,omitempty" mapstructure:"in_place"`

	Steps      []string `json:"steps" mapstructure:"steps"`
	UseCases   []string `json:"use_cases" mapstructure:"use_cases"`
	AvoidCases []string `json:"avoid_cases" mapstructure:"avoid_cases"`
	Pros       []string `json:"pros" mapstructure:"pros"`
	Cons       []string `json:"cons" mapstructure:"cons"`
}
