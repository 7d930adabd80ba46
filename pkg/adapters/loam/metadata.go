package loam

// ProjectMetadata is the frontmatter of an MLN query project document.
// The document body holds the model; a fenced code block, if present, is
// used instead of the whole body.
type ProjectMetadata struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`

	Method  string `json:"method" mapstructure:"method"`
	Logic   string `json:"logic" mapstructure:"logic"`
	Grammar string `json:"grammar" mapstructure:"grammar"`

	// Database is a path to an evidence file, relative to the project repository.
	Database string `json:"database" mapstructure:"database"`
	// Evidence is inline evidence text, used when Database is empty.
	Evidence string `json:"evidence" mapstructure:"evidence"`

	Queries               []string `json:"queries" mapstructure:"queries"`
	ClosedWorldPredicates []string `json:"cw_preds" mapstructure:"cw_preds"`
	MaxSteps              int      `json:"max_steps" mapstructure:"max_steps"`
	Chains                int      `json:"chains" mapstructure:"chains"`
	MultiCore             bool     `json:"multicore" mapstructure:"multicore"`
	Verbose               bool     `json:"verbose" mapstructure:"verbose"`
	MergeDatabases        bool     `json:"merge_dbs" mapstructure:"merge_dbs"`
}
