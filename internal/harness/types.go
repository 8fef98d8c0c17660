package harness

import "github.com/roach88/motionchart/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if the expect clause and every assertion hold.
	Pass bool `json:"pass"`

	// Run is the run record read back from the store.
	// Zero for scenarios that expect a validation failure.
	Run ir.RunRecord `json:"run"`

	// Trace holds every recorded tick in order.
	Trace []ir.TickRecord `json:"trace"`

	// Output is everything print nodes wrote.
	Output string `json:"output"`

	// Validation lists the codes reported by compiler.Validate.
	Validation []string `json:"validation,omitempty"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []ir.TickRecord{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
