package plan

// ActionKind categorizes what a step does.
type ActionKind string

const (
	ActionCalculation   ActionKind = "calculation"
	ActionDataQuery     ActionKind = "data_query"
	ActionAPICall       ActionKind = "api_call"
	ActionFileOperation ActionKind = "file_operation"
	ActionReport        ActionKind = "report"
	ActionServe         ActionKind = "serve"
)

// knownKinds is the set of action kinds the generator understands.
// Unknown kinds are warned about, not rejected; the planner favors
// forward compatibility over strict rejection here.
var knownKinds = map[ActionKind]bool{
	ActionCalculation:   true,
	ActionDataQuery:     true,
	ActionAPICall:       true,
	ActionFileOperation: true,
	ActionReport:        true,
	ActionServe:         true,
}

// Step is a single unit of the execution plan.
type Step struct {
	// Index positions the step in the dense 1..N sequence.
	Index int `json:"index"`

	// Name is a short identifier for the step.
	Name string `json:"name"`

	// Kind is the action category.
	Kind ActionKind `json:"kind"`

	// Description says what the step does.
	Description string `json:"description,omitempty"`

	// Inputs and Outputs declare the variables the step consumes and produces.
	Inputs  []string `json:"inputs,omitempty"`
	Outputs []string `json:"outputs,omitempty"`

	// DependsOn lists indices of steps that must complete first.
	// Every reference must be strictly less than Index.
	DependsOn []int `json:"depends_on,omitempty"`
}

// ExecutionPlan is an ordered sequence of steps with declared
// dependencies and capability needs, produced once per request.
type ExecutionPlan struct {
	// Name identifies the plan.
	Name string `json:"name"`

	// Description summarizes the overall approach.
	Description string `json:"description,omitempty"`

	// Steps is the dense, ordered step sequence.
	Steps []Step `json:"steps"`

	// Dependencies lists external library dependencies the generated
	// program is expected to need, as Go module paths.
	Dependencies []string `json:"dependencies,omitempty"`

	// ServicePort is the exposed port when the plan includes a
	// long-running service step.
	ServicePort int `json:"service_port,omitempty"`
}
