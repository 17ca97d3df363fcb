// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of sizing the proposed loan against a target
// coverage ratio.
type Summary struct {
	Period          string   `json:"period"`
	Field           string   `json:"field"`
	Original        float64  `json:"original"`
	Value           float64  `json:"value"`
	TargetDSCR      float64  `json:"targetDscr"`
	OriginalDSCR    float64  `json:"originalDscr"`
	DSCR            float64  `json:"dscr"`
	Headroom        float64  `json:"headroom"`
	MonthlyPayment  float64  `json:"monthlyPayment"`
	Iterations      int      `json:"iterations"`
	Converged       bool     `json:"converged"`
	Notes           []string `json:"notes,omitempty"`
	OriginalDisplay string   `json:"originalDisplay,omitempty"`
	ValueDisplay    string   `json:"valueDisplay,omitempty"`
}
