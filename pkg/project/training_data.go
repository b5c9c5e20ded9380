package project

// LabelKey names the field a training example is annotated with. Values are
// compared per key, never across keys.
type LabelKey string

const (
	LabelIntent     LabelKey = "intent"
	LabelActionName LabelKey = "action_name"
)

// LabelKeys lists every label key in comparison order.
var LabelKeys = []LabelKey{LabelIntent, LabelActionName}

// Message is one training example.
type Message struct {
	Text       string `json:"text,omitempty"`
	Intent     string `json:"intent,omitempty"`
	ActionName string `json:"action_name,omitempty"`
}

// Labels returns the populated label fields of the message. An example may
// carry an intent, an action name, both, or neither.
func (m Message) Labels() map[LabelKey]string {
	labels := make(map[LabelKey]string, 2)
	if m.Intent != "" {
		labels[LabelIntent] = m.Intent
	}
	if m.ActionName != "" {
		labels[LabelActionName] = m.ActionName
	}
	return labels
}

// TrainingData is the NLU corpus.
type TrainingData struct {
	Examples []Message `json:"examples"`
}

// NewTrainingData wraps messages into a TrainingData.
func NewTrainingData(messages ...Message) *TrainingData {
	return &TrainingData{Examples: messages}
}

// LabelValues groups the distinct label values of the corpus by label key.
// Keys with no values are omitted.
func (t *TrainingData) LabelValues() map[LabelKey]map[string]struct{} {
	out := make(map[LabelKey]map[string]struct{})
	if t == nil {
		return out
	}

	for _, m := range t.Examples {
		for key, value := range m.Labels() {
			set, ok := out[key]
			if !ok {
				set = make(map[string]struct{})
				out[key] = set
			}
			set[value] = struct{}{}
		}
	}
	return out
}
