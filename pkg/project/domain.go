// Package project models the inputs a finetuning validation reads: the
// dialogue domain, the NLU training data and the pipeline schema. It also
// provides importers that load them from memory or from a YAML project
// directory.
package project

import "slices"

// Response is a single response variation under a response identifier.
type Response struct {
	Text string `json:"text" yaml:"text"`
}

// Domain is the dialogue domain: the universe of intents, actions and
// responses the assistant knows about.
type Domain struct {
	Intents   []string              `json:"intents,omitempty" yaml:"intents"`
	Actions   []string              `json:"actions,omitempty" yaml:"actions"`
	Responses map[string][]Response `json:"responses,omitempty" yaml:"responses"`
}

// ActionNames returns the sorted, de-duplicated set of action identifiers.
// Every response key is also an action the policy can predict.
func (d *Domain) ActionNames() []string {
	if d == nil {
		return []string{}
	}

	seen := make(map[string]struct{}, len(d.Actions)+len(d.Responses))
	for _, a := range d.Actions {
		if a != "" {
			seen[a] = struct{}{}
		}
	}
	for name := range d.Responses {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns a deep copy of the domain.
func (d *Domain) Clone() *Domain {
	if d == nil {
		return nil
	}

	c := &Domain{
		Intents: slices.Clone(d.Intents),
		Actions: slices.Clone(d.Actions),
	}
	if d.Responses != nil {
		c.Responses = make(map[string][]Response, len(d.Responses))
		for k, v := range d.Responses {
			c.Responses[k] = slices.Clone(v)
		}
	}
	return c
}
