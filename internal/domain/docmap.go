package domain

// DocMap is a JSON-LD document modelling the review/editorial steps of a work.
type DocMap struct {
	Context   string          `json:"@context"`
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Publisher Publisher       `json:"publisher"`
	Created   string          `json:"created"`
	Updated   string          `json:"updated"`
	FirstStep string          `json:"first-step"`
	Steps     map[string]Step `json:"steps"`
}

type Publisher struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Step keys referenced by PreviousStep/NextStep are consumed as-is, never checked.
type Step struct {
	Inputs       []Input  `json:"inputs"`
	Actions      []Action `json:"actions"`
	PreviousStep string   `json:"previous-step,omitempty"`
	NextStep     string   `json:"next-step,omitempty"`
}

type Action struct {
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
}

type Input struct {
	DOI string `json:"doi"`
}

type Output struct {
	DOI       string `json:"doi"`
	Type      string `json:"type"`
	Published string `json:"published"`
}

// StepSummary is the condensed view of a step printed at debug level 1.
type StepSummary struct {
	Step         string          `json:"step"`
	PreviousStep string          `json:"previous-step,omitempty"`
	NextStep     string          `json:"next-step,omitempty"`
	Actions      []ActionSummary `json:"actions"`
	Inputs       []Input         `json:"inputs"`
}

type ActionSummary struct {
	Inputs  []Input         `json:"inputs"`
	Outputs []OutputSummary `json:"outputs"`
}

type OutputSummary struct {
	DOI  string `json:"doi"`
	Type string `json:"type"`
}

// Summarize walks the steps starting at FirstStep following next-step links;
// steps not reachable that way are appended in key order.
func (d DocMap) Summarize() []StepSummary {
	out := make([]StepSummary, 0, len(d.Steps))
	seen := make(map[string]bool, len(d.Steps))

	for key := d.FirstStep; key != "" && !seen[key]; {
		st, ok := d.Steps[key]
		if !ok {
			break
		}
		seen[key] = true
		out = append(out, summarizeStep(key, st))
		key = st.NextStep
	}

	for _, key := range sortedKeys(d.Steps) {
		if seen[key] {
			continue
		}
		out = append(out, summarizeStep(key, d.Steps[key]))
	}
	return out
}

func summarizeStep(key string, st Step) StepSummary {
	s := StepSummary{
		Step:         key,
		PreviousStep: st.PreviousStep,
		NextStep:     st.NextStep,
		Actions:      make([]ActionSummary, 0, len(st.Actions)),
		Inputs:       make([]Input, 0, len(st.Inputs)),
	}
	s.Inputs = append(s.Inputs, st.Inputs...)
	for _, a := range st.Actions {
		as := ActionSummary{
			Inputs:  append([]Input{}, a.Inputs...),
			Outputs: make([]OutputSummary, 0, len(a.Outputs)),
		}
		for _, o := range a.Outputs {
			as.Outputs = append(as.Outputs, OutputSummary{DOI: o.DOI, Type: o.Type})
		}
		s.Actions = append(s.Actions, as)
	}
	return s
}
