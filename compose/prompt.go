package compose

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/c360/semhome/catalog"
)

// promptTemplate is the fixed prompt sent to the model. The answer must
// contain a fenced json block shaped like compositionSchema for the parser
// to pick up.
var promptTemplate = template.Must(template.New("composition").Parse(
	`You are a smart-home service composition planner.

Goal: {{.Goal}}

Current sensor snapshot:
{{.Snapshot}}

Available services:
{{.Services}}
{{if .Constraints}}
Constraints:
{{range .Constraints}}- {{.}}
{{end}}{{end}}
Propose a composition of the available services that achieves the goal.
Explain the plan briefly, then emit the structured plan as a fenced code
block labeled json with this shape:

` + "```json" + `
{
  "services": [
    {
      "service_id": "…",
      "role": "…",
      "priority": 1,
      "inputs": ["…"],
      "outputs": ["…"],
      "dependencies": ["…"]
    }
  ]
}
` + "```" + `

Only reference service ids from the available services list. Priority is an
integer from 1 (lowest) to 5 (highest). Dependencies name other service ids
inside your own plan.
`))

type promptData struct {
	Goal        string
	Snapshot    string
	Services    string
	Constraints []string
}

// renderPrompt substitutes goal, snapshot, constraints and the service
// catalog description into the template.
func renderPrompt(cat *catalog.Catalog, goal string, snapshot map[string]float64, constraints []string) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		Goal:        goal,
		Snapshot:    formatSnapshot(snapshot),
		Services:    describeServices(cat),
		Constraints: constraints,
	})
	if err != nil {
		return "", fmt.Errorf("compose.renderPrompt: template execution failed: %w", err)
	}
	return b.String(), nil
}

func formatSnapshot(snapshot map[string]float64) string {
	if len(snapshot) == 0 {
		return "- (no readings available)"
	}
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %g\n", k, snapshot[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeServices(cat *catalog.Catalog) string {
	var b strings.Builder
	for _, svc := range cat.Services() {
		fmt.Fprintf(&b, "- %s (%s): inputs=%s outputs=%s\n",
			svc.ID, svc.Description,
			strings.Join(svc.Inputs, ","), strings.Join(svc.Outputs, ","))
	}
	return strings.TrimRight(b.String(), "\n")
}
