package compose

import (
	"fmt"

	"github.com/c360/semhome/catalog"
)

// rawSignals are input names supplied by sensors directly rather than by
// another service's outputs; an unmatched input with one of these names is
// not a wiring gap.
var rawSignals = map[string]struct{}{
	"temperature": {},
	"humidity":    {},
	"smoke_level": {},
	"motion":      {},
	"light_level": {},
}

const (
	maxServicesBeforeSplit  = 6
	maxHighPriorityServices = 3
	highPriorityFloor       = 4
)

// validatePlan checks the plan's services against the catalog. Errors make
// the plan invalid: an empty service list, or a dependency naming a service
// id absent from the plan itself. Warnings flag unknown service ids and
// inputs no declared dependency produces; suggestions flag oversized or
// priority-heavy plans.
func validatePlan(cat *catalog.Catalog, services []PlanService) Validation {
	v := Validation{IsValid: true}

	if len(services) == 0 {
		v.IsValid = false
		v.Errors = append(v.Errors, "plan declares no services")
		return v
	}

	planIDs := make(map[string]PlanService, len(services))
	for _, svc := range services {
		planIDs[svc.ServiceID] = svc
	}

	highPriority := 0
	for _, svc := range services {
		if svc.Priority >= highPriorityFloor {
			highPriority++
		}

		if _, ok := cat.Service(svc.ServiceID); !ok {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("service %q is not in the catalog", svc.ServiceID))
		}

		for _, dep := range svc.Dependencies {
			if _, ok := planIDs[dep]; !ok {
				v.IsValid = false
				v.Errors = append(v.Errors,
					fmt.Sprintf("service %q depends on %q which is not part of the plan", svc.ServiceID, dep))
			}
		}

		for _, input := range svc.Inputs {
			if _, raw := rawSignals[input]; raw {
				continue
			}
			if !producedByDependencies(input, svc.Dependencies, planIDs) {
				v.Warnings = append(v.Warnings,
					fmt.Sprintf("input %q of service %q has no producer among its dependencies", input, svc.ServiceID))
			}
		}
	}

	if len(services) > maxServicesBeforeSplit {
		v.Suggestions = append(v.Suggestions,
			fmt.Sprintf("plan has %d services; consider splitting it into phases", len(services)))
	}
	if highPriority > maxHighPriorityServices {
		v.Suggestions = append(v.Suggestions,
			fmt.Sprintf("%d services at priority %d or above; consider re-balancing priorities", highPriority, highPriorityFloor))
	}

	return v
}

func producedByDependencies(input string, dependencies []string, planIDs map[string]PlanService) bool {
	for _, dep := range dependencies {
		producer, ok := planIDs[dep]
		if !ok {
			continue
		}
		for _, output := range producer.Outputs {
			if output == input {
				return true
			}
		}
	}
	return false
}
