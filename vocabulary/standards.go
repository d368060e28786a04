// Package vocabulary provides semantic vocabulary definitions for the
// smart-home sensing domain: SOSA/SSN standard IRIs, observed-property
// classification, and categorical value interpretation.
package vocabulary

// Standard Vocabulary IRIs
//
// These constants provide the W3C SOSA/SSN IRIs used to tag observations and
// sensor descriptors. Internal code keys on short property kinds; the IRIs
// are for export and interoperability.
//
// References:
// - SOSA/SSN: https://www.w3.org/TR/vocab-ssn/
// - RDF Schema: https://www.w3.org/TR/rdf-schema/

// SOSA (Sensor, Observation, Sample, and Actuator) Standard IRIs
const (
	// SosaObservation is the class of acts of observing a property.
	SosaObservation = "http://www.w3.org/ns/sosa/Observation"

	// SosaSensor is the class of devices that implement observation procedures.
	SosaSensor = "http://www.w3.org/ns/sosa/Sensor"

	// SosaPlatform is the class of entities that host sensors.
	SosaPlatform = "http://www.w3.org/ns/sosa/Platform"

	// SosaObservableProperty is the class of observable qualities.
	SosaObservableProperty = "http://www.w3.org/ns/sosa/ObservableProperty"

	// SosaObserves relates a sensor to the property it observes.
	SosaObserves = "http://www.w3.org/ns/sosa/observes"

	// SosaMadeBySensor relates an observation to the sensor that made it.
	SosaMadeBySensor = "http://www.w3.org/ns/sosa/madeBySensor"

	// SosaHasResult relates an observation to its result.
	SosaHasResult = "http://www.w3.org/ns/sosa/hasResult"

	// SosaResultTime is the instant the result became available.
	SosaResultTime = "http://www.w3.org/ns/sosa/resultTime"

	// SosaHosts relates a platform to the sensors it carries.
	SosaHosts = "http://www.w3.org/ns/sosa/hosts"

	// SosaIsHostedBy is the inverse of SosaHosts.
	SosaIsHostedBy = "http://www.w3.org/ns/sosa/isHostedBy"
)

// SSN (Semantic Sensor Network) Standard IRIs
const (
	// SsnSystem is the class of units of abstract composition of sensors.
	SsnSystem = "http://www.w3.org/ns/ssn/System"

	// SsnDeployment is the class of sensor deployments.
	SsnDeployment = "http://www.w3.org/ns/ssn/Deployment"
)

// Base IRI constants for the semhome vocabulary
const (
	SemHomeBase       = "https://semhome.c360.io"
	PropertyNamespace = SemHomeBase + "/property"
	SensorNamespace   = SemHomeBase + "/sensor"
	ServiceNamespace  = SemHomeBase + "/service"
)

// PropertyIRI converts a short observed-property name to a full IRI for
// export. Returns an empty string for empty input.
func PropertyIRI(name string) string {
	if name == "" {
		return ""
	}
	return PropertyNamespace + "#" + name
}
