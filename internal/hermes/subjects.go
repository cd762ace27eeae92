package hermes

const (
	SubjectWeightsAll  = "govdesign.weights.>"
	SubjectProjectsAll = "govdesign.project.>"

	SubjectWeightsDeactivated = "govdesign.weights.deactivated"

	StreamName   = "GOVDESIGN_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectProjectSaved(projectID string) string   { return "govdesign.project." + projectID + ".saved" }
func SubjectProjectDeleted(projectID string) string { return "govdesign.project." + projectID + ".deleted" }

func SubjectWeightsActivated(configID string) string { return "govdesign.weights." + configID + ".activated" }
func SubjectWeightsDeleted(configID string) string   { return "govdesign.weights." + configID + ".deleted" }
