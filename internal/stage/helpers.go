package stage

import (
	"podsweep/internal/detections"
	"podsweep/internal/services"
)

// ParseDetections parses a persisted detection report and returns it.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParseDetections(raw string) (detections.Report, error) {
	report, err := detections.Parse(raw)
	if err != nil {
		return detections.Report{}, services.Wrap(
			services.ErrValidation, "stage", "parse detections",
			"Detection report missing or invalid; rerun detection", err)
	}
	return report, nil
}
