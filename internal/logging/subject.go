package logging

import "strings"

// FormatSubject builds the run/stage subject string used in console output.
func FormatSubject(runID, stage string) string {
	runID = strings.TrimSpace(runID)
	stage = strings.TrimSpace(stage)
	switch {
	case runID != "" && stage != "":
		return "Run " + runID + " · " + stage
	case runID != "":
		return "Run " + runID
	default:
		return stage
	}
}
