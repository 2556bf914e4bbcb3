package availability

// CopyCandidates lists the weekdays a source day can be copied to, in editor order.
func CopyCandidates(source DayID) []DayID {
	out := make([]DayID, 0, len(EditorDays)-1)
	for _, d := range EditorDays {
		if d != source {
			out = append(out, d)
		}
	}
	return out
}

// DefaultCopyTargets preselects the working days other than the source.
func DefaultCopyTargets(source DayID) []DayID {
	out := make([]DayID, 0, 5)
	for _, d := range CopyCandidates(source) {
		if !d.IsWeekend() {
			out = append(out, d)
		}
	}
	return out
}
