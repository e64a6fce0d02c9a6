package audiosig

// Turn is one diarized speaker span. Speaker ids are small integers assigned
// by the diarization service; their values only matter for equality.
type Turn struct {
	Start   float64
	End     float64
	Speaker int
}

// AssignSpeakers labels each frame with the speaker whose turn contains the
// frame midpoint. Frames whose midpoint falls between turns keep a nil
// speaker. Frames are mutated in place; turns must be ordered by start time.
func AssignSpeakers(frames []Frame, turns []Turn) {
	if len(frames) == 0 || len(turns) == 0 {
		return
	}
	ti := 0
	for i := range frames {
		mid := (frames[i].Start + frames[i].End) / 2
		for ti < len(turns) && turns[ti].End <= mid {
			ti++
		}
		if ti >= len(turns) {
			return
		}
		if turns[ti].Start <= mid && mid < turns[ti].End {
			speaker := turns[ti].Speaker
			frames[i].Speaker = &speaker
		}
	}
}
