package deps

// MediaToolRequirements returns the ffmpeg and ffprobe requirements shared by
// the daemon preflight and the CLI status command.
func MediaToolRequirements(ffmpegCmd, ffprobeCmd string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegCmd,
			Description: "Required for audio decoding and ad removal",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeCmd,
			Description: "Required for audio inspection",
		},
	}
}
