package workflow

import "podsweep/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
// The downloader gets its own lane so slow processing never starves fetches;
// the remaining stages share the process lane in lifecycle order.
func (m *Manager) ConfigureStages(set StageSet) {
	fetch := &laneState{kind: laneFetch, name: "fetch", notificationsEnabled: true}
	process := &laneState{kind: laneProcess, name: "process", notificationsEnabled: true}

	if set.Downloader != nil {
		fetch.stages = append(fetch.stages, pipelineStage{
			name:             "downloader",
			handler:          set.Downloader,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusDownloading,
			doneStatus:       queue.StatusDownloaded,
		})
	}
	detectorStart := queue.StatusDownloaded
	if set.Transcriber != nil {
		process.stages = append(process.stages, pipelineStage{
			name:             "transcriber",
			handler:          set.Transcriber,
			startStatus:      queue.StatusDownloaded,
			processingStatus: queue.StatusTranscribing,
			doneStatus:       queue.StatusTranscribed,
		})
		detectorStart = queue.StatusTranscribed
	}
	cutterStart := detectorStart
	if set.Detector != nil {
		process.stages = append(process.stages, pipelineStage{
			name:             "detector",
			handler:          set.Detector,
			startStatus:      detectorStart,
			processingStatus: queue.StatusDetecting,
			doneStatus:       queue.StatusDetected,
		})
		cutterStart = queue.StatusDetected
	}
	organizerStart := cutterStart
	if set.Cutter != nil {
		process.stages = append(process.stages, pipelineStage{
			name:             "cutter",
			handler:          set.Cutter,
			startStatus:      cutterStart,
			processingStatus: queue.StatusCutting,
			doneStatus:       queue.StatusCut,
		})
		organizerStart = queue.StatusCut
	}
	if set.Organizer != nil {
		process.stages = append(process.stages, pipelineStage{
			name:             "organizer",
			handler:          set.Organizer,
			startStatus:      organizerStart,
			processingStatus: queue.StatusOrganizing,
			doneStatus:       queue.StatusCompleted,
		})
	}

	lanes := make(map[laneKind]*laneState)
	order := make([]laneKind, 0, 2)

	if len(fetch.stages) > 0 {
		fetch.finalize()
		lanes[fetch.kind] = fetch
		order = append(order, fetch.kind)
	}
	if len(process.stages) > 0 {
		process.finalize()
		lanes[process.kind] = process
		order = append(order, process.kind)
	}

	for _, lane := range lanes {
		if lane == nil {
			continue
		}
		lane.runReclaimer = len(lane.processingStatuses) > 0
	}

	m.mu.Lock()
	m.lanes = lanes
	m.laneOrder = order
	m.mu.Unlock()
}
