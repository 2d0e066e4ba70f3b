package main

import "github.com/AndreCostaaa/ejlv-builder/internal/pipeline"

const exitUsage = 2

// exitCodes maps error kinds to process exit codes so the orchestrator can
// tell failures apart without parsing output.
var exitCodes = map[string]int{
	pipeline.KindLaunch:      3,
	pipeline.KindReconfigure: 4,
	pipeline.KindRebuild:     5,
	pipeline.KindFlash:       6,
	pipeline.KindSerialOpen:  7,
	pipeline.KindTimeout:     8,
	pipeline.KindFilesystem:  9,
	pipeline.KindCanceled:    130,
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[pipeline.ErrorKind(err)]; ok {
		return code
	}
	return 1
}
