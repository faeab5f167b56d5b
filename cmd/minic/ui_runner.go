package main

import (
	"context"
	"fmt"
	"os"

	"minic/internal/buildpipeline"
	"minic/internal/ui"
)

type buildOutcome struct {
	result buildpipeline.BuildResult
	err    error
}

func runBuildWithUI(ctx context.Context, title string, files []string, req *buildpipeline.BuildRequest) (buildpipeline.BuildResult, error) {
	if req == nil {
		return buildpipeline.BuildResult{}, fmt.Errorf("missing build request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Build(ctx, &reqCopy)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	uiErr := ui.RunProgress(os.Stdout, title, files, events)
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
