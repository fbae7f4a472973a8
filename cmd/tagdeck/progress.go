package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"tagdeck/internal/fetch"
)

const progressSteps = 1000

// fetchProgress drives one bar per fetch stage on an interactive terminal.
type fetchProgress struct {
	out   io.Writer
	stage fetch.Stage
	bar   *progressbar.ProgressBar
}

// newFetchProgress returns nil when out is not a terminal.
func newFetchProgress(out io.Writer) *fetchProgress {
	if !shouldColorize(out) {
		return nil
	}
	return &fetchProgress{out: out}
}

func (p *fetchProgress) update(update fetch.Progress) {
	if p == nil {
		return
	}
	if p.bar == nil || update.Stage != p.stage {
		p.finish()
		p.stage = update.Stage
		p.bar = progressbar.NewOptions(progressSteps,
			progressbar.OptionSetDescription(stageDescription(update.Stage)),
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(p.out, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	_ = p.bar.Set(int(update.Fraction * progressSteps))
}

func (p *fetchProgress) finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

// callback adapts the reporter to fetch.Service; nil reporters yield nil.
func (p *fetchProgress) callback() func(fetch.Progress) {
	if p == nil {
		return nil
	}
	return p.update
}

func stageDescription(stage fetch.Stage) string {
	switch stage {
	case fetch.StageHash:
		return "hashing"
	case fetch.StageFetch:
		return "fetching"
	default:
		return string(stage)
	}
}
