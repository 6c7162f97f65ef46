package client

import (
	"io"

	"github.com/gserver/gctl/util"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
	terminal "github.com/wayneashleyberry/terminal-dimensions"
)

const (
	defaultBarWidth = 60
	// room for name, counters and percentage next to the bar.
	barDecorWidth = 45
)

// progress draws an upload progress bar. A nil *progress does nothing.
type progress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func barWidth() int {
	cols, err := terminal.Width()
	if err != nil || int(cols) <= barDecorWidth+10 {
		return defaultBarWidth
	}

	return util.Min(int(cols)-barDecorWidth, defaultBarWidth)
}

func newProgress(w io.Writer, name string, total int64) *progress {
	p := mpb.New(
		mpb.WithOutput(w),
		mpb.WithWidth(barWidth()),
	)

	bar := p.AddBar(
		total,
		mpb.PrependDecorators(
			decor.Name(name),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f"),
			decor.Percentage(),
		),
	)

	return &progress{p: p, bar: bar}
}

func (pg *progress) Add(n int) {
	if pg == nil {
		return
	}

	pg.bar.IncrBy(n)
}

// Finish waits for the bar to be rendered completely.
// On failure the bar will never complete, so we don't wait for it.
func (pg *progress) Finish(ok bool) {
	if pg == nil || !ok {
		return
	}

	pg.p.Wait()
}
