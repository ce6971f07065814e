package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/turnsignal/reactive"
	"github.com/delaneyj/turnsignal/tick"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure write to flush latency of computed chains",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Writes measured per shape",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
				Value: "default.pgo",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Int(itersKey))

	log.Printf("warming up")
	benchmarkPropagate(reactive.Config{Async: true}, iters, false)

	benchmarkPropagate(reactive.Config{Async: true}, iters, true)
	benchmarkPropagate(reactive.Config{Async: false}, iters, true)
	return nil
}

// read returns the value of a computed watcher, evaluating it when dirty
// and letting the active watcher depend on it.
func read(rs *reactive.ReactiveSystem, w *reactive.Watcher) int {
	if w.IsDirty() {
		w.Evaluate()
	}
	if rs.Target() != nil {
		w.Depend()
	}
	return w.Value().(int)
}

func computedChain(rs *reactive.ReactiveSystem, src *reactive.Object, h int) *reactive.Watcher {
	last := reactive.NewWatcher(rs, nil, func() (any, error) {
		return src.Get("n").(int) + 1, nil
	}, nil, reactive.WatcherOptions{Lazy: true})
	for j := 1; j < h; j++ {
		prev := last
		last = reactive.NewWatcher(rs, nil, func() (any, error) {
			return read(rs, prev) + 1, nil
		}, nil, reactive.WatcherOptions{Lazy: true})
	}
	return last
}

func benchmarkPropagate(cfg reactive.Config, iters int, shouldRender bool) {
	title := "Batched flush"
	if !cfg.Async {
		title = "Synchronous flush"
	}

	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			loop := tick.NewLoop()
			rs := reactive.CreateReactiveSystem(loop, func(err error, vm reactive.Instance, info string) {
				log.Panicf("%s: %v", info, err)
			})
			rs.Configure(cfg)

			src := reactive.NewObject().Put("n", 1)
			rs.Observe(src)

			sum := 0
			for i := 0; i < w; i++ {
				last := computedChain(rs, src, h)
				reactive.NewWatcher(rs, nil, func() (any, error) {
					sum += read(rs, last)
					return nil, nil
				}, nil, reactive.WatcherOptions{})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Set("n", src.Get("n").(int)+1)
				loop.Drain()
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
