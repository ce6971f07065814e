package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/turnsignal/instance"
	"github.com/delaneyj/turnsignal/reactive"
	"github.com/delaneyj/turnsignal/tick"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const repeatsKey = "repeats"

func main() {
	cmd := &cli.Command{
		Name:  "benchmark_scheduler",
		Usage: "Measure re-render throughput of component trees",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  repeatsKey,
				Usage: "Runs per config, the best one is reported",
				Value: 5,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type benchmarkTestConfig struct {
	name           string  // friendly name for the test, should be unique
	fanout         int     // children per component
	depth          int     // levels below the root
	staticFraction float64 // fraction of components whose render ignores the shared tick
	writesPerTick  int     // writes batched into each flush
	iterations     int64   // number of flushes
}

type results struct {
	renders  int64
	duration time.Duration
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting scheduler benchmark, please wait...")
	defer log.Print("Finished scheduler benchmark")

	perfTestCfgs := []benchmarkTestConfig{
		{
			name:           "single component",
			fanout:         0,
			depth:          0,
			staticFraction: 0,
			writesPerTick:  1,
			iterations:     100000,
		},
		{
			name:           "wide tree",
			fanout:         100,
			depth:          1,
			staticFraction: 0.5,
			writesPerTick:  1,
			iterations:     5000,
		},
		{
			name:           "deep tree",
			fanout:         2,
			depth:          8,
			staticFraction: 0.25,
			writesPerTick:  1,
			iterations:     2000,
		},
		{
			name:           "batched writes",
			fanout:         10,
			depth:          2,
			staticFraction: 0,
			writesPerTick:  50,
			iterations:     5000,
		},
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"framework", "components", "static%", "writes/tick",
		"nTimes", "test", "time", "renders", "renderRate", "title",
	})

	testRepeats := int(cmd.Int(repeatsKey))
	for _, cfg := range perfTestCfgs {
		log.Printf("Running '%s' config", cfg.name)

		best := &results{duration: time.Hour}
		var components int
		for i := 0; i < testRepeats; i++ {
			log.Printf("Running '%s' config, iteration %d/%d %d%%", cfg.name, i+1, testRepeats, (i+1)*100/testRepeats)
			res, n, err := runOnce(cfg)
			if err != nil {
				return err
			}
			components = n
			if res.duration < best.duration {
				best = res
			}
		}

		makeTitle := func() string {
			sb := strings.Builder{}
			sb.WriteString(fmt.Sprintf("%d fanout %d deep", cfg.fanout, cfg.depth))
			if cfg.staticFraction > 0 {
				sb.WriteString(fmt.Sprintf(" static %0.2f%%", 100*cfg.staticFraction))
			}
			return sb.String()
		}

		renderRate := float64(best.renders) / (float64(best.duration) / float64(time.Millisecond))

		table.Append([]string{
			"turnsignal",                      // framework
			humanize.Comma(int64(components)), // components
			fmt.Sprint(cfg.staticFraction),    // static%
			fmt.Sprint(cfg.writesPerTick),     // writes/tick
			humanize.Comma(cfg.iterations),    // nTimes
			cfg.name,                          // test
			fmt.Sprint(best.duration),         // time
			humanize.Comma(best.renders),      // renders
			humanize.Comma(int64(renderRate)), // renderRate
			makeTitle(),                       // title
		})
	}
	table.Render()
	return nil
}

// runOnce builds a fresh tree and flushes it cfg.iterations times.
func runOnce(cfg benchmarkTestConfig) (*results, int, error) {
	var firstErr error
	loop := tick.NewLoop()
	rs := reactive.CreateReactiveSystem(loop, func(err error, vm reactive.Instance, info string) {
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", info, err)
		}
	})

	renders := new(int64)
	random := rand.New(rand.NewSource(0))
	root := instance.New(rs, nil, instance.Options{
		Name: "root",
		Data: map[string]any{"tick": 0},
		Render: func(c *instance.Component) (any, error) {
			*renders++
			return c.Get("tick"), nil
		},
	}).Mount()
	components := 1 + buildTree(rs, root, root, cfg, cfg.depth, random, renders)

	*renders = 0
	start := time.Now()
	for i := int64(0); i < cfg.iterations; i++ {
		for j := 0; j < cfg.writesPerTick; j++ {
			root.Set("tick", int(i)*cfg.writesPerTick+j+1)
		}
		loop.Drain()
	}
	res := &results{renders: *renders, duration: time.Since(start)}

	root.Destroy()
	return res, components, firstErr
}

func buildTree(rs *reactive.ReactiveSystem, root, parent *instance.Component, cfg benchmarkTestConfig, depth int, random *rand.Rand, renders *int64) int {
	if depth == 0 {
		return 0
	}
	count := 0
	for i := 0; i < cfg.fanout; i++ {
		static := random.Float64() < cfg.staticFraction
		child := instance.New(rs, parent, instance.Options{
			Name: fmt.Sprintf("%s.%d", parent.Name(), i),
			Computed: map[string]func(c *instance.Component) (any, error){
				"parity": func(c *instance.Component) (any, error) {
					return root.Get("tick").(int) & 1, nil
				},
			},
			Render: func(c *instance.Component) (any, error) {
				*renders++
				if static {
					return c.Name(), nil
				}
				return fmt.Sprint(c.Name(), c.Get("parity")), nil
			},
		}).Mount()
		count += 1 + buildTree(rs, root, child, cfg, depth-1, random, renders)
	}
	return count
}
