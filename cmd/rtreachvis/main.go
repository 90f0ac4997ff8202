// Command rtreachvis replays a recorded experiment run: the driven
// trajectory, the per-step verified reach tubes, and the obstacle layout.
package main

import (
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/npotteig/rtreach-go/internal/vis"
)

func main() {
	states := flag.String("states", "eval_output_data/bicycle/nbd_exp/replay_states.csv", "state trace CSV")
	tubes := flag.String("tubes", "", "reach tube CSV (optional)")
	obstacles := flag.String("obstacles", "", "obstacle centres CSV (optional)")
	walls := flag.String("walls", "", "wall points CSV (optional)")
	paths := flag.String("paths", "", "waypoint path dataset CSV (optional)")
	pathIndex := flag.Int("path-index", 0, "which path from the dataset to draw")
	stepTime := flag.Float64("step", 0.1, "control period in seconds")
	flag.Parse()

	scene, err := vis.LoadScene(vis.SceneFiles{
		States:    *states,
		Tubes:     *tubes,
		Obstacles: *obstacles,
		Walls:     *walls,
		Paths:     *paths,
		PathIndex: *pathIndex,
	}, *stepTime)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("rtreach replay"),
			app.Size(unit.Dp(1200), unit.Dp(800)),
		)

		application := vis.NewApp(scene)
		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
