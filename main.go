package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug overlay")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	machine := flag.String("machine", "", "machine prefab in prefabs/ (default machine.yaml)")
	seed := flag.Int64("seed", 0, "random seed (0 seeds from the clock)")
	watch := flag.Bool("watch", false, "reload the machine when prefabs or scripts change")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("claw machine")
	ebiten.SetTPS(ebiten.DefaultTPS)

	game, err := NewGame(*machine, *seed, *debug, *watch)
	if err != nil {
		log.Fatal(err)
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
