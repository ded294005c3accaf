package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Rashandd/rashplayer/brain"
	"github.com/Rashandd/rashplayer/flappy"
	"github.com/Rashandd/rashplayer/player"
	"github.com/Rashandd/rashplayer/shm"
	"github.com/Rashandd/rashplayer/vision"
)

var (
	shmName      = flag.String("shm", shm.SHM_NAME, "Name of the shared frame region.")
	hz           = flag.Int("hz", player.DEFAULT_HZ, "Polling rate of the consumer loop.")
	templateDir  = flag.String("templates", "", "Directory of PNG templates to match every frame.")
	threshold    = flag.Float64("threshold", 0.8, "Match threshold for loaded templates.")
	rulesFile    = flag.String("rules", "", "Decision rules, one 'priority|condition|action|x,y' per line.")
	flappyPreset = flag.Bool("flappy", false, "Install the Flappy Bird trigger and rule presets.")
	tapTarget    = flag.String("tap", "540,960", "Tap target for the Flappy Bird preset.")
	view         = flag.Bool("view", false, "Open a live viewer with detection overlays.")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	region, err := shm.Attach(*shmName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rashplayer: %v\n", err)
		os.Exit(1)
	}
	defer region.Close()

	v := vision.New(logger)
	defer v.Close()
	b := brain.New(logger)
	defer b.Close()

	if *flappyPreset {
		for _, tr := range flappy.Triggers() {
			if _, err := v.AddTrigger(tr); err != nil {
				log.Fatalf("Couldn't add preset trigger %q: %v", tr.Name, err)
			}
		}
		x, y, err := parsePoint(*tapTarget)
		if err != nil {
			log.Fatalf("Invalid -tap target: %v", err)
		}
		if err := b.LoadRules(flappy.Rules(x, y)); err != nil {
			log.Fatalf("Couldn't load preset rules: %v", err)
		}
	}

	if *templateDir != "" {
		if err := loadTemplates(v, *templateDir, float32(*threshold)); err != nil {
			log.Fatalf("Couldn't load templates: %v", err)
		}
	}

	if *rulesFile != "" {
		rules, err := readRules(*rulesFile)
		if err != nil {
			log.Fatalf("Couldn't read rules: %v", err)
		}
		if err := b.LoadRules(rules); err != nil {
			log.Fatalf("Couldn't load rules: %v", err)
		}
	}

	p := player.New(region, v, b,
		player.WithHz(*hz), player.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *view {
		go func() {
			p.Run(ctx)
		}()

		ebiten.SetWindowSize(shm.MAX_FRAME_WIDTH/2, shm.MAX_FRAME_HEIGHT/2)
		ebiten.SetWindowTitle("RashPlayer")
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		if err := ebiten.RunGame(player.NewViewer(region)); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := p.Run(ctx); err != nil {
		log.Fatal(err)
	}
}

// loadTemplates registers every PNG in dir, in name order, as both a
// template and an active full-frame trigger. Trigger ids for templates
// start at 10 to stay clear of the conventional ids.
func loadTemplates(v *vision.Engine, dir string, threshold float32) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for i, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %q: %w", path, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("decode %q: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), ".png")
		id := uint32(10 + i)
		tmpl := vision.TemplateFromImage(img, id, name, threshold, 0, 0)
		idx, err := v.LoadTemplate(tmpl)
		if err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
		_, err = v.AddTrigger(vision.Trigger{
			ID: id, Name: name, Label: name, Kind: vision.TRIGGER_TEMPLATE,
			Active: true, TemplateIndex: idx,
		})
		if err != nil {
			return fmt.Errorf("trigger %q: %w", name, err)
		}
	}
	return nil
}

// readRules parses the line format 'priority|condition|action|x,y'.
// Blank lines and lines starting with # are skipped.
func readRules(path string) ([]brain.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules []brain.Rule
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("%s:%d: want 4 '|' fields, got %d", path, lineNo, len(parts))
		}

		priority, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: priority: %w", path, lineNo, err)
		}
		action, err := parseAction(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		x, y, err := parsePoint(strings.TrimSpace(parts[3]))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: target: %w", path, lineNo, err)
		}

		rules = append(rules, brain.Rule{
			Condition: strings.TrimSpace(parts[1]),
			Action:    action,
			Target:    shm.Point{X: x, Y: y},
			Priority:  int32(priority),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

func parseAction(name string) (shm.ActionType, error) {
	switch strings.ToUpper(name) {
	case "NONE":
		return shm.ACTION_NONE, nil
	case "TAP":
		return shm.ACTION_TAP, nil
	case "SWIPE":
		return shm.ACTION_SWIPE, nil
	case "LONG_PRESS":
		return shm.ACTION_LONG_PRESS, nil
	case "DRAG":
		return shm.ACTION_DRAG, nil
	case "WAIT":
		return shm.ACTION_WAIT, nil
	}
	return shm.ACTION_NONE, fmt.Errorf("unknown action %q", name)
}

func parsePoint(s string) (int32, int32, error) {
	var x, y int32
	if _, err := fmt.Sscanf(s, "%d,%d", &x, &y); err != nil {
		return 0, 0, fmt.Errorf("want 'x,y', got %q: %w", s, err)
	}
	return x, y, nil
}
