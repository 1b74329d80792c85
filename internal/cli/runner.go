package cli

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/jetsetter/internal/config"
	"github.com/idilsaglam/jetsetter/internal/model"
	"github.com/idilsaglam/jetsetter/internal/store/jsonstore"
	"github.com/idilsaglam/jetsetter/internal/store/packing"
	"github.com/idilsaglam/jetsetter/internal/tui"
	"github.com/idilsaglam/jetsetter/internal/ui"
)

// Options tune behavior from root flags and config.
type Options struct {
	Group      bool   // list grouped by unpacked/packed
	Filter     string // title prefix applied to ls
	StateFile  string // snapshot file; empty keeps everything in memory
	Seed       bool   // start from the seed list when there is no snapshot
	ConfigPath string // target of `config init` and `config path`
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		args = []string{"tui"}
	}
	cmd, a := args[0], args[1:]
	log.Printf("cli: %s %q", cmd, a)

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "tui":
		return doTUI(opt)

	case "config":
		return doConfig(a, opt)

	case "ls":
		return doList(opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: jetsetter add <title...>")
			return 2
		}
		title := strings.Join(a, " ")
		return mutate(opt, "added", func(s *packing.Store) bool {
			s.Add(title)
			return true
		})

	case "toggle", "rm":
		if len(a) != 1 {
			ui.Fail(fmt.Sprintf("usage: jetsetter %s <id>", cmd))
			return 2
		}
		id, err := strconv.ParseInt(a[0], 10, 64)
		if err != nil {
			ui.Fail(cmd + ": not a number: " + a[0])
			return 2
		}
		if cmd == "toggle" {
			return mutate(opt, "toggled", func(s *packing.Store) bool { return s.Toggle(id) })
		}
		return mutate(opt, "removed", func(s *packing.Store) bool { return s.Remove(id) })

	case "pack-all":
		return mutate(opt, "all packed", func(s *packing.Store) bool {
			s.MarkAllPacked()
			return true
		})

	case "unpack-all":
		return mutate(opt, "all unpacked", func(s *packing.Store) bool {
			s.MarkAllAsUnpacked()
			return true
		})

	case "clear":
		return mutate(opt, "cleared", func(s *packing.Store) bool {
			s.RemoveAll()
			return true
		})
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Stdout())
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprint(ui.Stdout(), `jetsetter - pack for your trip

Usage:
  jetsetter [flags] <subcommand> [args]

Subcommands:
  tui                Interactive packing list (default)
  ls                 List items (-group splits unpacked/packed, -filter narrows)
  add <title...>     Add an unpacked item (title can be multiple words)
  toggle <id>        Flip packed/unpacked for an item
  rm <id>            Remove an item
  pack-all           Mark every item packed
  unpack-all         Mark every item unpacked
  clear              Remove every item
  config init        Write the default config file (refuses to overwrite)
  config path        Print the config file location

Examples:
  jetsetter add "Sun Screen"
  jetsetter -filter tooth ls
  jetsetter toggle 2
  jetsetter rm 3
`)
}

// Open builds the store for opt: the snapshot when one exists, otherwise the
// seed list (or nothing when seeding is off).
func Open(opt Options) (*packing.Store, error) {
	if opt.StateFile != "" && jsonstore.Exists(opt.StateFile) {
		items, err := jsonstore.Load(opt.StateFile)
		if err != nil {
			return nil, err
		}
		log.Printf("loaded %d items from %s", len(items), opt.StateFile)
		return packing.New(packing.WithItems(items)), nil
	}
	if opt.Seed {
		return packing.NewSeeded(), nil
	}
	return packing.New(), nil
}

// -------------- subcommand impls ----------------

func doTUI(opt Options) int {
	store, err := Open(opt)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	if err := tui.Run(store, tui.Options{StateFile: opt.StateFile}); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func doConfig(args []string, opt Options) int {
	if len(args) != 1 {
		ui.Fail("usage: jetsetter config <init|path>")
		return 2
	}
	switch args[0] {
	case "path":
		fmt.Fprintln(ui.Stdout(), opt.ConfigPath)
		return 0
	case "init":
		if opt.ConfigPath == "" {
			ui.Fail("config init: no config path")
			return 2
		}
		if _, err := os.Stat(opt.ConfigPath); err == nil {
			ui.Fail("config init: already exists: " + opt.ConfigPath)
			return 1
		}
		if err := config.Save(opt.ConfigPath, config.Default()); err != nil {
			ui.Fail("config init: " + err.Error())
			return 1
		}
		log.Printf("wrote default config to %s", opt.ConfigPath)
		ui.OK("wrote " + opt.ConfigPath)
		return 0
	}
	ui.Fail("unknown config subcommand: " + args[0])
	return 2
}

func doList(opt Options) int {
	store, err := Open(opt)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	store.SetFilter(opt.Filter)
	ui.Panel(render(store, opt))
	return 0
}

// mutate applies fn, persists when a snapshot file is configured and prints
// the resulting list. fn reports whether its target existed; a miss is a
// warning, not a failure.
func mutate(opt Options, done string, fn func(*packing.Store) bool) int {
	store, err := Open(opt)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	if !fn(store) {
		ui.Warn("no matching item; nothing changed")
	} else {
		if opt.StateFile != "" {
			if err := jsonstore.Save(opt.StateFile, store.All()); err != nil {
				ui.Fail("save: " + err.Error())
				return 1
			}
			log.Printf("saved %d items to %s", len(store.All()), opt.StateFile)
		}
		ui.OK(done)
	}
	store.SetFilter(opt.Filter)
	ui.Panel(render(store, opt))
	return 0
}

// -------------- rendering helpers --------------

func render(store *packing.Store, opt Options) []string {
	t := ui.Current()
	items := store.Items()
	packed, unpacked := store.Packed(), store.Unpacked()

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Jetsetter"),
		ui.C(t.Success, t.SymPacked), len(packed),
		ui.C(t.Pending, t.SymUnpacked), len(unpacked),
		ui.C(t.Accent, "Total"), len(items),
	)
	if f := store.Filter(); f != "" {
		header += "  " + ui.C(t.Muted, "[Filter: "+f+"]")
	}

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(len(packed), len(items), 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(unpacked, packed)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `jetsetter add \"Sun Screen\"`"))
	return lines
}

func flatLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{ui.C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		idx := fmt.Sprintf("%3d.", it.ID)
		box := t.BoxUnchecked
		color := t.Muted
		if it.Packed {
			box, color = t.BoxChecked, t.Success
		}
		title := runewidth.Truncate(it.Title, 80, "...")
		out = append(out, fmt.Sprintf("%s %s %s", ui.Dim(idx), ui.C(color, box), title))
	}
	return out
}

func groupLines(unpacked, packed []model.Item) []string {
	t := ui.Current()
	var lines []string
	lines = append(lines, ui.C(t.Accent, "Unpacked Items"))
	if len(unpacked) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(unpacked)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Accent, "Packed Items"))
	if len(packed) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(packed)...)
	}
	return lines
}
