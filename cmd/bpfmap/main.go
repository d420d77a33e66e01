// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command bpfmap inspects and edits kernel BPF hash maps from user space.
// It operates on maps pinned to a BPF filesystem, or on an in-memory
// simulated kernel declared by a yaml manifest (-sim -manifest).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	apperrors "grimm.is/bpfmap/internal/errors"
	"grimm.is/bpfmap/internal/loader"
	"grimm.is/bpfmap/internal/logging"
	"grimm.is/bpfmap/internal/maps"
	"grimm.is/bpfmap/internal/sys"
)

const usage = `Usage: bpfmap [flags] <command> [args]

Commands:
  info                 show map definition and entry count
  get <key>            look up one entry
  put <key> <value>    insert or update one entry
  del <key>            delete one entry
  keys                 list keys in kernel traversal order
  dump                 list key/value pairs
  create               create a map (and pin it with -pin)
  watch                serve prometheus and JSON map statistics

Flags:
`

type options struct {
	sim      bool
	manifest string
	pin      string
	mapName  string
	putMode  string
	listen   string
	interval time.Duration

	kind       string
	keySize    uint
	valueSize  uint
	maxEntries uint

	log *logging.Logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("bpfmap", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	var opts options
	fs.BoolVar(&opts.sim, "sim", false, "Use the in-memory simulated kernel")
	fs.StringVar(&opts.manifest, "manifest", "", "Path to yaml map manifest (sim mode)")
	fs.StringVar(&opts.pin, "pin", "", "Path of a pinned map on a BPF filesystem")
	fs.StringVar(&opts.mapName, "map", "", "Map name (sim mode)")
	fs.StringVar(&opts.putMode, "mode", "any", "Update mode for put: any, noexist or exist")
	fs.StringVar(&opts.listen, "listen", ":9476", "Listen address for watch")
	fs.DurationVar(&opts.interval, "interval", 10*time.Second, "Refresh interval for watch")
	fs.StringVar(&opts.kind, "kind", "hash", "Map kind for create")
	fs.UintVar(&opts.keySize, "key-size", 4, "Key size in bytes for create")
	fs.UintVar(&opts.valueSize, "value-size", 4, "Value size in bytes for create")
	fs.UintVar(&opts.maxEntries, "entries", 1024, "Capacity for create")
	logLevel := fs.String("log", "info", "Log level: debug, info, warn or error")
	logFormat := fs.String("log-format", "text", "Log format: text or json")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	opts.log = logging.New(logging.Config{Level: *logLevel, Format: *logFormat})

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	if err := dispatch(cmd, rest, &opts); err != nil {
		opts.log.Error("Command failed", "command", cmd, "error", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps error kinds to stable process exit codes.
func exitCode(err error) int {
	switch apperrors.GetKind(err) {
	case apperrors.KindValidation:
		return 2
	case apperrors.KindNotFound:
		return 3
	case apperrors.KindPermission, apperrors.KindBorrow:
		return 4
	case apperrors.KindSyscall:
		return 5
	case apperrors.KindUnavailable:
		return 6
	default:
		return 1
	}
}

func dispatch(cmd string, args []string, opts *options) error {
	switch cmd {
	case "create":
		return runCreate(opts)
	case "watch":
		return runWatch(opts)
	case "info", "get", "put", "del", "keys", "dump":
		return runMapCommand(cmd, args, opts)
	default:
		return apperrors.Errorf(apperrors.KindValidation, "unknown command %q", cmd)
	}
}

// openShared resolves the target map as a shared handle plus its definition.
func openShared(opts *options) (*maps.Shared, func(), error) {
	if opts.sim {
		if opts.manifest == "" {
			return nil, nil, apperrors.New(apperrors.KindValidation, "sim mode needs -manifest")
		}
		if opts.mapName == "" {
			return nil, nil, apperrors.New(apperrors.KindValidation, "sim mode needs -map")
		}
		man, err := loader.LoadManifest(opts.manifest)
		if err != nil {
			return nil, nil, err
		}
		coll, err := man.CreateSim(sys.NewSimGateway(), nil)
		if err != nil {
			return nil, nil, err
		}
		s, err := coll.Shared(opts.mapName)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}

	if opts.pin == "" {
		return nil, nil, apperrors.New(apperrors.KindValidation, "need -pin (or -sim with -manifest)")
	}
	km, err := loader.OpenPinned(opts.pin, sys.Native(), opts.log)
	if err != nil {
		return nil, nil, err
	}
	return maps.Share(km.Map()), func() { km.Close() }, nil
}

func runMapCommand(cmd string, args []string, opts *options) error {
	shared, closeMap, err := openShared(opts)
	if err != nil {
		return err
	}
	defer closeMap()

	def := shared.Definition()

	if cmd == "info" {
		n := -1
		if ref, err := shared.Borrow(); err == nil {
			if c, err := maps.Count(ref); err == nil {
				n = c
			}
			ref.Close()
		}
		fmt.Printf("name=%s kind=%s key_size=%d value_size=%d max_entries=%d flags=%d entries=%d\n",
			shared.Name(), def.Kind, def.KeySize, def.ValueSize, def.MaxEntries, def.Flags, n)
		return nil
	}

	mutating := cmd == "put" || cmd == "del"

	var access maps.Access
	var release func() error
	if mutating {
		ref, err := shared.BorrowMut()
		if err != nil {
			return err
		}
		access, release = ref, ref.Close
	} else {
		ref, err := shared.Borrow()
		if err != nil {
			return err
		}
		access, release = ref, ref.Close
	}
	defer release()

	tm, err := openTyped(access, def)
	if err != nil {
		return err
	}

	switch cmd {
	case "get":
		if len(args) != 1 {
			return apperrors.New(apperrors.KindValidation, "get needs exactly one key")
		}
		v, ok, err := tm.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("key %s: no entry\n", args[0])
			return nil
		}
		fmt.Println(v)
	case "put":
		if len(args) != 2 {
			return apperrors.New(apperrors.KindValidation, "put needs a key and a value")
		}
		flags, err := updateFlags(opts.putMode)
		if err != nil {
			return err
		}
		return tm.Put(args[0], args[1], flags)
	case "del":
		if len(args) != 1 {
			return apperrors.New(apperrors.KindValidation, "del needs exactly one key")
		}
		return tm.Del(args[0])
	case "keys":
		keys, err := tm.Keys()
		for _, k := range keys {
			fmt.Println(k)
		}
		return err
	case "dump":
		entries, err := tm.Dump()
		for _, e := range entries {
			fmt.Printf("%s\t%s\n", e[0], e[1])
		}
		return err
	}
	return nil
}

func updateFlags(mode string) (uint64, error) {
	switch mode {
	case "any":
		return maps.UpdateAny, nil
	case "noexist":
		return maps.UpdateNoExist, nil
	case "exist":
		return maps.UpdateExist, nil
	default:
		return 0, apperrors.Errorf(apperrors.KindValidation, "unknown update mode %q", mode)
	}
}

func runCreate(opts *options) error {
	if opts.sim {
		return apperrors.New(apperrors.KindValidation, "create only targets a real kernel; sim maps come from the manifest")
	}
	if opts.mapName == "" {
		return apperrors.New(apperrors.KindValidation, "create needs -map")
	}
	kind, err := loader.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	def := maps.Definition{
		Kind:       kind,
		KeySize:    uint32(opts.keySize),
		ValueSize:  uint32(opts.valueSize),
		MaxEntries: uint32(opts.maxEntries),
	}
	km, err := loader.CreateMap(opts.mapName, def, sys.Native(), opts.log)
	if err != nil {
		return err
	}
	defer km.Close()

	if opts.pin != "" {
		if err := km.Pin(opts.pin); err != nil {
			return err
		}
		opts.log.Info("Pinned map", "name", opts.mapName, "path", opts.pin)
		return nil
	}
	opts.log.Warn("Map not pinned; it disappears with this process", "name", opts.mapName)
	return nil
}
