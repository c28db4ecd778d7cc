// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/lemurs/config"
	"github.com/ezrec/lemurs/cpu"
	"github.com/ezrec/lemurs/emulator"
	lio "github.com/ezrec/lemurs/io"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [flags] [path|-] [--assemble]\n", os.Args[0])
	flag.PrintDefaults()
}

// badUsage reports a malformed command line, and exits with status 2.
func badUsage(format string, args ...any) {
	fmt.Fprintf(flag.CommandLine.Output(), "%v: %v\n", os.Args[0], fmt.Sprintf(format, args...))
	flag.Usage()
	os.Exit(2)
}

// randomProgram returns length random bytes.
func randomProgram(length int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x6c656d757273))

	program := make([]byte, length)
	for n := range program {
		program[n] = byte(rng.Uint32())
	}

	return program
}

func main() {
	var assemble bool
	var save bool
	var listing bool
	var output string
	var pipe string
	var steps int
	var stepLimit int
	var outputLimit int
	var preview int
	var length int
	var seed uint64
	var verbose bool
	var force bool
	var configPath string

	flag.Usage = usage
	flag.BoolVar(&assemble, "a", false, "Source is assembly text")
	flag.BoolVar(&save, "s", false, "Write the binary to the output, do not execute")
	flag.BoolVar(&listing, "l", false, "Print a program listing to stderr, do not execute")
	flag.StringVar(&output, "o", "-", "Output file")
	flag.StringVar(&pipe, "pipe", "", "Stream output into a command, ie \"aplay -c2 -r64\"")
	flag.IntVar(&steps, "n", emulator.STEPS_PER_TICK, "Instructions per batch")
	flag.IntVar(&stepLimit, "steps", 0, "Total instruction limit, 0 for none")
	flag.IntVar(&outputLimit, "limit", 0, "Output byte limit, 0 for none")
	flag.IntVar(&preview, "preview", 0, "Emit a fixed length, zero padded preview of this many bytes")
	flag.IntVar(&length, "length", config.RANDOM_LENGTH, "Random program length")
	flag.Uint64Var(&seed, "seed", 0, "Random program seed, 0 for time based")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&force, "f", false, "Allow raw output to a terminal")
	flag.StringVar(&configPath, "config", "", "lemurs.toml configuration file")

	flag.Parse()

	args := flag.Args()
	if len(args) == 2 && args[1] == "--assemble" {
		assemble = true
		args = args[:1]
	}
	if len(args) > 1 {
		badUsage("unknown arguments: %v", args[1:])
	}

	conf := config.Default()
	if len(configPath) != 0 {
		var err error
		conf, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("%v: %v", configPath, err)
		}
	}

	// Flags given on the command line override the configuration file.
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "o":
			conf.Output.Path = output
		case "pipe":
			conf.Output.Pipe = pipe
		case "preview":
			conf.Output.Preview = preview
		case "n":
			conf.Machine.StepsPerTick = steps
		case "steps":
			conf.Machine.StepLimit = stepLimit
		case "limit":
			conf.Machine.OutputLimit = outputLimit
		case "length":
			conf.Random.Length = length
		case "seed":
			conf.Random.Seed = seed
		}
	})

	switch {
	case conf.Machine.StepsPerTick <= 0:
		badUsage("-n must be positive")
	case conf.Machine.StepLimit < 0 || conf.Machine.OutputLimit < 0 || conf.Output.Preview < 0:
		badUsage("limits must not be negative")
	case assemble && len(args) == 0:
		badUsage("-a needs a source path")
	case len(args) == 0 && conf.Random.Length <= 0:
		badUsage("-length must be positive")
	case save && listing:
		badUsage("-s and -l are exclusive")
	case len(conf.Output.Pipe) != 0 && conf.Output.Path != "-":
		badUsage("-pipe and -o are exclusive")
	}

	// Load the source.
	var source []byte
	var path string
	switch {
	case len(args) == 0:
		path = "random"
		if conf.Random.Seed == 0 {
			conf.Random.Seed = uint64(time.Now().UnixNano())
		}
		if verbose {
			log.Printf("random: %d bytes, seed %d", conf.Random.Length, conf.Random.Seed)
		}
		source = randomProgram(conf.Random.Length, conf.Random.Seed)
	case args[0] == "-":
		path = "stdin"
		var buf bytes.Buffer
		_, err := buf.ReadFrom(os.Stdin)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		source = buf.Bytes()
	default:
		path = args[0]
		var err error
		source, err = os.ReadFile(path)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	}

	var prog *cpu.Program
	if assemble {
		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emulator.Defines() {
			asm.Predefine(key, value)
		}
		var err error
		prog, err = asm.Parse(bytes.NewReader(source))
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	} else {
		prog = cpu.Disassemble(source)
	}

	if listing {
		err := prog.Listing(os.Stderr)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		return
	}

	// Open the output.
	tape := &lio.Tape{}
	if len(conf.Output.Pipe) != 0 {
		player := &lio.Pipe{Verbose: verbose, Command: conf.PipeCommand()}
		err := player.Open()
		if err != nil {
			log.Fatalf("%v: %v", conf.Output.Pipe, err)
		}
		defer player.Close()
		tape.Output = player
	} else if conf.Output.Path == "-" {
		if !force && term.IsTerminal(int(os.Stdout.Fd())) {
			log.Fatalf("%v: refusing to write raw output to a terminal, use -f", os.Args[0])
		}
		tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(conf.Output.Path)
		if err != nil {
			log.Fatalf("%v: %v", conf.Output.Path, err)
		}
		defer ouf.Close()
		tape.Output = ouf
	}

	if save {
		_, err := tape.Write(prog.Binary())
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		return
	}

	emu, err := emulator.NewEmulator(prog)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
	emu.Verbose = verbose
	emu.StepsPerTick = conf.Machine.StepsPerTick
	emu.StepLimit = conf.Machine.StepLimit
	emu.OutputLimit = conf.Machine.OutputLimit
	emu.Tape.Output = tape

	if conf.Output.Preview > 0 {
		data, err := emu.Preview(conf.Output.Preview, emulator.PREVIEW_TICKS)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		_, err = tape.Write(data)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%v: %v", path, err)
	}

	if verbose {
		log.Printf("%v: %d steps, %d bytes: %v", path, emu.Cpu.Ticks, emu.Tape.Written,
			strings.TrimSpace(emu.Cpu.String()))
	}
}
