package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const SourceFileExt = ".bob"

// SourceFileExtensions are all recognized source file extensions, tried in
// order when a script is named without one.
var SourceFileExtensions = []string{SourceFileExt, ".bb"}

// SettingsFile is the optional per-project settings file looked up in the
// working directory.
const SettingsFile = "bob.yaml"

// Built-in function names
const (
	PrintFuncName      = "print"
	LenFuncName        = "len"
	InputFuncName      = "input"
	PushFuncName       = "push"
	PopFuncName        = "pop"
	SleepFuncName      = "sleep"
	TimeFuncName       = "time"
	RandomFuncName     = "random"
	ThreadIDFuncName   = "thread_id"
	NumThreadsFuncName = "num_threads"
)

// Defaults for the parallel-loop subsystem. Loops with fewer iterations than
// the threshold run sequentially; the worker cap of 0 means one per CPU.
const (
	DefaultParallelThreshold = 50
	DefaultMaxWorkers        = 0
)

const DefaultPrompt = ">>> "

type ParallelSettings struct {
	Threshold  int `yaml:"threshold"`
	MaxWorkers int `yaml:"max_workers"`
}

type ReplSettings struct {
	Prompt string `yaml:"prompt"`
}

type Settings struct {
	Parallel ParallelSettings `yaml:"parallel"`
	Repl     ReplSettings     `yaml:"repl"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Parallel: ParallelSettings{
			Threshold:  DefaultParallelThreshold,
			MaxWorkers: DefaultMaxWorkers,
		},
		Repl: ReplSettings{
			Prompt: DefaultPrompt,
		},
	}
}

// Load reads settings from path. A missing file yields the defaults; a file
// that exists but does not parse is an error.
func Load(path string) (*Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if settings.Parallel.Threshold < 1 {
		settings.Parallel.Threshold = 1
	}
	if settings.Repl.Prompt == "" {
		settings.Repl.Prompt = DefaultPrompt
	}
	return settings, nil
}
