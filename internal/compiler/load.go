package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/tempo/internal/ir"
)

// LoadDir builds the CUE package in dir and returns its value.
func LoadDir(dir string) (cue.Value, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return cue.Value{}, fmt.Errorf("specs directory: %w", err)
	}
	if !info.IsDir() {
		return cue.Value{}, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, fmt.Errorf("loading CUE files: %w", formatCUEError(inst.Err))
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("building CUE value: %w", formatCUEError(err))
	}
	return value, nil
}

// LoadTimelines compiles and validates every timeline under the
// `timeline:` field of the CUE package in dir. All errors are collected.
func LoadTimelines(dir string) ([]ir.TimelineSpec, []error) {
	value, err := LoadDir(dir)
	if err != nil {
		return nil, []error{err}
	}

	timelines := value.LookupPath(cue.ParsePath("timeline"))
	if !timelines.Exists() {
		return nil, []error{fmt.Errorf("no timeline definitions in %s", dir)}
	}

	specs, errs := CompileTimelines(timelines)
	for _, verr := range Validate(specs) {
		errs = append(errs, verr)
	}
	return specs, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
