package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/beeclock/internal/compiler"
)

// LoadResult contains the clock definitions loaded from a directory.
type LoadResult struct {
	Definitions []*compiler.Definition
	CUEValue    cue.Value // The raw CUE value for additional processing
	FileCount   int       // Number of CUE files found
}

// LoadError represents an error that occurred during definition loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeCompile     = "E101" // Clock definition compile error
	ErrCodeInvalid     = "E102" // Clock configuration rejected by the kernel
)

// LoadDefinitions loads all clock definitions from the CUE files under
// dir. Definitions live under the top-level "clock" struct, one field
// per clock. Stops on the first compile error.
func LoadDefinitions(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definitions directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	clocksVal := value.LookupPath(cue.ParsePath("clock"))
	if clocksVal.Exists() {
		iter, iterErr := clocksVal.Fields()
		if iterErr != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating clocks: %v", iterErr)}
		}
		for iter.Next() {
			def, compileErr := compiler.CompileClock(iter.Value())
			if compileErr != nil {
				return nil, convertCompileError(compileErr, "clock."+iter.Label())
			}
			result.Definitions = append(result.Definitions, def)
		}
	}

	if len(result.Definitions) == 0 {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no clock definitions found"}
	}

	return result, nil
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

// findDefinition selects a definition by name, or the only one when
// name is empty.
func findDefinition(result *LoadResult, name string) (*compiler.Definition, error) {
	if name == "" {
		if len(result.Definitions) == 1 {
			return result.Definitions[0], nil
		}
		names := make([]string, len(result.Definitions))
		for i, def := range result.Definitions {
			names[i] = def.Name
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("multiple clocks defined %v, select one with --clock", names)}
	}

	for _, def := range result.Definitions {
		if def.Name == name {
			return def, nil
		}
	}
	return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no clock named %q", name)}
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	if compileErr, ok := err.(*compiler.CompileError); ok {
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
