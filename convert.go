package pbr

import (
	"path/filepath"
	"strings"

	"github.com/kpango/glg"
	"github.com/pkg/errors"
)

// Policy decides what happens to the batch when a texture set fails.
type Policy int

// Possible failure policies.
const (
	// SkipFailedSets reports a failing set and continues with the next one.
	SkipFailedSets = Policy(iota)
	// AbortOnFailure stops the batch at the first failing set.
	AbortOnFailure
)

func (p Policy) String() string {
	if p == AbortOnFailure {
		return "abort"
	}
	return "skip"
}

// Default directory names relative to the working directory.
const (
	DefaultInputDir  = "TGA_Result"
	DefaultResultDir = "PBR_Result"
)

// Options configures a conversion batch.
type Options struct {
	// InputDir is scanned for input textures. Outputs are written next to
	// the inputs.
	InputDir string
	// ResultDir receives the outputs once every set has been processed. If
	// empty, outputs are left in InputDir.
	ResultDir string
	// Formats to write each output in. Defaults to AllFormats.
	Formats []Format
	// Assignment is the channel mapping table. Defaults to Baseline.
	Assignment Assignment
	Policy     Policy
	// StopOnSaveError makes a set fail at its first save error instead of
	// attempting the remaining formats.
	StopOnSaveError bool
	// Observer, if set, is called after each set has been processed.
	Observer func(SetResult)
}

func (o *Options) setDefaults() {
	if o.InputDir == "" {
		o.InputDir = "."
	}
	if len(o.Formats) == 0 {
		o.Formats = AllFormats
	}
	if o.Assignment.Name == "" {
		o.Assignment = Baseline
	}
}

// SetResult is the outcome of converting one texture set.
type SetResult struct {
	Index    int
	BaseName string
	Inputs   [NumRoles]string
	Outputs  []string
	Err      error
}

// Report summarizes a conversion batch.
type Report struct {
	Sets  []SetResult
	Moved []string
}

// Failed returns the number of sets that failed.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Sets {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Outputs returns every output file written, in set order.
func (r *Report) Outputs() []string {
	var paths []string
	for _, s := range r.Sets {
		paths = append(paths, s.Outputs...)
	}
	return paths
}

// Convert runs a conversion batch. Sets are processed one at a time in
// file name order. The returned error is non-nil when the batch could not
// start (see KindMissingRoleSet) or when a set failed under the
// AbortOnFailure policy; failures of individual sets are otherwise only
// recorded in the report.
func Convert(opts Options) (*Report, error) {
	opts.setDefaults()
	if err := opts.Assignment.Validate(); err != nil {
		return nil, err
	}

	codec := NewCodec()
	defer codec.Close()

	report := new(Report)

	disc, err := Discover(opts.InputDir)
	if err != nil {
		glg.Errorf("Filesystem error: %v", err)
	}

	glg.Infof("Found %d nohq, %d smdi, %d as, %d co textures in %s",
		disc.Count(RoleNOHQ), disc.Count(RoleSMDI), disc.Count(RoleAS),
		disc.Count(RoleCO), opts.InputDir)

	sets, err := disc.Resolve()
	if err != nil {
		return report, err
	}

	writer := &Writer{
		Codec:   codec,
		Dir:     opts.InputDir,
		Formats: opts.Formats,
		Robust:  !opts.StopOnSaveError,
	}

	var batchErr error
	for _, set := range sets {
		result := convertSet(codec, writer, opts.Assignment, set)
		report.Sets = append(report.Sets, result)

		if opts.Observer != nil {
			opts.Observer(result)
		}

		if result.Err != nil {
			glg.Errorf("Failed to convert %s: %v", set.BaseName, result.Err)
			if opts.Policy == AbortOnFailure {
				batchErr = errors.Wrapf(result.Err, "set %s", set.BaseName)
				break
			}
			continue
		}

		names := make([]string, len(result.Outputs))
		for i, path := range result.Outputs {
			names[i] = filepath.Base(path)
		}
		glg.Infof("NMO and BCR textures created successfully: %s", strings.Join(names, ", "))
	}

	if opts.ResultDir != "" && len(report.Outputs()) > 0 {
		report.Moved, err = MoveResults(report.Outputs(), opts.ResultDir)
		if err == nil {
			glg.Infof("NMO and BCR textures moved to %s successfully", opts.ResultDir)
		}
	}

	return report, batchErr
}

func convertSet(codec *Codec, writer *Writer, table Assignment, paths SetPaths) SetResult {
	result := SetResult{
		Index:    paths.Index,
		BaseName: paths.BaseName,
		Inputs:   paths.Paths,
	}

	if paths.Conflict != "" {
		result.Err = newErrorf(KindImageSave, paths.Paths[RoleNOHQ],
			"outputs %s%s would overwrite those of %s", paths.BaseName, SuffixNMO, paths.Conflict)
		return result
	}

	set, err := LoadSet(codec, paths)
	defer set.Release()
	if err != nil {
		result.Err = err
		return result
	}

	nmo, bcr, err := Composite(*set, table)
	if err != nil {
		result.Err = err
		return result
	}

	result.Outputs, result.Err = writer.Write(paths.BaseName, nmo, bcr)
	return result
}

// LoadSet loads the textures of paths. The nohq texture keeps its size and
// every other texture is normalized to it. On error the textures loaded so
// far are still returned so they can be released.
func LoadSet(codec *Codec, paths SetPaths) (*TextureSet, error) {
	set := &TextureSet{BaseName: paths.BaseName}

	ref, err := codec.Load(paths.Paths[RoleNOHQ])
	if err != nil {
		return set, err
	}

	width, height := ref.Bounds().Dx(), ref.Bounds().Dy()
	set.Textures[RoleNOHQ] = Normalize(ref, width, height)

	for _, role := range Roles[1:] {
		set.Textures[role], err = codec.LoadTexture(paths.Paths[role], width, height)
		if err != nil {
			return set, err
		}
	}

	return set, nil
}

// Release drops the textures held by the set.
func (s *TextureSet) Release() {
	for i := range s.Textures {
		s.Textures[i] = nil
	}
}
