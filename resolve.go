package pbr

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoveredFile is an input texture found by Discover.
type DiscoveredFile struct {
	Path   string
	Role   Role
	Format Format
}

// Discovery holds the input files of a directory grouped by role. Each
// list is sorted by file name.
type Discovery struct {
	Dir   string
	Files [NumRoles][]DiscoveredFile
}

// SetPaths is the set of input files combined into one pair of outputs.
type SetPaths struct {
	Index    int
	BaseName string
	Paths    [NumRoles]string
	// Conflict is the nohq path of an earlier set with the same base name,
	// whose outputs this set would overwrite.
	Conflict string
}

// Discover lists dir, without recursing, for input textures. A file is an
// input when its extension is a supported format and its name ends with a
// role suffix right before the extension, both compared case-insensitively.
// If dir cannot be read, the returned discovery is empty and the error is
// of kind KindFilesystem.
func Discover(dir string) (Discovery, error) {
	disc := Discovery{Dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return disc, newError(KindFilesystem, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		file, ok := matchFile(entry.Name())
		if !ok {
			continue
		}

		file.Path = filepath.Join(dir, entry.Name())
		disc.Files[file.Role] = append(disc.Files[file.Role], file)
	}

	for _, files := range disc.Files {
		sort.Slice(files, func(i, j int) bool {
			return files[i].Path < files[j].Path
		})
	}

	return disc, nil
}

func matchFile(name string) (DiscoveredFile, bool) {
	ext := filepath.Ext(name)
	format, ok := FormatFromExt(ext)
	if !ok {
		return DiscoveredFile{}, false
	}

	stem := strings.ToLower(strings.TrimSuffix(name, ext))
	for _, role := range Roles {
		if strings.HasSuffix(stem, role.Suffix()) && len(stem) > len(role.Suffix()) {
			return DiscoveredFile{Role: role, Format: format}, true
		}
	}

	return DiscoveredFile{}, false
}

// Count returns the number of files discovered for role.
func (d Discovery) Count(role Role) int {
	return len(d.Files[role])
}

// Resolve pairs the discovered files into texture sets. One set is built per
// nohq file; the other roles are reused from the start of their list when
// they have fewer files. If any role has no files, no sets are returned and
// the error is of kind KindMissingRoleSet. A set whose base name, compared
// case-insensitively, was already taken by an earlier set has Conflict set.
func (d Discovery) Resolve() ([]SetPaths, error) {
	var missing []string
	for _, role := range Roles {
		if len(d.Files[role]) == 0 {
			missing = append(missing, role.Suffix())
		}
	}

	if len(missing) > 0 {
		return nil, newErrorf(KindMissingRoleSet, d.Dir, "no %s textures found",
			strings.Join(missing, ", "))
	}

	nohq := d.Files[RoleNOHQ]
	sets := make([]SetPaths, len(nohq))
	taken := make(map[string]string)
	for i := range nohq {
		sets[i].Index = i
		sets[i].BaseName = BaseName(nohq[i].Path)

		key := strings.ToLower(sets[i].BaseName)
		if first, ok := taken[key]; ok {
			sets[i].Conflict = first
		} else {
			taken[key] = nohq[i].Path
		}

		for _, role := range Roles {
			files := d.Files[role]
			sets[i].Paths[role] = files[i%len(files)].Path
		}
	}

	return sets, nil
}

// BaseName returns the name outputs of the nohq texture at path are derived
// from: the file name without directory, extension and role suffix. For
// example "textures/rock_01_nohq.tga" gives "rock_01".
func BaseName(path string) string {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	if i := strings.LastIndex(stem, "_"); i > 0 {
		return stem[:i]
	}

	return stem
}
