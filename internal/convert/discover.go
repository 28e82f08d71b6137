package convert

import (
	"io/fs"
	"path/filepath"
	"sort"
)

// requiredFiles lists the files a directory must contain (case-sensitively,
// matching the original reader) to be treated as one NAVTEQ/HERE tile
// worth converting. Adminbndy[1-5].shp, WaterSeg.shp,
// WaterPoly.shp, LandUseA.shp, LandUseB.shp, CndMod.dbf and MtdCntryRef.dbf
// are optional and never gate discovery.
var requiredFiles = []string{
	"Streets.shp",
	"MtdArea.dbf",
	"Rdms.dbf",
	"Cdms.dbf",
	"Zlevels.dbf",
	"MajHwys.dbf",
	"SecHwys.dbf",
	"NamedPlc.dbf",
	"AltStreets.dbf",
}

// DiscoverDirectories walks every root recursively and returns every
// directory that carries the full required file set, sorted for
// deterministic run order. A root that is itself a convertible directory is
// included; a directory missing even one required file is skipped (but its
// subdirectories are still visited, since NAVTEQ deliveries commonly nest
// one tile's directory inside another directory of unrelated metadata).
func DiscoverDirectories(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			ok, err := hasRequiredFiles(path)
			if err != nil {
				return err
			}
			if ok && !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, newErr(KindMalformedInput, root, 0, "directory discovery: %v", err)
		}
	}
	sort.Strings(out)
	return out, nil
}

func hasRequiredFiles(dir string) (bool, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return false, err
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[filepath.Base(e)] = true
	}
	for _, name := range requiredFiles {
		if !present[name] {
			return false, nil
		}
	}
	return true, nil
}
