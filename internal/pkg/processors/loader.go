package processors

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	cp "github.com/otiai10/copy"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
	"tern-compiler/internal/pkg/common"
)

// LoadedPackage is a package whose manifest and sources were resolved and
// parsed.
type LoadedPackage struct {
	Manifest     *Manifest
	Dir          string
	Dependencies []ast.PackageIdentifier
	Program      *parsed.Program
}

// LoadPackage resolves url as a local directory, then as a cache entry,
// then clones it. Dependencies load recursively; a package already in
// loadedPackages is reused.
func LoadPackage(
	url, cacheDir, baseDir string, upgrade bool,
	loadedPackages map[ast.PackageIdentifier]*LoadedPackage,
	log *common.LogWriter,
) (*LoadedPackage, error) {
	absPath := filepath.Clean(url)
	if baseDir != "" {
		absPath = filepath.Clean(filepath.Join(baseDir, url))
	}
	loaded, err := loadPackageWithPath(url, absPath, cacheDir, upgrade, loadedPackages, log)
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		return loaded, nil
	}

	absPath = filepath.Clean(filepath.Join(cacheDir, url))
	loaded, err = loadPackageWithPath(url, absPath, cacheDir, upgrade, loadedPackages, log)
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		if upgrade {
			if err := upgradePackage(url, absPath, log); err != nil {
				return nil, err
			}
		}
		return loaded, nil
	}

	log.Trace("loader", fmt.Sprintf("downloading package `%s`", url))
	w := bytes.NewBufferString("")
	_, err = git.PlainClone(absPath, false, &git.CloneOptions{
		URL:      fmt.Sprintf("https://%s", url),
		Progress: w,
	})
	if err != nil {
		return nil, common.NewSystemError(fmt.Errorf("%s\n%w", w.String(), err))
	}
	log.Trace("loader", fmt.Sprintf("package `%s` downloaded", url))

	loaded, err = loadPackageWithPath(url, absPath, cacheDir, upgrade, loadedPackages, log)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, common.NewSystemError(fmt.Errorf("package `%s` has no %s", url, ManifestFileName))
	}
	return loaded, nil
}

func upgradePackage(url, absPath string, log *common.LogWriter) error {
	r, err := git.PlainOpen(absPath)
	if err != nil {
		return nil
	}
	worktree, err := r.Worktree()
	if err != nil {
		return common.NewSystemError(fmt.Errorf("failed to update package `%s`\n%w", url, err))
	}
	w := bytes.NewBufferString("")
	err = worktree.Pull(&git.PullOptions{Progress: w})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return common.NewSystemError(fmt.Errorf("failed to update package `%s`\n%s\n%w", url, w.String(), err))
	}
	log.Trace("loader", fmt.Sprintf("package `%s` up to date", url))
	return nil
}

func loadPackageWithPath(
	url, absPath, cacheDir string, upgrade bool,
	loadedPackages map[ast.PackageIdentifier]*LoadedPackage,
	log *common.LogWriter,
) (*LoadedPackage, error) {
	manifest, err := ReadManifest(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	id := ast.PackageIdentifier(manifest.Name)
	if loaded, ok := loadedPackages[id]; ok {
		return loaded, nil
	}

	pkg := &LoadedPackage{Manifest: manifest, Dir: absPath}
	loadedPackages[id] = pkg

	for _, dep := range manifest.Dependencies {
		depPkg, err := LoadPackage(dep, cacheDir, absPath, upgrade, loadedPackages, log)
		if err != nil {
			return nil, err
		}
		pkg.Dependencies = append(pkg.Dependencies, ast.PackageIdentifier(depPkg.Manifest.Name))
	}

	program := &parsed.Program{}
	for _, rel := range manifest.Sources {
		parsedFile, errs := Parse(filepath.Join(absPath, rel))
		if len(errs) > 0 {
			return nil, errs[0]
		}
		program.Statements = append(program.Statements, parsedFile.Statements...)
	}
	pkg.Program = program
	log.Trace("loader", fmt.Sprintf("package `%s` loaded (%d statements)", manifest.Name, len(program.Statements)))
	return pkg, nil
}

// BuildProgram concatenates the statements of root and its dependencies,
// dependencies first, each package once.
func BuildProgram(root *LoadedPackage, loadedPackages map[ast.PackageIdentifier]*LoadedPackage) *parsed.Program {
	program := &parsed.Program{}
	visited := map[ast.PackageIdentifier]bool{}
	var visit func(pkg *LoadedPackage)
	visit = func(pkg *LoadedPackage) {
		id := ast.PackageIdentifier(pkg.Manifest.Name)
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range pkg.Dependencies {
			if depPkg, ok := loadedPackages[dep]; ok {
				visit(depPkg)
			}
		}
		program.Statements = append(program.Statements, pkg.Program.Statements...)
	}
	visit(root)
	return program
}

// VendorPackage copies a resolved package's directory into outDir. Files
// whose name starts with `!` are build-local and never vendored.
func VendorPackage(pkg *LoadedPackage, outDir string) error {
	dest := filepath.Join(outDir, pkg.Manifest.Name)
	err := cp.Copy(pkg.Dir, dest, cp.Options{
		Skip: func(info os.FileInfo, src, dest string) (bool, error) {
			_, fName := filepath.Split(src)
			return strings.HasPrefix(fName, "!"), nil
		},
	})
	if err != nil {
		return common.NewSystemError(fmt.Errorf("failed to vendor package `%s`:\n%w", pkg.Manifest.Name, err))
	}
	return nil
}
