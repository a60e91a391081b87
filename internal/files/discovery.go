package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReportExt is the extension of flow and quote exports
const ReportExt = ".csv"

// ErrNoReports is returned when a directory holds no report files
var ErrNoReports = errors.New("no report files found")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// FindCSVFiles lists the .csv files of dir sorted by name. Subdirectories
// are not searched.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.FindFilesByPattern(dir, "*")
}

// FindFilesByPattern lists the report files of dir whose names match a glob
// pattern, sorted by name
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ReportExt) {
			continue
		}
		if ok, _ := filepath.Match(pattern, name); !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// FindReports accepts either a single report file or a directory of them.
// A directory without any report yields ErrNoReports.
func (d *Discovery) FindReports(path string) ([]FileInfo, error) {
	fullPath := d.resolve(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open reports: %w", err)
	}

	if !info.IsDir() {
		return []FileInfo{{
			Path:    fullPath,
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}}, nil
	}

	files, err := d.FindCSVFiles(fullPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoReports, fullPath)
	}
	return files, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
