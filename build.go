//go:build ignore

// build.go - FlowPulse Build System
// Usage: go run build.go [-target=TARGET] [-v] [-goos=OS -goarch=ARCH]
// Targets: all, server, flowreport, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const versionPackage = "flowpulse/pkg/contracts"

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// key = source dir under cmd/, value = output name without extension
	executables = map[string]string{
		"server":     "flowpulse",
		"flowreport": "flowreport",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s, run the build from the repository root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("goos", runtime.GOOS, "Target operating system")
	goarch := flag.String("goarch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	if os.Getenv("NO_COLOR") != "" {
		colorReset, colorRed, colorGreen, colorYellow, colorBlue, colorCyan = "", "", "", "", "", ""
	}

	printHeader()
	startTime := time.Now()

	buildCtx := &BuildContext{
		Verbose: *verbose,
		GOOS:    *goos,
		GOARCH:  *goarch,
	}

	switch *target {
	case "all":
		buildAll(buildCtx)
	case "server", "flowreport":
		buildExecutable(*target, buildCtx)
	case "test":
		runTests(buildCtx.Verbose)
	case "clean":
		clean(buildCtx.Verbose)
	case "release":
		buildRelease(buildCtx)
	default:
		showHelp()
		os.Exit(1)
	}

	duration := time.Since(startTime)
	printSuccess(fmt.Sprintf("Build completed in %s", duration.Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        FlowPulse - Build System           " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func buildAll(ctx *BuildContext) {
	printInfo("Building all components...")
	for _, name := range []string{"server", "flowreport"} {
		buildExecutable(name, ctx)
	}
}

func buildExecutable(name string, ctx *BuildContext) {
	exeName := executables[name]
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}
	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, ctx.GOOS, ctx.GOARCH))

	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create dist directory: %v", err))
		os.Exit(1)
	}

	outputPath := filepath.Join(distDir, exeName)
	ldflags := strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s.BuildTime=%s", versionPackage, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s.GitCommit=%s", versionPackage, gitOutput("rev-parse", "--short", "HEAD")),
		fmt.Sprintf("-X %s.GitBranch=%s", versionPackage, gitOutput("rev-parse", "--abbrev-ref", "HEAD")),
	}, " ")

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-trimpath", "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

// gitOutput returns "unknown" outside a git checkout
func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean(verbose bool) {
	printInfo("Cleaning build artifacts and logs...")

	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
	}

	logs, _ := filepath.Glob(filepath.Join(rootDir, "logs", "*.log"))
	for _, file := range logs {
		if err := os.Remove(file); err != nil {
			printWarning(fmt.Sprintf("Failed to remove %s: %v", file, err))
		} else if verbose {
			fmt.Printf("Removed %s\n", file)
		}
	}

	printSuccess("Build artifacts cleaned")
}

// buildRelease builds static binaries and copies the sample configuration
func buildRelease(ctx *BuildContext) {
	printInfo("Building release version...")
	clean(ctx.Verbose)

	os.Setenv("CGO_ENABLED", "0")
	buildAll(ctx)

	for _, name := range []string{"config.example.yaml", ".env.example"} {
		src := filepath.Join(rootDir, name)
		data, err := os.ReadFile(src)
		if err != nil {
			if ctx.Verbose {
				printWarning(fmt.Sprintf("Skipping %s: %v", name, err))
			}
			continue
		}
		if err := os.WriteFile(filepath.Join(distDir, name), data, 0644); err != nil {
			printError(fmt.Sprintf("Failed to copy %s: %v", name, err))
			os.Exit(1)
		}
	}

	printSuccess("Release build completed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-goos=OS -goarch=ARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all         Build the server and the flowreport CLI (default)")
	fmt.Println("  server      Build the HTTP/websocket server")
	fmt.Println("  flowreport  Build the offline report CLI")
	fmt.Println("  test        Run all Go tests with the race detector")
	fmt.Println("  clean       Remove dist/ and log files")
	fmt.Println("  release     Clean, then build static binaries into dist/")
}
