// cmd/tools/eligibility-check/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"exam-eligibility/internal/eligibility"
	"exam-eligibility/pkg/registry"
)

func main() {
	examCmd := flag.NewFlagSet("exam", flag.ExitOnError)
	scanCmd := flag.NewFlagSet("scan", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	examProfile := examCmd.String("profile", "", "Path to the candidate profile JSON")
	examFile := examCmd.String("exam", "", "Path to the exam record JSON")

	scanProfile := scanCmd.String("profile", "", "Path to the candidate profile JSON")
	scanDir := scanCmd.String("dir", "", "Directory of exam record JSON files, one exam per file")
	concurrency := scanCmd.Int("concurrency", 1, "Exams evaluated in parallel")

	registryPath := validateCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "exam":
		examCmd.Parse(os.Args[2:])
		if *examProfile == "" || *examFile == "" {
			fmt.Println("Error: profile and exam are required for exam.")
			examCmd.Usage()
			os.Exit(1)
		}
		err = runExam(*examProfile, *examFile, os.Stdout)

	case "scan":
		scanCmd.Parse(os.Args[2:])
		if *scanProfile == "" || *scanDir == "" {
			fmt.Println("Error: profile and dir are required for scan.")
			scanCmd.Usage()
			os.Exit(1)
		}
		err = runScan(context.Background(), *scanProfile, *scanDir, *concurrency, os.Stdout, os.Stderr)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err = runValidate(*registryPath, os.Stdout)

	case "help":
		fallthrough
	default:
		help()
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadProfile(path string) (eligibility.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profile eligibility.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}

// examCode derives an exam code from a record file name.
func examCode(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func runExam(profilePath, examPath string, w io.Writer) error {
	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(examPath)
	if err != nil {
		return err
	}

	evaluator := eligibility.NewEvaluator()
	record, err := evaluator.Parse(data)
	if err != nil {
		return fmt.Errorf("parse exam %s: %w", examPath, err)
	}

	code := examCode(examPath)
	verdicts := evaluator.Evaluate(profile, record)
	for i := range verdicts {
		verdicts[i].ExamCode = code
		verdicts[i].ExamLabel = record.Label()
	}
	return writeJSON(w, eligibility.Outcome(code, verdicts))
}

func runScan(ctx context.Context, profilePath, dir string, concurrency int, w, progress io.Writer) error {
	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	corpus := make([]eligibility.ExamSource, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		corpus = append(corpus, eligibility.ExamSource{Code: examCode(p), Data: data})
	}

	evaluator := eligibility.NewEvaluator(eligibility.WithConcurrency(concurrency))
	result, err := evaluator.EvaluateAll(ctx, profile, corpus, func(name string, current, total int) {
		fmt.Fprintf(progress, "[%d/%d] %s\n", current, total, name)
	})
	if err != nil {
		return err
	}

	return writeJSON(w, struct {
		*eligibility.BatchResult
		Summaries []eligibility.ExamSummary `json:"summaries"`
	}{result, result.Summaries()})
}

func runValidate(path string, w io.Writer) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(w, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func help() {
	fmt.Print(`
Usage: eligibility-check <command> [flags]

Commands:
  exam      Evaluate a profile against one exam record
  scan      Evaluate a profile against every exam record in a directory
  validate  Validate the activity registry file
  help      Show this help message

Examples:
  eligibility-check exam -profile profile.json -exam exams/NDA.json
  eligibility-check scan -profile profile.json -dir exams -concurrency 4
  eligibility-check validate -path configs/activity-registry.json

Use 'eligibility-check <command> -h' for more information about a command.
` + "\n")
}
