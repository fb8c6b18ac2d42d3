package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/limaJavier/timegrid/internal/csvio"
	"github.com/limaJavier/timegrid/pkg/model"
)

const MB float32 = 1024

type ResultType int

const (
	complete ResultType = iota
	incomplete
	violated
)

var resultTypes = map[ResultType]string{
	complete:   "complete",
	incomplete: "incomplete",
	violated:   "violated",
}

// Exit codes of the generate command with status codes enabled
var exitCodes = map[int]ResultType{
	10: complete,
	20: incomplete,
	15: violated,
}

type BenchmarkResult struct {
	Seed          uint64  `csv:"Seed"`
	Courses       int     `csv:"Courses"`
	Rooms         int     `csv:"Rooms"`
	Duration      int64   `csv:"Duration(ms)"`
	Memory        float32 `csv:"Memory(MB)"`
	CpuPercentage int64   `csv:"CPU(%)"`
	Result        string  `csv:"Result"`
	FullyRate     float32 `csv:"Fully Scheduled(%)"`
	Conflicts     int     `csv:"Conflicts"`
}

// Paths are relative to the working directory, the defaults fit a run from the repository root
type options struct {
	executable string
	courses    string
	rooms      string
	out        string
	results    string
	seeds      uint64
}

func main() {
	if err := benchmarkCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func benchmarkCommand() *cobra.Command {
	opts := options{}
	command := &cobra.Command{
		Use:   "benchmark",
		Short: "Run timegrid over a range of seeds and collect the figures of every run",
		Run: func(cmd *cobra.Command, args []string) {
			run(opts)
		},
	}

	command.Flags().StringVar(&opts.executable, "executable", "bin/timegrid", "timegrid executable to benchmark")
	command.Flags().StringVar(&opts.courses, "courses", "data/courses.csv", "Course table (CSV)")
	command.Flags().StringVar(&opts.rooms, "rooms", "data/classrooms.csv", "Classroom table (CSV)")
	command.Flags().StringVar(&opts.out, "out", "out/benchmark", "Directory receiving the reports of every run")
	command.Flags().StringVar(&opts.results, "results", "benchmark_results.csv", "Benchmark results file")
	command.Flags().Uint64Var(&opts.seeds, "seeds", 20, "Seeds 1 through this value are benchmarked")
	return command
}

func run(opts options) {
	input, err := csvio.LoadInput(opts.courses, opts.rooms, ',', model.DefaultPolicy())
	if err != nil {
		log.Fatalf("cannot load benchmark input: %v", err)
	}

	results := make([]*BenchmarkResult, 0, opts.seeds)
	for seed := uint64(1); seed <= opts.seeds; seed++ {
		fmt.Printf("Benchmarking seed \"%v\"\n", seed)

		directory := filepath.Join(opts.out, fmt.Sprint(seed))
		duration, maxMemory, cpuPercentage, result := measure(opts, seed, directory)
		fullyRate, conflicts := readReports(directory)

		results = append(results, &BenchmarkResult{
			Seed:          seed,
			Courses:       len(input.Courses),
			Rooms:         len(input.Rooms),
			Duration:      duration,
			Memory:        maxMemory,
			CpuPercentage: cpuPercentage,
			Result:        resultTypes[result],
			FullyRate:     fullyRate,
			Conflicts:     conflicts,
		})
	}

	toCsv(opts.results, results)
}

func measure(opts options, seed uint64, directory string) (duration int64, maxMemory float32, cpuPercentage int64, result ResultType) {
	cmd := exec.Command("/usr/bin/time", "-v", opts.executable, "generate",
		"--courses", opts.courses,
		"--rooms", opts.rooms,
		"--seed", fmt.Sprint(seed),
		"--out", directory,
		"--status-codes",
	)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	result, ok := exitCodes[cmd.ProcessState.ExitCode()]
	if !ok {
		log.Fatalf("an error occurred during the execution of \"timegrid\" with seed \"%v\": %v\n", seed, stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage, result
}

// readReports extracts the fill rate and the conflict count from the reports written by a run
func readReports(directory string) (fullyRate float32, conflicts int) {
	summary := []*csvio.SummaryRow{}
	if err := unmarshalFile(filepath.Join(directory, "summary.csv"), &summary); err != nil {
		log.Fatalf("cannot read summary: %v", err)
	}
	conflictRows := []*csvio.ConflictRow{}
	if err := unmarshalFile(filepath.Join(directory, "conflicts.csv"), &conflictRows); err != nil {
		log.Fatalf("cannot read conflicts: %v", err)
	}

	if len(summary) > 0 {
		fully := lo.CountBy(summary, func(row *csvio.SummaryRow) bool { return row.Status == model.FullyScheduled.String() })
		fullyRate = 100 * float32(fully) / float32(len(summary))
	}
	conflicts = len(lo.UniqBy(conflictRows, func(row *csvio.ConflictRow) string {
		return fmt.Sprintf("%d/%v/%v/%v", row.Semester, row.Day, row.Slot, row.Room)
	}))
	return fullyRate, conflicts
}

func unmarshalFile(path string, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gocsv.UnmarshalFile(file, out)
}

func toCsv(path string, results []*BenchmarkResult) {
	file, err := os.Create(path)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&results, file); err != nil {
		log.Panicf("cannot write CSV records: %v", err)
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / MB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
