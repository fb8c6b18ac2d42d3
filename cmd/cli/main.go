package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/limaJavier/timegrid/internal/config"
	"github.com/limaJavier/timegrid/internal/csvio"
	"github.com/limaJavier/timegrid/internal/export"
	"github.com/limaJavier/timegrid/internal/logger"
	"github.com/limaJavier/timegrid/internal/metrics"
	"github.com/limaJavier/timegrid/pkg/division"
	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/limaJavier/timegrid/pkg/timetabler"
)

// Exit codes reported by generate when status codes are enabled
const (
	exitComplete   = 10
	exitIncomplete = 20
	exitViolations = 15
)

var (
	coursesFile string
	roomsFile   string
	jsonFile    string
	policyFile  string
	delimiter   string
	seed        uint64
	outDir      string
	pdf         bool
	metricsFile string
	statusCodes bool
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "timegrid",
		Short: "Slot and room allocation for semester timetables",
		Long: `timegrid divides every department's courses into the Pre-Mid and Post-Mid sessions,
places lectures, tutorials and labs on a weekly grid with shared minor, elective and
combined-class blocks, assigns classrooms and lab pairs, and reports room conflicts.`,
	}

	root.PersistentFlags().StringVar(&coursesFile, "courses", "", "Course table (CSV)")
	root.PersistentFlags().StringVar(&roomsFile, "rooms", "", "Classroom table (CSV)")
	root.PersistentFlags().StringVar(&jsonFile, "json", "", "JSON input holding courses and rooms, used instead of the CSV tables")
	root.PersistentFlags().StringVar(&policyFile, "policy", "", "YAML or JSON file overriding the default calendar and department policy")
	root.PersistentFlags().StringVar(&delimiter, "delimiter", "", "CSV field delimiter")

	root.AddCommand(generateCommand(), divideCommand(), validateCommand())
	return root
}

func generateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "generate",
		Short: "Generate every timetable and write the grids, the summary and the conflict report",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(cmd)
			zapLogger := newLogger(cfg)
			defer zapLogger.Sync()

			input := loadInput(cfg)

			started := time.Now()
			engine := timetabler.NewTimetabler(cfg.Calendar, cfg.Policy, cfg.Seed, zapLogger)
			run := engine.Build(input)
			violations := engine.Verify(run)
			elapsed := time.Since(started)

			writeOutputs(cfg, run)
			report(run, violations, elapsed)

			if cfg.Output.MetricsFile != "" {
				recorder := metrics.NewRecorder()
				recorder.ObserveRun(run, len(violations), elapsed)
				if err := recorder.WriteToTextfile(cfg.Output.MetricsFile); err != nil {
					log.Fatalf("cannot write metrics: %v", err)
				}
			}

			if !cfg.Output.StatusCodes {
				return
			}
			switch {
			case len(violations) > 0:
				os.Exit(exitViolations)
			case len(run.Shortfalls) > 0 || len(run.Gaps) > 0 || len(run.Conflicts) > 0:
				os.Exit(exitIncomplete)
			}
			os.Exit(exitComplete)
		},
	}

	command.Flags().Uint64Var(&seed, "seed", 0, "Random seed, 0 draws a fresh one")
	command.Flags().StringVar(&outDir, "out", "", "Output directory")
	command.Flags().BoolVar(&pdf, "pdf", false, "Also render the grids into a PDF timetable book")
	command.Flags().StringVar(&metricsFile, "metrics", "", "Write run metrics in the Prometheus text format to this file")
	command.Flags().BoolVar(&statusCodes, "status-codes", false, "Exit with 10 when complete, 20 when something was left out and 15 when verification fails")
	return command
}

func divideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "divide",
		Short: "Print the Pre-Mid and Post-Mid course lists of every department",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(cmd)
			zapLogger := newLogger(cfg)
			defer zapLogger.Sync()

			input := loadInput(cfg)
			divider := division.NewDivider(model.NewPredicateEvaluator(cfg.Policy), division.NewAlternationRegistry(), zapLogger)

			for _, semester := range input.Semesters() {
				semesterCourses := input.SemesterCourses(semester)
				departments := cfg.Policy.ProcessingOrder(lo.Map(semesterCourses, func(course model.CourseRequirement, _ int) string { return course.Department }))
				for _, department := range departments {
					departmentCourses := lo.Filter(semesterCourses, func(course model.CourseRequirement, _ int) bool { return course.Department == department })
					courseDivision := divider.Divide(semester, department, departmentCourses, semesterCourses)

					fmt.Printf("Semester %d, %v\n", semester, department)
					for _, session := range model.Sessions {
						fmt.Printf("  %v: %v\n", session, model.Codes(courseDivision.Session(session)))
					}
					if len(courseDivision.Missing) > 0 {
						fmt.Printf("  Missing: %v\n", courseDivision.Missing)
					}
				}
			}
		},
	}
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the input tables and the policy without generating anything",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(cmd)
			input := loadInput(cfg)

			for _, warning := range input.Warnings {
				fmt.Printf("WARNING: %v\n", warning)
			}
			fmt.Printf("%d courses over semesters %v, %d rooms, %d warnings\n", len(input.Courses), input.Semesters(), len(input.Rooms), len(input.Warnings))
		},
	}
}

// loadConfig reads the environment configuration and applies the flags that were set explicitly
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}

	flags := cmd.Flags()
	if flags.Changed("courses") {
		cfg.Input.CoursesFile = coursesFile
	}
	if flags.Changed("rooms") {
		cfg.Input.RoomsFile = roomsFile
	}
	if flags.Changed("json") {
		cfg.Input.JsonFile = jsonFile
	}
	if flags.Changed("delimiter") && delimiter != "" {
		cfg.Input.Delimiter = []rune(delimiter)[0]
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("out") {
		cfg.Output.Directory = outDir
	}
	if flags.Changed("pdf") {
		cfg.Output.PDF = pdf
	}
	if flags.Changed("metrics") {
		cfg.Output.MetricsFile = metricsFile
	}
	if flags.Changed("status-codes") {
		cfg.Output.StatusCodes = statusCodes
	}
	if flags.Changed("policy") {
		if err := cfg.LoadPolicy(policyFile); err != nil {
			log.Fatalf("cannot load policy: %v", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	return cfg
}

func newLogger(cfg *config.Config) *zap.Logger {
	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	return zapLogger
}

func loadInput(cfg *config.Config) model.ModelInput {
	var (
		input model.ModelInput
		err   error
	)
	if cfg.Input.JsonFile != "" {
		input, err = model.InputFromJson(cfg.Input.JsonFile, cfg.Policy)
	} else {
		input, err = csvio.LoadInput(cfg.Input.CoursesFile, cfg.Input.RoomsFile, cfg.Input.Delimiter, cfg.Policy)
	}
	if err != nil {
		log.Fatalf("cannot load input: %v", err)
	}
	return input
}

func writeOutputs(cfg *config.Config, run timetabler.Run) {
	directory := cfg.Output.Directory
	if _, err := csvio.WriteGrids(filepath.Join(directory, "grids"), run.Grids); err != nil {
		log.Fatalf("cannot write grids: %v", err)
	}
	if err := csvio.WriteSummary(filepath.Join(directory, "summary.csv"), run.Results); err != nil {
		log.Fatalf("cannot write summary: %v", err)
	}
	if err := csvio.WriteConflicts(filepath.Join(directory, "conflicts.csv"), run.Conflicts); err != nil {
		log.Fatalf("cannot write conflicts: %v", err)
	}

	if !cfg.Output.PDF || len(run.Grids) == 0 {
		return
	}
	content, err := export.NewPDFExporter().Render(run.Grids, "Timetable")
	if err != nil {
		log.Fatalf("cannot render timetable book: %v", err)
	}
	if err := os.WriteFile(filepath.Join(directory, "timetable.pdf"), content, 0666); err != nil {
		log.Fatalf("cannot write timetable book: %v", err)
	}
}

func report(run timetabler.Run, violations []timetabler.Violation, elapsed time.Duration) {
	fmt.Printf("Run %v (seed %d) finished in %v\n", run.Id, run.Seed, elapsed.Round(time.Millisecond))

	statuses := lo.CountValuesBy(run.Results, func(result model.AllocationResult) model.CourseStatus { return result.Status })
	fmt.Printf("Courses: %d fully scheduled, %d partially scheduled, %d unscheduled\n",
		statuses[model.FullyScheduled], statuses[model.PartiallyScheduled], statuses[model.Unscheduled])

	for _, gap := range run.Gaps {
		fmt.Printf("GAP: semester %d %v %v %v: %v\n", gap.Semester, gap.Department, gap.Session, gap.Code, gap.Reason)
	}

	if len(run.Conflicts) == 0 {
		fmt.Println("No room conflicts found")
	} else {
		fmt.Println("Room conflicts detected:")
		for _, conflict := range run.Conflicts {
			fmt.Printf("  - %v\n", csvio.FormatConflict(conflict))
		}
	}

	for _, violation := range violations {
		fmt.Printf("VIOLATION: semester %d %v %v: %v\n", violation.Semester, violation.Department, violation.Session, violation.Message)
	}
}
