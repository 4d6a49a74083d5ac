// Command interviewsim runs an LLM-driven mock interview in the terminal:
// it profiles a candidate's resume against a job description, researches
// the company, then conducts a scored multi-stage interview with
// escalating pushback on weak answers and a final performance report.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/config"
	"interviewsim/pkg/interview"
	"interviewsim/pkg/logx"
	"interviewsim/pkg/metrics"
	"interviewsim/pkg/persistence"
	"interviewsim/pkg/search"
	"interviewsim/pkg/state"
	"interviewsim/pkg/tokens"
)

// Version information - set via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	var (
		configPath    = flag.String("config", "config.json", "Path to configuration file")
		resumeFile    = flag.String("resume", "", "Path to the candidate's resume text file")
		jdFile        = flag.String("jd", "", "Path to the job description text file")
		company       = flag.String("company", "", "Target company name")
		candidate     = flag.String("candidate", "", "Candidate name for session records")
		setupSecrets  = flag.Bool("setup-secrets", false, "Interactively store encrypted API keys and exit")
		showVersion   = flag.Bool("version", false, "Show version information")
		listSessions  = flag.Bool("sessions", false, "List recent interview sessions and exit")
		reviewSession = flag.String("review", "", "Print the stored transcript for a session ID and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("interviewsim %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if err := run(runOptions{
		configPath:    *configPath,
		resumeFile:    *resumeFile,
		jdFile:        *jdFile,
		company:       *company,
		candidate:     *candidate,
		setupSecrets:  *setupSecrets,
		listSessions:  *listSessions,
		reviewSession: *reviewSession,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath    string
	resumeFile    string
	jdFile        string
	company       string
	candidate     string
	reviewSession string
	setupSecrets  bool
	listSessions  bool
}

//nolint:cyclop // top-level sequencing of startup, loop, and shutdown
func run(opts runOptions) error {
	logger := logx.NewLogger("main")

	if err := config.Load(opts.configPath); err != nil {
		return err
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	if opts.setupSecrets {
		return runSecretsSetup(&cfg)
	}
	if err := unlockSecretsIfPresent(&cfg); err != nil {
		return err
	}

	if err := persistence.Initialize(config.DatabasePath(&cfg)); err != nil {
		return err
	}
	defer func() { _ = persistence.Close() }()

	if opts.listSessions {
		return printSessionList()
	}
	if opts.reviewSession != "" {
		return printTranscript(opts.reviewSession)
	}

	// Interview mode from here on.
	if opts.resumeFile == "" || opts.jdFile == "" || opts.company == "" {
		return fmt.Errorf("interview mode requires -resume, -jd, and -company")
	}

	// Missing provider credentials must stop the session before it starts.
	if err := config.CheckProviderCredentials(&cfg); err != nil {
		return err
	}

	resumeText, err := readTextFile(opts.resumeFile)
	if err != nil {
		return err
	}
	jobDescription, err := readTextFile(opts.jdFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, worker, recorder, err := buildDeps(&cfg, opts.candidate)
	if err != nil {
		return err
	}

	driver, err := interview.NewDriver(deps)
	if err != nil {
		return err
	}

	fmt.Println("Preparing interview (profiling resume, researching company, planning strategy)...")
	session, err := driver.BeginSession(ctx, resumeText, jobDescription, opts.company)
	if err != nil {
		return err
	}
	logger.Info("Session %s started for %s", session.ID, opts.company)

	if err := answerLoop(ctx, driver); err != nil {
		logger.Warn("Interview loop ended with error: %v", err)
	}

	if _, err := driver.FinalizeReport(ctx); err != nil {
		logger.Warn("Report finalization failed: %v", err)
	}
	printReport(driver)
	if path, err := saveReport(&cfg, driver); err != nil {
		logger.Warn("Report save failed: %v", err)
	} else if path != "" {
		fmt.Printf("\nReport saved to %s\n", path)
	}

	// Shutdown: drain pending writes and leave a metrics snapshot behind.
	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := worker.Drain(drainCtx); err != nil {
		logger.Warn("Persistence drain failed: %v", err)
	}

	snapshotPath := filepath.Join(config.MetricsDir(&cfg), session.ID+".prom")
	if err := recorder.WriteSnapshot(snapshotPath); err != nil {
		logger.Warn("Metrics snapshot failed: %v", err)
	}

	return nil
}

// buildDeps wires the configured providers and supporting infrastructure
// into driver dependencies.
func buildDeps(cfg *config.Config, candidate string) (interview.Deps, *persistence.Worker, *metrics.Recorder, error) {
	interviewerLLM, err := agent.NewLLMClient(cfg.Interviewer)
	if err != nil {
		return interview.Deps{}, nil, nil, err
	}
	judgeLLM, err := agent.NewLLMClient(cfg.Judge)
	if err != nil {
		return interview.Deps{}, nil, nil, err
	}
	visionClient, err := agent.NewVisionClient(cfg.Vision)
	if err != nil {
		return interview.Deps{}, nil, nil, err
	}

	var searchClient search.Client
	if cfg.Search.Enabled {
		if apiKey := config.TavilyAPIKey(); apiKey != "" {
			searchClient = search.NewTavilyClient(apiKey, cfg.Search.Endpoint)
		}
	}

	snapshots, err := state.NewStore(config.SnapshotDir(cfg))
	if err != nil {
		return interview.Deps{}, nil, nil, err
	}

	counter, err := tokens.NewCounter(cfg.Interviewer.Model)
	if err != nil {
		return interview.Deps{}, nil, nil, err
	}

	worker := persistence.StartWorker(persistence.GetDB(), 0)
	recorder := metrics.NewRecorder()

	return interview.Deps{
		InterviewerLLM:   interviewerLLM,
		JudgeLLM:         judgeLLM,
		Vision:           visionClient,
		Search:           searchClient,
		PersistCh:        worker.Channel(),
		Snapshots:        snapshots,
		Recorder:         recorder,
		TokenCounter:     counter,
		CandidateName:    candidate,
		SearchMaxResults: cfg.Search.MaxResults,
	}, worker, recorder, nil
}

// answerLoop reads answers from stdin until the session terminates or the
// user quits. Multi-line answers end with an empty line.
func answerLoop(ctx context.Context, driver *interview.Driver) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		session := driver.Session()
		if session.Complete() || session.FinalReport != "" {
			return nil
		}

		fmt.Printf("\n[%s] Question %d:\n%s\n", session.Stage, session.QuestionCount, session.CurrentQuestion)
		fmt.Println("\nYour answer (finish with an empty line, or type /quit):")

		answer, quit := readAnswer(reader)
		if quit {
			driver.Abort("Candidate ended the interview")
			return nil
		}
		if ctx.Err() != nil {
			driver.Abort("Interrupted")
			return nil
		}
		if answer == "" {
			fmt.Println("Please provide an answer.")
			continue
		}

		if _, err := driver.SubmitAnswer(ctx, answer); err != nil {
			return err
		}
	}
}

func readAnswer(reader *bufio.Reader) (answer string, quit bool) {
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "/quit" {
			return "", true
		}
		if line == "" || err != nil {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), false
}

func printReport(driver *interview.Driver) {
	session := driver.Session()
	if session == nil || session.FinalReport == "" {
		return
	}
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println(session.FinalReport)
	fmt.Printf("\nToken usage: %s\n", driver.Usage().Summary())
}

// saveReport writes the final report markdown under the data directory so
// the transcript survives the terminal session.
func saveReport(cfg *config.Config, driver *interview.Driver) (string, error) {
	session := driver.Session()
	if session == nil || session.FinalReport == "" {
		return "", nil
	}
	dir := config.ReportsDir(cfg)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}
	path := filepath.Join(dir, session.ID+".md")
	if err := os.WriteFile(path, []byte(session.FinalReport), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func printSessionList() error {
	ops := persistence.NewDatabaseOperations(persistence.GetDB())
	records, err := ops.ListSessions(20)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}
	for _, rec := range records {
		score := "-"
		if rec.OverallScore != nil {
			score = fmt.Sprintf("%.1f", *rec.OverallScore)
		}
		fmt.Printf("%s  %-20s %-16s q=%-2d score=%-4s %s\n",
			rec.StartTime.Format("2006-01-02 15:04"), rec.Company, rec.CandidateName,
			rec.TotalQuestions, score, rec.ID)
	}
	return nil
}

func printTranscript(sessionID string) error {
	ops := persistence.NewDatabaseOperations(persistence.GetDB())
	records, err := ops.GetTranscript(sessionID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No transcript found for session %s.\n", sessionID)
		return nil
	}
	for _, rec := range records {
		marker := ""
		if rec.IsPushback {
			marker = " (pushback)"
		}
		fmt.Printf("--- Q%d [%s]%s score=%d/10\n", rec.QuestionNumber, rec.Stage, marker, rec.CriticScore)
		fmt.Printf("Q: %s\nA: %s\n", rec.Question, rec.Answer)
		if rec.CriticTip != "" {
			fmt.Printf("Tip: %s\n", rec.CriticTip)
		}
		fmt.Println()
	}
	return nil
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s is empty: provide a non-empty text file", path)
	}
	return text, nil
}
