package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/mentorlink/internal/loadgen"
)

const (
	defaultWorkers = 2 // multiplier for runtime.NumCPU()
	defaultRunTime = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", loadgen.DefaultBaseURL, "Base URL of the service")
		secret   = flag.String("secret", defaultSecret(), "JWT secret shared with the service")
		mentors  = flag.Int("mentors", loadgen.DefaultMentors, "Number of mentors to seed")
		learners = flag.Int("learners", loadgen.DefaultLearners, "Number of learners to seed")
		feedback = flag.Int("feedback", loadgen.DefaultFeedback, "Number of feedback submissions")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", loadgen.DefaultTimeout, "HTTP request timeout")
		seed     = flag.Uint64("seed", 1, "Seed for generated data")
		format   = flag.String("format", "json", "Log format (json or text)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	cfg := &loadgen.Config{
		BaseURL:  *baseURL,
		Secret:   *secret,
		Mentors:  *mentors,
		Learners: *learners,
		Feedback: *feedback,
		Workers:  *workers,
		Timeout:  *timeout,
		Seed:     *seed,
		Verbose:  *verbose,
	}
	if err := run(cfg, *format); err != nil {
		_, _ = os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// defaultSecret matches the server's development default unless the
// environment overrides it.
func defaultSecret() string {
	if s := os.Getenv("MENTORLINK_JWT_SECRET"); s != "" {
		return s
	}
	return "change-me"
}

func run(cfg *loadgen.Config, format string) error {
	if err := loadgen.SetupLogging(format, cfg.Verbose); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTime)
	defer cancel()

	_, err := loadgen.Run(ctx, cfg)
	return err
}
