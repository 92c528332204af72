package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gatewise/accesssim/services"
	"github.com/gatewise/accesssim/services/evaluation"
	"github.com/gatewise/accesssim/services/loader"
	"go.uber.org/zap"
)

// Exit codes: 0 access granted, 1 access denied, 2 evaluation could not
// be performed (bad input, unreadable documents, malformed policy).
const (
	exitGranted = 0
	exitDenied  = 1
	exitError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("accesssim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	policyFile := fs.String("p", loader.DefaultPolicyFile, "path to the policy file")
	userFile := fs.String("u", loader.DefaultUserFile, "path to the user file")
	contextFile := fs.String("c", loader.DefaultContextFile, "path to the context file")
	verbose := fs.Bool("v", false, "log the per-policy evaluation trace")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: accesssim [-p policies.json] [-u users.json] [-c context.json] [-v] <user_id>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitError
	}
	subjectID := fs.Arg(0)

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(stderr, "Error: failed to initialize logger: %v\n", err)
			return exitError
		}
		defer func() { _ = logger.Sync() }()
	}

	set, dir, snap, err := loader.New(logger).LoadAll(*policyFile, *userFile, *contextFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	decision, err := evaluation.NewService(logger).Evaluate(context.Background(), set, dir, snap, evaluation.Request{
		SubjectID: subjectID,
		At:        time.Now(),
	})
	if err != nil {
		if services.IsMalformedConditionError(err) {
			fmt.Fprintf(stderr, "Error: policy data is malformed: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitError
	}

	if *verbose {
		for _, entry := range decision.Trace {
			logger.Info("policy evaluated",
				zap.String("policy", entry.Policy),
				zap.String("outcome", string(entry.Outcome)),
				zap.String("reason", entry.Reason))
		}
	}

	if decision.Granted {
		fmt.Fprintf(stdout, "Access granted to user '%s'.\n", subjectID)
		return exitGranted
	}
	fmt.Fprintf(stdout, "Access denied to user '%s'.\n", subjectID)
	return exitDenied
}
