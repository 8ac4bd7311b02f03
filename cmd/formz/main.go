// Package main provides a CLI for checking formz rule files against form
// values.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/zoobzio/capitan"
	"go.uber.org/zap"

	"github.com/zoobzio/formz"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	var err error
	code := 0
	switch args[0] {
	case "validate":
		code, err = runValidate(args[1:], stdout, stderr)
	case "replay":
		code, err = runReplay(args[1:], stdout, stderr)
	case "watch":
		code, err = runWatch(args[1:], stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		printUsage(stderr)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return code
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "formz - headless form state engine")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  formz validate -rules rules.yaml -value value.json")
	fmt.Fprintln(w, "  formz replay -rules rules.yaml -script steps.yaml")
	fmt.Fprintln(w, "  formz watch -rules rules.yaml -value value.yaml [-debounce 200ms] [-debug]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "validate exits 1 when the value has issues.")
}

// loadController builds a controller from a rule file.
func loadController(rulesPath string, opts ...formz.Option) (*formz.RuleFile, *formz.Controller, error) {
	if rulesPath == "" {
		return nil, nil, errors.New("-rules is required")
	}
	file, err := formz.LoadRuleFile(rulesPath)
	if err != nil {
		return nil, nil, err
	}
	validator, err := file.Validator()
	if err != nil {
		return nil, nil, err
	}
	ctrl, err := formz.New(validator, append(file.Options(), opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return file, ctrl, nil
}

func readValue(path string) (formz.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read value: %w", err)
	}
	return formz.DecodeValue(formz.CodecFor(strings.ToLower(filepath.Ext(path))), data)
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

type validateReport struct {
	Valid   bool         `json:"valid"`
	Changed bool         `json:"changed"`
	Issues  formz.Issues `json:"issues"`
}

func runValidate(args []string, stdout, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesPath := fs.String("rules", "", "Rule file (YAML or JSON)")
	valuePath := fs.String("value", "", "Value file (JSON, YAML or msgpack)")
	if err := fs.Parse(args); err != nil {
		return 2, nil
	}
	if *valuePath == "" {
		return 0, errors.New("-value is required")
	}

	_, ctrl, err := loadController(*rulesPath)
	if err != nil {
		return 0, err
	}
	value, err := readValue(*valuePath)
	if err != nil {
		return 0, err
	}

	ctx := context.Background()
	if _, err := ctrl.SetFormValue(ctx, value, false); err != nil {
		return 0, err
	}
	issues := ctrl.GetFormErrors()
	report := validateReport{
		Valid:   len(issues) == 0,
		Changed: ctrl.HasChanged(),
		Issues:  issues,
	}
	if report.Issues == nil {
		report.Issues = formz.Issues{}
	}
	if err := writeJSON(stdout, report); err != nil {
		return 0, err
	}
	if !report.Valid {
		return 1, nil
	}
	return 0, nil
}

// Step is one user interaction in a replay script.
//
//	steps:
//	  - {op: change, key: email, value: ross@example.com}
//	  - {op: blur, key: email}
//	  - {op: submit}
type Step struct {
	Op    string      `json:"op" yaml:"op"`
	Key   string      `json:"key,omitempty" yaml:"key,omitempty"`
	Value any         `json:"value,omitempty" yaml:"value,omitempty"`
	Reset bool        `json:"reset,omitempty" yaml:"reset,omitempty"`
	Form  formz.Value `json:"form,omitempty" yaml:"form,omitempty"`
}

type script struct {
	Steps []Step `json:"steps" yaml:"steps"`
}

// Snapshot is the state after a replay step.
type Snapshot struct {
	Step      int                     `json:"step"`
	Op        string                  `json:"op"`
	Key       string                  `json:"key,omitempty"`
	State     string                  `json:"state"`
	Changed   bool                    `json:"changed"`
	Valid     bool                    `json:"valid"`
	Submitted bool                    `json:"submitted,omitempty"`
	Value     formz.Value             `json:"value"`
	Errors    map[string]formz.Issues `json:"errors,omitempty"`
}

func runReplay(args []string, stdout, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesPath := fs.String("rules", "", "Rule file (YAML or JSON)")
	scriptPath := fs.String("script", "", "Step script (YAML or JSON)")
	if err := fs.Parse(args); err != nil {
		return 2, nil
	}
	if *scriptPath == "" {
		return 0, errors.New("-script is required")
	}

	data, err := os.ReadFile(*scriptPath)
	if err != nil {
		return 0, fmt.Errorf("read script: %w", err)
	}
	var sc script
	if err := formz.CodecFor(strings.ToLower(filepath.Ext(*scriptPath))).Unmarshal(data, &sc); err != nil {
		return 0, fmt.Errorf("decode script: %w", err)
	}

	var submitted bool
	file, ctrl, err := loadController(*rulesPath, formz.WithOnSubmit(func(context.Context, formz.Value) error {
		submitted = true
		return nil
	}))
	if err != nil {
		return 0, err
	}
	validity := formz.NewValidityObserver(ctrl, nil)
	if err := validity.Start(); err != nil {
		return 0, err
	}
	defer validity.Close()

	fields := make(map[string]*formz.Field)
	field := func(key string) (*formz.Field, error) {
		if f, ok := fields[key]; ok {
			return f, nil
		}
		f := formz.NewField(ctrl, key, formz.WithTiming(file.Timing(key)))
		if err := f.Mount(); err != nil {
			return nil, err
		}
		fields[key] = f
		return f, nil
	}
	for _, key := range file.Fields.Keys() {
		if _, err := field(key); err != nil {
			return 0, err
		}
	}

	ctx := context.Background()
	snapshots := make([]Snapshot, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		submitted = false
		switch step.Op {
		case "change":
			f, err := field(step.Key)
			if err != nil {
				return 0, err
			}
			if err := f.OnChange(ctx, step.Value); err != nil {
				return 0, err
			}
		case "blur":
			f, err := field(step.Key)
			if err != nil {
				return 0, err
			}
			f.OnBlur()
		case "validate":
			if _, err := ctrl.ValidateFormValue(ctx); err != nil {
				return 0, err
			}
		case "submit":
			if _, err := ctrl.Submit(ctx); err != nil {
				return 0, err
			}
		case "set_form":
			if _, err := ctrl.SetFormValue(ctx, step.Form, step.Reset); err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}

		snap := Snapshot{
			Step:      i + 1,
			Op:        step.Op,
			Key:       step.Key,
			State:     ctrl.State().String(),
			Changed:   ctrl.HasChanged(),
			Valid:     validity.Current(),
			Submitted: submitted,
			Value:     formz.Clone(ctrl.GetFormValue()).(map[string]any),
		}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if errs := fields[k].Errors(); len(errs) > 0 {
				if snap.Errors == nil {
					snap.Errors = make(map[string]formz.Issues)
				}
				snap.Errors[k] = errs
			}
		}
		snapshots = append(snapshots, snap)
	}

	for _, f := range fields {
		f.Unmount()
	}
	return 0, writeJSON(stdout, snapshots)
}

func runWatch(args []string, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesPath := fs.String("rules", "", "Rule file (YAML or JSON)")
	valuePath := fs.String("value", "", "Value file to follow")
	debounce := fs.Duration("debounce", 200*time.Millisecond, "Debounce for file changes")
	debug := fs.Bool("debug", false, "Log every signal")
	if err := fs.Parse(args); err != nil {
		return 2, nil
	}
	if *valuePath == "" {
		return 0, errors.New("-value is required")
	}

	var (
		logger *zap.Logger
		err    error
	)
	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return 0, fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	_, ctrl, err := loadController(*rulesPath, formz.WithID("watch"), formz.WithLogger(logger))
	if err != nil {
		return 0, err
	}
	stopLogging := formz.LogSignals(logger)
	defer stopLogging()

	bus := formz.NewBus()
	if err := bus.Register(ctrl); err != nil {
		return 0, err
	}

	errs := formz.NewErrorsObserver(ctrl, func(issues formz.Issues) {
		if len(issues) == 0 {
			logger.Info("form valid")
			return
		}
		for _, issue := range issues {
			logger.Info("form issue",
				zap.String("key", issue.Key()),
				zap.String("code", issue.Code),
				zap.String("message", issue.Message),
			)
		}
	})
	if err := bus.Do(ctrl.ID(), func(*formz.Controller) error { return errs.Start() }); err != nil {
		return 0, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	feed := formz.NewFeed(formz.NewFileWatcher(*valuePath), bus, ctrl.ID()).
		Codec(formz.CodecFor(strings.ToLower(filepath.Ext(*valuePath)))).
		Debounce(*debounce).
		Logger(logger).
		OnStop(func(s formz.FeedState) {
			logger.Info("feed stopped", zap.String("state", s.String()))
			close(done)
		})
	if err := feed.Start(ctx); err != nil {
		if feed.State() == formz.FeedLoading {
			return 0, err
		}
		logger.Warn("initial load failed", zap.Error(err))
	}
	logger.Info("watching", zap.String("value", *valuePath), zap.String("state", feed.State().String()))

	<-ctx.Done()
	<-done
	capitan.Shutdown()
	return 0, nil
}
