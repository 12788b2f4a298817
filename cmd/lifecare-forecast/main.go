package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lifecare-forecast/internal/config"
	"lifecare-forecast/internal/engine"
	"lifecare-forecast/internal/server"
	"lifecare-forecast/pkg/constants"
	"lifecare-forecast/pkg/output"
	"lifecare-forecast/pkg/validation"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func serve(addr, serverConfigPath, logLevel string) {
	serverConfig, err := server.LoadConfig(serverConfigPath)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	if addr != "" {
		serverConfig.Address = addr
	}

	logger, err := initializeLogger(serverConfig.Logging, logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	handler := server.NewHandler(logger, serverConfig.UploadSizeBytes(), version)
	logger.Info("serving projection API",
		zap.String("op", "main"),
		zap.String("address", serverConfig.Address),
	)
	if err := http.ListenAndServe(serverConfig.Address, handler); err != nil {
		logger.Fatal("server stopped",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to plan document")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	sensitivity := flag.Bool("sensitivity", false, "report totals under perturbed discount rate and horizon")
	serveFlag := flag.Bool("serve", false, "run the HTTP projection API instead of a one-shot projection")
	addr := flag.String("addr", "", "listen address override for -serve")
	serverConfigLocation := flag.String("server-config", "", "path to server configuration file for -serve")
	flag.Parse()

	if *serveFlag {
		serve(*addr, *serverConfigLocation, *logLevel)
		return
	}

	// Load the plan document to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load plan document at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Construct the plan and surface loader warnings
	p, warnings, err := conf.BuildPlan()
	if err != nil {
		logger.Fatal("failed to build plan",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	warnings = append(warnings, validation.ValidatePlan(p)...)
	for _, warning := range warnings {
		logger.Warn("Plan warning: "+warning,
			zap.String("op", "main"),
		)
	}

	e := engine.NewEngine(logger)

	results := make([]output.ScenarioResult, 0, len(p.Scenarios))
	for _, scenario := range p.Scenarios {
		results = append(results, output.ScenarioResult{
			Schedule:   e.BuildSchedule(scenario, p.Evaluee),
			Summary:    e.Summarize(scenario, p.Evaluee),
			Validation: e.Validate(scenario, p.Evaluee),
		})
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results)
		if len(p.Scenarios) > 1 {
			comparison, err := e.Compare(p)
			if err != nil {
				logger.Fatal("failed to compare scenarios",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
			fmt.Printf("\n")
			output.PrettyComparison(comparison)
		}
		if *sensitivity {
			if active := p.CurrentScenario(); active != nil {
				fmt.Printf("\n")
				output.PrettySensitivity(e.Sensitivity(*active, p.Evaluee, engine.DefaultSensitivityOptions()))
			}
		}
	case constants.OutputFormatCSV:
		output.CsvFormat(results)
	}
}
