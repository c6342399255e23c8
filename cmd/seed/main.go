package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"surveyrelay/internal/logging"
	"surveyrelay/internal/model"
	"surveyrelay/internal/service"
	"surveyrelay/internal/summary"
)

func main() {
	output := flag.String("output", summary.DefaultInput, "answers CSV to write")
	force := flag.Bool("force", false, "overwrite an existing file")
	flag.Parse()

	logger := logging.New("info")

	if _, err := os.Stat(*output); err == nil && !*force {
		logger.WithField("output", *output).Fatal("answers file exists, use -force to overwrite")
	}

	// Timestamps a few minutes apart; the second entry for "mika" is a
	// resubmission that replaces the first in the summary.
	base := time.Date(2025, 12, 6, 10, 0, 0, 0, time.UTC)
	at := func(min int) string {
		return base.Add(time.Duration(min) * time.Minute).Format("2006-01-02T15:04:05.000Z")
	}
	subs := []model.Submission{
		{Timestamp: at(0), Language: "ja", PlayerName: "mika", Q2Time: "morning", Q3Time: "evening", Q4Day: "saturday"},
		{Timestamp: at(3), Language: "en", PlayerName: "alex", Q2Time: "night", Q3Time: "evening", Q4Day: "sunday"},
		{Timestamp: at(7), Language: "zh", PlayerName: "lin", Q2Time: "morning", Q3Time: "afternoon", Q4Day: "saturday"},
		{Timestamp: at(12), Language: "ja", PlayerName: "mika", Q2Time: "night", Q3Time: "evening", Q4Day: "sunday"},
		{Timestamp: at(15), Language: "en", PlayerName: "sam", Q2Time: "afternoon", Q3Time: "night", Q4Day: "friday"},
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		logger.WithError(err).Fatal("failed to create output directory")
	}
	f, err := os.Create(*output)
	if err != nil {
		logger.WithError(err).Fatal("failed to create answers file")
	}
	if err := service.WriteCSV(f, subs); err != nil {
		f.Close()
		logger.WithError(err).Fatal("failed to write answers")
	}
	if err := f.Close(); err != nil {
		logger.WithError(err).Fatal("failed to close answers file")
	}

	fmt.Printf("Successfully wrote %d sample answers to %s\n", len(subs), *output)
}
