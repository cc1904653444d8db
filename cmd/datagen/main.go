package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var (
	machines    = flag.Int("machines", 5, "Number of machines")
	days        = flag.Int("days", 21, "Number of days of telemetry")
	interval    = flag.Duration("interval", time.Hour, "Time between two readings of a machine")
	start       = flag.String("start", "2024-01-01", "First day (YYYY-MM-DD)")
	failure     = flag.Float64("failure", 0.05, "Probability of a failure reading (0.0-1.0)")
	anomaly     = flag.Float64("anomaly", 0.08, "Probability of an anomaly flag (0.0-1.0)")
	maintenance = flag.Float64("maintenance", 0.1, "Probability of a maintenance request (0.0-1.0)")
	seed        = flag.Int64("seed", 1, "Random seed")
	output      = flag.String("out", "", "Output file (default stdout)")
)

var header = []string{
	"timestamp", "machine", "temperature", "vibration", "humidity", "pressure",
	"energy_consumption", "machine_status", "anomaly_flag", "predicted_remaining_life",
	"maintenance_required",
}

// MockDataGenerator produces plausible telemetry for one machine
type MockDataGenerator struct {
	machine         string
	rng             *rand.Rand
	baseTemp        float64
	baseVibration   float64
	remainingLife   float64
	failureProb     float64
	anomalyProb     float64
	maintenanceProb float64
}

func NewMockDataGenerator(machine string, rng *rand.Rand) *MockDataGenerator {
	return &MockDataGenerator{
		machine:         machine,
		rng:             rng,
		baseTemp:        60 + rng.Float64()*15,
		baseVibration:   1 + rng.Float64(),
		remainingLife:   200 + rng.Float64()*300,
		failureProb:     *failure,
		anomalyProb:     *anomaly,
		maintenanceProb: *maintenance,
	}
}

// GenerateRow generates one reading at ts
func (m *MockDataGenerator) GenerateRow(ts time.Time) []string {
	isFailure := m.rng.Float64() < m.failureProb
	isAnomaly := isFailure || m.rng.Float64() < m.anomalyProb

	temperature := m.baseTemp + m.rng.Float64()*4 - 2
	vibration := m.baseVibration + m.rng.Float64()*0.4 - 0.2
	if isAnomaly {
		temperature += 15 + m.rng.Float64()*10
		vibration *= 2.5
	}

	status := "normal"
	switch {
	case isFailure:
		status = "failure"
	case m.rng.Float64() < 0.1:
		status = "idle"
	}

	m.remainingLife -= m.rng.Float64() * 0.5
	if m.remainingLife < 0 {
		m.remainingLife = 0
	}

	return []string{
		ts.Format("2006-01-02 15:04:05"),
		m.machine,
		strconv.FormatFloat(round(temperature, 2), 'f', -1, 64),
		strconv.FormatFloat(round(vibration, 3), 'f', -1, 64),
		strconv.FormatFloat(round(40+m.rng.Float64()*20, 2), 'f', -1, 64),
		strconv.FormatFloat(round(100+m.rng.Float64()*10, 2), 'f', -1, 64),
		strconv.FormatFloat(round(3+m.rng.Float64()*2, 2), 'f', -1, 64),
		status,
		yesNo(isAnomaly),
		strconv.FormatFloat(round(m.remainingLife, 1), 'f', -1, 64),
		yesNo(isFailure || m.rng.Float64() < m.maintenanceProb),
	}
}

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	first, err := time.Parse("2006-01-02", *start)
	if err != nil {
		logger.Fatal("Invalid start date", zap.String("start", *start), zap.Error(err))
	}
	if *machines <= 0 || *days <= 0 || *interval <= 0 {
		logger.Fatal("machines, days and interval must be positive")
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Fatal("Failed to create output file", zap.String("file", *output), zap.Error(err))
		}
		defer f.Close()
		out = f
	}

	rows, err := generate(out, first)
	if err != nil {
		logger.Fatal("Failed to write telemetry", zap.Error(err))
	}

	logger.Info("Mock telemetry generated",
		zap.Int("machines", *machines),
		zap.Int("days", *days),
		zap.Duration("interval", *interval),
		zap.Int("rows", rows),
		zap.String("out", *output))
}

func generate(out io.Writer, first time.Time) (int, error) {
	rng := rand.New(rand.NewSource(*seed))
	generators := make([]*MockDataGenerator, *machines)
	for i := range generators {
		generators[i] = NewMockDataGenerator(fmt.Sprintf("Machine_%d", i+1), rng)
	}

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return 0, err
	}

	end := first.AddDate(0, 0, *days)
	rows := 0
	for ts := first; ts.Before(end); ts = ts.Add(*interval) {
		for _, g := range generators {
			if err := w.Write(g.GenerateRow(ts)); err != nil {
				return rows, err
			}
			rows++
		}
	}

	w.Flush()
	return rows, w.Error()
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
