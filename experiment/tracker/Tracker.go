// Package tracker implements the tracking and saving of the offline
// evaluations performed during an experiment
package tracker

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// HistoryFile is the name of the file which evaluation history is
// saved to
const HistoryFile = "eval.gob"

// Evaluation is the summary of a single offline evaluation of a
// policy over a number of episodes
type Evaluation struct {
	AvgReward    float64 // Mean raw episodic return
	StdReward    float64 // Population standard deviation of the returns
	AvgNormScore float64 // Normalized score of the mean return

	// StdNormScore is the population standard deviation of the
	// normalized score of each return. This is not the normalized
	// StdReward.
	StdNormScore float64
}

// Record returns the evaluation as the row saved to disk:
// [AvgReward, StdReward, AvgNormScore, StdNormScore]
func (e Evaluation) Record() [4]float64 {
	return [4]float64{e.AvgReward, e.StdReward, e.AvgNormScore,
		e.StdNormScore}
}

// FromRecord returns the Evaluation saved as r
func FromRecord(r [4]float64) Evaluation {
	return Evaluation{
		AvgReward:    r[0],
		StdReward:    r[1],
		AvgNormScore: r[2],
		StdNormScore: r[3],
	}
}

// Tracker keeps track of evaluations performed during an experiment
type Tracker interface {
	Append(Evaluation) error
	Evaluations() []Evaluation
}

// History is an append-only sequence of evaluations. Each time an
// evaluation is appended, the entire history is saved to disk so that
// a crashed run leaves behind every completed evaluation.
type History struct {
	filename    string
	evaluations []Evaluation
}

// NewHistory returns a new, empty History which saves to filename. If
// filename is empty, the History is only kept in memory.
func NewHistory(filename string) *History {
	return &History{filename: filename}
}

// Append appends e to the history and saves the history
func (h *History) Append(e Evaluation) error {
	h.evaluations = append(h.evaluations, e)
	if h.filename == "" {
		return nil
	}
	return errors.Wrap(h.Save(), "append")
}

// Len returns the number of evaluations in the history
func (h *History) Len() int {
	return len(h.evaluations)
}

// Evaluations returns a copy of the evaluations in the history
func (h *History) Evaluations() []Evaluation {
	out := make([]Evaluation, len(h.evaluations))
	copy(out, h.evaluations)
	return out
}

// Records returns the evaluations in the history as rows
func (h *History) Records() [][4]float64 {
	records := make([][4]float64, len(h.evaluations))
	for i, e := range h.evaluations {
		records[i] = e.Record()
	}
	return records
}

// Save saves the History to its file, overwriting any previous
// version of the file.
func (h *History) Save() error {
	file, err := os.Create(h.filename)
	if err != nil {
		return errors.Wrap(err, "could not open save file")
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(h.Records()); err != nil {
		return errors.Wrap(err, "could not encode evaluation history")
	}
	return file.Close()
}

// LoadHistory loads the History saved in filename. Further appends to
// the returned History are saved to filename.
func LoadHistory(filename string) (*History, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "could not open history file")
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var records [][4]float64
	if err = dec.Decode(&records); err != nil {
		return nil, errors.Wrap(err, "could not decode history")
	}

	h := NewHistory(filename)
	for _, r := range records {
		h.evaluations = append(h.evaluations, FromRecord(r))
	}
	return h, nil
}
