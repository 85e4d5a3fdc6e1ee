package checkpointer

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/bcrunner/experiment/tracker"
)

// ScoreFile is the name of the file which the best score is saved to
const ScoreFile = "best_score.txt"

// ErrNoEvaluations is returned when selecting from an empty history
var ErrNoEvaluations = errors.New("no evaluations")

// BestScore is the evaluation of the best policy seen so far, along
// with the epoch at which it was evaluated
type BestScore struct {
	Epoch   int     `json:"epoch"`
	NormAvg float64 `json:"best normalized score avg"`
	NormStd float64 `json:"best normalized score std"`
	RawAvg  float64 `json:"best raw score avg"`
	RawStd  float64 `json:"best raw score std"`
}

// Best is a Checkpointer which checkpoints a policy whenever its
// average normalized score is at least as high as that of every
// previously considered policy. Ties go to the most recent policy.
//
// Each time the best policy changes, the BestScore is written to
// ScoreFile in the checkpoint directory, and if checkpointing of
// models is enabled, the Saver is saved to the checkpoint directory.
type Best struct {
	dir       string
	saver     Saver
	saveModel bool

	best  float64
	score BestScore
}

// NewBest returns a new Best Checkpointer which saves to dir. If
// saveModel is false, saver may be nil and only the BestScore is
// written. If dir is empty, nothing is written at all.
func NewBest(dir string, saver Saver, saveModel bool) *Best {
	if saveModel && saver == nil {
		panic("newBest: cannot save model with nil saver")
	}
	return &Best{
		dir:       dir,
		saver:     saver,
		saveModel: saveModel,
		best:      math.Inf(-1),
	}
}

// Consider considers the evaluation e of a policy at some epoch,
// checkpointing the policy if it is the best seen so far. Consider
// reports whether the best policy changed.
//
// If saving either the model or the score fails, the best score is
// still updated in memory and the error is returned.
func (b *Best) Consider(e tracker.Evaluation, epoch int) (bool, error) {
	if !(e.AvgNormScore >= b.best) {
		return false, nil
	}

	b.best = e.AvgNormScore
	b.score = BestScore{
		Epoch:   epoch,
		NormAvg: e.AvgNormScore,
		NormStd: e.StdNormScore,
		RawAvg:  e.AvgReward,
		RawStd:  e.StdReward,
	}

	if b.dir == "" {
		return true, nil
	}

	if b.saveModel {
		if err := b.saver.Save(b.dir); err != nil {
			return true, errors.Wrapf(err, "consider: epoch %v", epoch)
		}
	}
	return true, errors.Wrapf(b.score.Save(filepath.Join(b.dir, ScoreFile)),
		"consider: epoch %v", epoch)
}

// Score returns the current best score and whether any evaluation
// has been selected yet
func (b *Best) Score() (BestScore, bool) {
	return b.score, !math.IsInf(b.best, -1)
}

// Replay recomputes the BestScore that selection would end with after
// considering each evaluation in h at the corresponding epoch. Nothing
// is saved.
func Replay(h []tracker.Evaluation, epochs []int) (BestScore, error) {
	if len(h) != len(epochs) {
		return BestScore{}, errors.Errorf("replay: %v evaluations but %v "+
			"epochs", len(h), len(epochs))
	}

	b := NewBest("", nil, false)
	for i := range h {
		if _, err := b.Consider(h[i], epochs[i]); err != nil {
			return BestScore{}, errors.Wrap(err, "replay")
		}
	}

	score, ok := b.Score()
	if !ok {
		return BestScore{}, errors.Wrap(ErrNoEvaluations, "replay")
	}
	return score, nil
}

// Epochs returns the epochs at which n evaluations are performed when
// evaluating every evalFreq epochs
func Epochs(n, evalFreq int) []int {
	epochs := make([]int, n)
	for i := range epochs {
		epochs[i] = (i + 1) * evalFreq
	}
	return epochs
}

// Save saves the BestScore as JSON to filename, overwriting any
// previous version of the file
func (s BestScore) Save(filename string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "save")
	}
	return errors.Wrap(os.WriteFile(filename, data, 0644), "save")
}

// LoadBestScore loads a BestScore saved to filename
func LoadBestScore(filename string) (BestScore, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return BestScore{}, errors.Wrap(err, "loadBestScore")
	}

	var s BestScore
	if err := json.Unmarshal(data, &s); err != nil {
		return BestScore{}, errors.Wrap(err, "loadBestScore")
	}
	return s, nil
}
