package score

import "sort"

// d4rl holds the reference returns used by D4RL to normalize scores
var d4rl = map[string]Reference{
	// Locomotion
	"halfcheetah": {Min: -280.178953, Max: 12135.0},
	"hopper":      {Min: -20.272305, Max: 3234.3},
	"walker2d":    {Min: 1.629008, Max: 4592.3},
	"ant":         {Min: -325.6, Max: 3879.7},

	// AntMaze returns are success indicators
	"antmaze": {Min: 0.0, Max: 1.0},

	// Adroit
	"pen":      {Min: 96.262799, Max: 3076.8331017826877},
	"hammer":   {Min: -274.856578, Max: 12794.134825156867},
	"door":     {Min: -56.512833, Max: 2880.5693087298737},
	"relocate": {Min: -6.425911, Max: 4233.877797728884},

	// Franka Kitchen counts completed subtasks
	"kitchen": {Min: 0.0, Max: 4.0},

	// Maze2D
	"maze2d-open":   {Min: 0.01, Max: 20.66},
	"maze2d-umaze":  {Min: 23.85, Max: 161.86},
	"maze2d-medium": {Min: 13.13, Max: 277.39},
	"maze2d-large":  {Min: 6.7, Max: 273.99},
}

// D4RLFamilies returns the sorted names of the environment families
// with D4RL reference returns
func D4RLFamilies() []string {
	families := make([]string, 0, len(d4rl))
	for family := range d4rl {
		families = append(families, family)
	}
	sort.Strings(families)
	return families
}
