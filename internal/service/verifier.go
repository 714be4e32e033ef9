package service

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"sentinel-alarm/internal/model"
)

// Verify decides whether a submission completes the lock's task. Pure and
// deterministic; a wrong or unparsable submission is a verification failure,
// never an error.
func Verify(lock *model.Lock, submission string) bool {
	switch lock.TaskType {
	case model.TaskPuzzle:
		got := strings.ToLower(strings.TrimSpace(submission))
		want := strings.ToLower(strings.TrimSpace(lock.PuzzleAnswer))
		return got != "" && got == want
	case model.TaskSteps:
		steps, err := strconv.Atoi(strings.TrimSpace(submission))
		if err != nil || steps < 0 {
			return false
		}
		return steps >= lock.StepsTarget
	case model.TaskPhoto:
		// Placeholder until a real capture-analysis integration exists:
		// any non-empty submission counts as a photo.
		return strings.TrimSpace(submission) != ""
	}
	return false
}

// NewPuzzle generates a small arithmetic question with its answer. Easy
// enough to solve half-awake, hard enough to require waking up.
func NewPuzzle() (question, answer string) {
	a := rand.IntN(9) + 2
	b := rand.IntN(9) + 2
	if rand.IntN(2) == 0 {
		return fmt.Sprintf("What is %d + %d?", a, b), strconv.Itoa(a + b)
	}
	return fmt.Sprintf("What is %d x %d?", a, b), strconv.Itoa(a * b)
}

// NewStepTarget picks a step goal for a simulated lock. A short walk, not a
// workout.
func NewStepTarget() int {
	return 20 + rand.IntN(41)
}
