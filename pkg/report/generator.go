// Package report synthesizes the content of a daily progress submission:
// the randomized work-done narrative, the productivity rating, and the
// date parts. Generation is ephemeral; nothing is persisted between runs.
package report

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"formpilot/pkg/config"
)

// bulletPrefix marks each task line in the rendered work-done block.
const bulletPrefix = "- "

// Submission is one generated report, regenerated on every run.
type Submission struct {
	Name         string
	WorkDone     string
	Difficulties string
	Agenda       string
	Year         int
	Month        int
	Day          int
	Rating       int
}

// Generator produces randomized submission content. The random source is
// injected so task selection is reproducible under a fixed seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator backed by the given source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeededGenerator creates a generator from a seed value.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Tasks selects today's task list: every required task, plus each optional
// task with its configured probability (an independent trial per entry),
// with the combined list uniformly shuffled.
func (g *Generator) Tasks(pool config.WorkTasks) []string {
	tasks := make([]string, 0, len(pool.RequiredTasks)+len(pool.OptionalTasks))
	tasks = append(tasks, pool.RequiredTasks...)

	for _, opt := range pool.OptionalTasks {
		if g.rng.Float64() < opt.Probability {
			tasks = append(tasks, opt.Task)
		}
	}

	g.rng.Shuffle(len(tasks), func(i, j int) {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	})
	return tasks
}

// WorkDone renders the selected tasks as a bulleted block, one line per
// task. An empty selection renders as an empty string; that is not an error.
func (g *Generator) WorkDone(pool config.WorkTasks) string {
	tasks := g.Tasks(pool)
	lines := make([]string, len(tasks))
	for i, task := range tasks {
		lines[i] = bulletPrefix + task
	}
	return strings.Join(lines, "\n")
}

// Rating draws a productivity rating uniformly from [Min, Max] inclusive.
func (g *Generator) Rating(r config.RatingRange) int {
	return r.Min + g.rng.Intn(r.Max-r.Min+1)
}

// Build assembles a complete submission from the config and the given
// submission time.
func (g *Generator) Build(cfg *config.Config, now time.Time) *Submission {
	return &Submission{
		Name:         cfg.UserData.Name,
		WorkDone:     g.WorkDone(cfg.WorkTasks),
		Difficulties: cfg.UserData.DifficultiesDefault,
		Agenda:       cfg.UserData.AgendaDefault,
		Year:         now.Year(),
		Month:        int(now.Month()),
		Day:          now.Day(),
		Rating:       g.Rating(cfg.UserData.RatingRange),
	}
}

// DateString renders the submission date as YYYY-MM-DD, the format
// date-type inputs accept.
func (s *Submission) DateString() string {
	return fmt.Sprintf("%04d-%02d-%02d", s.Year, s.Month, s.Day)
}
