/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	adapterrepo "github.com/eslsoft/leitbox/internal/adapter/repository"
	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/usecase"
)

// simulateCmd drives the engine against an in-memory store with a mock
// clock. Useful as an executable sanity check of the scheduling behavior.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a synthetic learner against an in-memory engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		items, _ := cmd.Flags().GetInt("items")
		pace, _ := cmd.Flags().GetInt("pace")
		skill, _ := cmd.Flags().GetFloat64("skill")
		seed, _ := cmd.Flags().GetInt64("seed")

		sim := newSimulation(items, int32(pace), skill, seed)
		return sim.run(cmd.Context(), days)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Int("days", 14, "number of simulated days")
	simulateCmd.Flags().Int("items", 60, "catalog size of the synthetic list")
	simulateCmd.Flags().Int("pace", 20, "assignment base pace (new items per day)")
	simulateCmd.Flags().Float64("skill", 0.8, "probability the learner answers correctly")
	simulateCmd.Flags().Int64("seed", 1, "random seed for reproducible runs")
}

const (
	simLearnerID = 1
	simListID    = 1
	simClassID   = 1
)

type simulation struct {
	store   *adapterrepo.MemStore
	queue   usecase.QueueUsecase
	tests   usecase.TestUsecase
	outcome usecase.OutcomeUsecase

	now   time.Time
	rng   *rand.Rand
	skill float64
}

func newSimulation(itemCount int, pace int32, skill float64, seed int64) *simulation {
	store := adapterrepo.NewMemStore()
	store.SeedList(simListID, syntheticCatalog(itemCount))
	store.SeedAssignment(entity.Assignment{
		ClassID:          simClassID,
		ListID:           simListID,
		BasePace:         pace,
		TestOptionsCount: 4,
	})

	sim := &simulation{
		store: store,
		now:   time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
		rng:   rand.New(rand.NewSource(seed)),
		skill: skill,
	}
	clock := func() time.Time { return sim.now }
	sim.queue = usecase.NewQueueUsecaseWithClock(store, 0, clock)
	sim.tests = usecase.NewTestUsecaseWithClock(store, 0, clock)
	sim.outcome = usecase.NewOutcomeUsecaseWithClock(store, nil, clock)
	return sim
}

func (s *simulation) run(ctx context.Context, days int) error {
	for day := 1; day <= days; day++ {
		fmt.Printf("--- day %d (%s) ---\n", day, s.now.Format("2006-01-02"))

		if err := s.studySession(ctx); err != nil {
			return err
		}

		// A review test every third day, two hours after studying.
		if day%3 == 0 {
			s.now = s.now.Add(2 * time.Hour)
			if err := s.takeTest(ctx, day); err != nil {
				return err
			}
		}

		report, err := s.queue.PacingReport(ctx, simLearnerID, simListID, simClassID)
		if err != nil {
			return fmt.Errorf("pacing report: %w", err)
		}
		fmt.Printf("pacing: daily_new=%d intervention=%.2f adjusted_pace=%d test_size=%d remedial=%v\n",
			report.DailyNewLimit, report.InterventionLevel, report.AdjustedPace, report.ReviewTestSize, report.Remedial)

		s.now = s.now.Add(22 * time.Hour)
	}
	return nil
}

func (s *simulation) studySession(ctx context.Context) error {
	queue, err := s.queue.ComposeStudyQueue(ctx, simLearnerID, simListID, simClassID, 0)
	if err != nil {
		return fmt.Errorf("compose queue: %w", err)
	}
	fmt.Printf("queue: %d items\n", len(queue))

	for _, item := range queue {
		rating := entity.RatingEasy
		switch roll := s.rng.Float64(); {
		case roll > s.skill+0.1:
			rating = entity.RatingAgain
		case roll > s.skill:
			rating = entity.RatingHard
		}
		if err := s.outcome.RecordStudyRating(ctx, simLearnerID, item.ID, rating); err != nil {
			return fmt.Errorf("rate item %d: %w", item.ID, err)
		}
	}
	return nil
}

func (s *simulation) takeTest(ctx context.Context, day int) error {
	test, err := s.tests.ComposeTest(ctx, simLearnerID, simListID, simClassID, 0)
	if err != nil {
		return fmt.Errorf("compose test: %w", err)
	}
	if len(test.Questions) == 0 {
		fmt.Println("test: nothing to test")
		return nil
	}

	answers := make([]entity.AttemptAnswer, 0, len(test.Questions))
	for _, q := range test.Questions {
		answers = append(answers, entity.AttemptAnswer{
			ItemID:  q.Item.ID,
			Correct: s.rng.Float64() < s.skill,
		})
	}

	attempt, err := s.outcome.SubmitTestAttempt(ctx, simLearnerID, simListID,
		fmt.Sprintf("sim-day-%d", day), answers, int32(len(test.Questions)))
	if err != nil {
		return fmt.Errorf("submit attempt: %w", err)
	}
	fmt.Printf("test: %d questions, score=%d credibility=%.2f retention=%.2f\n",
		len(test.Questions), attempt.Score, attempt.CredibilitySnapshot, attempt.RetentionSnapshot)
	return nil
}

// syntheticCatalog fabricates a list of items with rotating parts of speech
// so distractor selection has same-POS pools to draw from.
func syntheticCatalog(count int) []entity.VocabItem {
	posCycle := []string{"n.", "v.", "adj.", "adv."}
	items := make([]entity.VocabItem, 0, count)
	for i := range count {
		pos := posCycle[i%len(posCycle)]
		items = append(items, entity.VocabItem{
			ID:           int64(i + 1),
			ListID:       simListID,
			Term:         fmt.Sprintf("term-%03d", i+1),
			PartOfSpeech: pos,
			Definitions: map[entity.Language]string{
				entity.LanguageEnglish: fmt.Sprintf("definition of term-%03d (%s)", i+1, pos),
			},
		})
	}
	return items
}
