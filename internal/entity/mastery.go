package entity

import (
	"strings"
	"time"
)

// Rating is a learner's self-assessment after studying an item.
type Rating string

const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingEasy  Rating = "easy"
)

// ParseRating converts an arbitrary string into a supported Rating value.
func ParseRating(raw string) (Rating, error) {
	switch Rating(strings.ToLower(strings.TrimSpace(raw))) {
	case RatingAgain:
		return RatingAgain, nil
	case RatingHard:
		return RatingHard, nil
	case RatingEasy:
		return RatingEasy, nil
	default:
		return "", ErrUnknownRating
	}
}

const (
	// MinBox is the floor of the Leitner box scale; every transition clamps here.
	MinBox int32 = 1
	// MasteredBox marks the boundary of the mastered range.
	MasteredBox int32 = 4
	// GlassCeilingBox is the box just below mastery that easy ratings alone
	// cannot pass without a sustained streak.
	GlassCeilingBox int32 = 3

	graduationStreak       int32 = 3
	reviewDelayPerBox            = 15 * time.Minute
	maxReviewDelay               = 24 * time.Hour
	gradedPromotionBox     int32 = 4
	gradedRePromotionBox   int32 = 5
	gradedDemotionBox            = MinBox
)

// ReviewDelay returns how long an item rests before it is due again. The
// 15-minutes-per-box formula caps at a single day even for mastered items;
// the learning product depends on these short horizons, so they stay as-is.
func ReviewDelay(box int32) time.Duration {
	delay := time.Duration(box) * reviewDelayPerBox
	if delay > maxReviewDelay {
		return maxReviewDelay
	}
	return delay
}

// MasteryRecord tracks one learner's memory of one vocabulary item.
type MasteryRecord struct {
	LearnerID      int64     `json:"learner_id"`
	ItemID         int64     `json:"item_id"`
	Box            int32     `json:"box"`
	Streak         int32     `json:"streak"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	NextReviewAt   time.Time `json:"next_review_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Mastered reports whether the item sits in the mastered range.
func (r MasteryRecord) Mastered() bool { return r.Box >= MasteredBox }

// Due reports whether the item's scheduled review time has passed.
func (r MasteryRecord) Due(now time.Time) bool { return !r.NextReviewAt.After(now) }

// ApplyRating advances the record along the self-paced study path.
//
// "again" drops straight to box 1, "hard" steps down one box, and "easy"
// climbs one box until the glass ceiling; graduating past it requires three
// consecutive easy ratings while sitting at box 3.
func (r *MasteryRecord) ApplyRating(rating Rating, now time.Time) error {
	switch rating {
	case RatingAgain:
		r.Box = MinBox
		r.Streak = 0
	case RatingHard:
		if r.Box > MinBox {
			r.Box--
		}
		r.Streak = 0
	case RatingEasy:
		r.Streak++
		switch {
		case r.Streak >= graduationStreak && r.Box == GlassCeilingBox:
			r.Box = MasteredBox
			r.Streak = 0
		case r.Box < GlassCeilingBox:
			r.Box++
		default:
			r.Box = GlassCeilingBox
		}
	default:
		return ErrUnknownRating
	}
	r.reschedule(now)
	return nil
}

// ApplyVerdict advances the record along the graded-test path. A correct
// answer is instant promotion (demonstrated recall outranks the gradual
// climb); an incorrect answer resets to box 1. Both reset the streak.
func (r *MasteryRecord) ApplyVerdict(correct bool, now time.Time) {
	if correct {
		if r.Box < GlassCeilingBox {
			r.Box = gradedPromotionBox
		} else {
			r.Box = gradedRePromotionBox
		}
	} else {
		r.Box = gradedDemotionBox
	}
	r.Streak = 0
	r.reschedule(now)
}

func (r *MasteryRecord) reschedule(now time.Time) {
	if r.Box < MinBox {
		r.Box = MinBox
	}
	r.LastReviewedAt = now
	r.NextReviewAt = now.Add(ReviewDelay(r.Box))
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// MasteryState distinguishes an item the learner has never touched from one
// with an explicit record. The "unseen defaults to box 1" rule is applied
// deliberately unevenly across the composers, so call sites must choose
// between Record and EffectiveBox instead of relying on a blanket default.
type MasteryState struct {
	record *MasteryRecord
}

// Unseen is the state of an item without a mastery record.
func Unseen() MasteryState { return MasteryState{} }

// Recorded wraps an existing mastery record.
func Recorded(rec MasteryRecord) MasteryState { return MasteryState{record: &rec} }

// Seen reports whether an explicit record exists.
func (s MasteryState) Seen() bool { return s.record != nil }

// Record returns the underlying record when one exists.
func (s MasteryState) Record() (MasteryRecord, bool) {
	if s.record == nil {
		return MasteryRecord{}, false
	}
	return *s.record, true
}

// EffectiveBox treats absent records as box 1.
func (s MasteryState) EffectiveBox() int32 {
	if s.record == nil {
		return MinBox
	}
	return s.record.Box
}

// Materialize returns the existing record, or a fresh box-1 record for the
// given learner and item when none exists yet.
func (s MasteryState) Materialize(learnerID, itemID int64) MasteryRecord {
	if s.record != nil {
		return *s.record
	}
	return MasteryRecord{LearnerID: learnerID, ItemID: itemID, Box: MinBox}
}
