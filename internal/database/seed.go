package database

import (
	"context"
	"fmt"
	"time"
)

type seedPillar struct {
	ID          int
	Name        string
	Description string
	Icon        string
	Color       string
}

var defaultPillars = []seedPillar{
	{1, "Independence & Problem-Solving", "Helps children build confidence in solving problems and making decisions on their own.", "🧠", "#F7B801"},
	{2, "Growth Mindset & Resilience", "Focuses on teaching persistence, learning from failure, and bouncing back.", "🌱", "#38A169"},
	{3, "Social Confidence & Communication", "Builds skills in expressing themselves, empathy, and handling social situations.", "🗣️", "#4299E1"},
	{4, "Purpose & Strength Discovery", "Encourages exploration of talents, passions, and long-term goals.", "⭐", "#805AD5"},
	{5, "Managing Fear & Anxiety", "Helps children recognize and manage fears in a healthy way.", "🛡️", "#E53E3E"},
}

type seedTrait struct {
	ID       int
	PillarID int
	Code     string
	Name     string
}

var defaultTraits = []seedTrait{
	{1, 1, "independence", "Independence"},
	{2, 1, "problem_solving", "Problem Solving"},
	{3, 2, "resilience", "Resilience"},
	{4, 2, "persistence", "Persistence"},
	{5, 3, "communication", "Communication"},
	{6, 3, "empathy", "Empathy"},
	{7, 4, "curiosity", "Curiosity"},
	{8, 4, "self_discovery", "Self-Discovery"},
	{9, 5, "courage", "Courage"},
	{10, 5, "emotional_regulation", "Emotional Regulation"},
}

type seedChallenge struct {
	ID         string
	PillarID   int
	Title      string
	Goal       string
	AgeRange   string
	Steps      string
	Tip        string
	Weights    map[int]float64
	Difficulty int
}

var defaultChallenges = []seedChallenge{
	{"c-1-5-8-pack-bag", 1, "Pack Your Own Bag", "Let your child pack their school bag without help.", "5-8",
		`["Make a checklist together","Let them pack alone","Review the bag together"]`, "Resist the urge to fix small mistakes.", map[int]float64{1: 1.0, 2: 0.5}, 1},
	{"c-1-8-12-plan-meal", 1, "Plan a Family Meal", "Your child plans and shops for one family dinner.", "8-12",
		`["Pick a recipe","Write a shopping list","Cook with supervision"]`, "Budget limits make this more interesting.", map[int]float64{1: 1.0, 2: 1.0}, 2},
	{"c-2-5-8-try-again", 2, "Try It Again", "Pick something hard and try it three times.", "5-8",
		`["Choose a tricky task","Try it three times","Talk about what changed"]`, "Praise the effort, not the result.", map[int]float64{3: 1.0, 4: 1.0}, 1},
	{"c-2-8-12-mistake-story", 2, "My Favourite Mistake", "Share a mistake and what it taught you.", "8-12",
		`["Parent shares a mistake first","Child shares one","Name the lesson"]`, "Keep it light and curious.", map[int]float64{3: 1.5}, 2},
	{"c-3-5-8-order-food", 3, "Order for Yourself", "Your child orders their own food at a cafe.", "5-8",
		`["Practice at home","Order at the counter","Celebrate afterwards"]`, "Stand close but let them speak.", map[int]float64{5: 1.0, 9: 0.5}, 1},
	{"c-3-8-12-kind-call", 3, "Make a Kind Call", "Call a relative just to ask how they are.", "8-12",
		`["Choose who to call","Prepare two questions","Make the call"]`, "Short calls are fine.", map[int]float64{5: 1.0, 6: 1.0}, 2},
	{"c-4-5-8-strength-hunt", 4, "Strength Hunt", "Spot three things your child did well today.", "5-8",
		`["Watch for strengths","Write them down","Share them at bedtime"]`, "Be specific.", map[int]float64{8: 1.0}, 1},
	{"c-4-8-12-passion-project", 4, "Passion Project Hour", "Spend an hour on something your child loves.", "8-12",
		`["Pick the activity","Protect the hour","Ask what they enjoyed"]`, "Follow their lead.", map[int]float64{7: 1.0, 8: 1.0}, 2},
	{"c-5-5-8-brave-step", 5, "One Brave Step", "Take one small step toward something scary.", "5-8",
		`["Name the fear","Pick a tiny step","Take it together"]`, "Small is the point.", map[int]float64{9: 2.0}, 1},
	{"c-5-8-12-worry-box", 5, "Worry Box", "Write worries down and put them in a box.", "8-12",
		`["Decorate a box","Write the worries","Open it together in a week"]`, "Many worries shrink on their own.", map[int]float64{10: 1.0, 9: 0.5}, 1},
}

type seedReward struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Type        string
	Value       int
	PillarID    *int
}

func defaultRewards() []seedReward {
	var rewards []seedReward
	for _, v := range []int{5, 10, 20, 50, 100} {
		rewards = append(rewards, seedReward{
			ID:          fmt.Sprintf("milestone-%d", v),
			Title:       fmt.Sprintf("%d Challenges Completed", v),
			Description: fmt.Sprintf("Completed %d challenges.", v),
			Icon:        "🏆",
			Type:        "milestone",
			Value:       v,
		})
	}
	for _, v := range []int{3, 5, 10, 15, 20, 30} {
		rewards = append(rewards, seedReward{
			ID:          fmt.Sprintf("streak-%d", v),
			Title:       fmt.Sprintf("%d Day Streak", v),
			Description: fmt.Sprintf("Completed a challenge %d days in a row.", v),
			Icon:        "🔥",
			Type:        "streak",
			Value:       v,
		})
	}
	for _, p := range defaultPillars {
		pillarID := p.ID
		for _, v := range []int{3, 10} {
			rewards = append(rewards, seedReward{
				ID:          fmt.Sprintf("pillar-%d-%d", p.ID, v),
				Title:       fmt.Sprintf("%s: %d Challenges", p.Name, v),
				Description: fmt.Sprintf("Completed %d challenges in %s.", v, p.Name),
				Icon:        p.Icon,
				Type:        "pillar",
				Value:       v,
				PillarID:    &pillarID,
			})
		}
	}
	return rewards
}

type seedPracticeModule struct {
	ID          string
	PillarID    int
	Title       string
	Description string
	Steps       string
}

// practiceSeededAt is the created_at of every seeded practice module
var practiceSeededAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

var defaultPracticeModules = []seedPracticeModule{
	{"pm-1-own-it", 1, "I Can Do It Myself", "Practice breaking a task into small steps and finishing it alone.",
		`[{"id":"s1","title":"Pick a task","content":"Choose one everyday task your child usually asks for help with.","type":"text"},` +
			`{"id":"s2","title":"Break it down","content":"Which step comes first?","type":"interactive","options":[{"text":"Gather what you need","isCorrect":true},{"text":"Ask someone else to do it","isCorrect":false}]},` +
			`{"id":"s3","title":"Talk about it","content":"What part felt easiest? What felt hardest?","type":"reflection"}]`},
	{"pm-2-not-yet", 2, "The Power of Yet", "Turn \"I can't\" into \"I can't yet\".",
		`[{"id":"s1","title":"Spot the phrase","content":"Listen for moments your child says they can't do something.","type":"text"},` +
			`{"id":"s2","title":"Add yet","content":"Which sentence shows a growth mindset?","type":"interactive","options":[{"text":"I can't ride a bike yet","isCorrect":true},{"text":"I'll never ride a bike","isCorrect":false}]},` +
			`{"id":"s3","title":"Remember a win","content":"Name something that used to be hard and is easy now.","type":"reflection"}]`},
	{"pm-3-say-hello", 3, "Say Hello", "Practice greetings and starting a conversation.",
		`[{"id":"s1","title":"Eyes and smile","content":"Practice making eye contact and smiling while saying hello.","type":"text"},` +
			`{"id":"s2","title":"Next words","content":"What can you say after hello?","type":"interactive","options":[{"text":"What's your favorite game?","isCorrect":true},{"text":"Nothing, just walk away","isCorrect":false}]},` +
			`{"id":"s3","title":"How did it feel","content":"Who would you like to say hello to this week?","type":"reflection"}]`},
	{"pm-4-spark", 4, "Find Your Spark", "Notice what your child loves doing when nobody asks them to.",
		`[{"id":"s1","title":"Watch and wonder","content":"Write down three things your child chose to do this week.","type":"text"},` +
			`{"id":"s2","title":"Find the thread","content":"Talk about what those activities have in common.","type":"text"},` +
			`{"id":"s3","title":"Dream a little","content":"If you could spend a whole day on one thing, what would it be?","type":"reflection"}]`},
	{"pm-5-brave-breath", 5, "Brave Breathing", "A calming breath to use before something scary.",
		`[{"id":"s1","title":"Smell the flower","content":"Breathe in slowly through the nose for four counts.","type":"text"},` +
			`{"id":"s2","title":"Blow the candle","content":"When should you use brave breathing?","type":"interactive","options":[{"text":"Before something that feels scary","isCorrect":true},{"text":"Only when you are asleep","isCorrect":false}]},` +
			`{"id":"s3","title":"Check in","content":"How does your body feel after three brave breaths?","type":"reflection"}]`},
}

// SeedReferenceData inserts the pillars, traits, starter challenges, reward
// catalog, practice modules and theme weeks. Existing rows are left untouched, so it is safe to
// run on every start.
func (db *DB) SeedReferenceData(ctx context.Context) error {
	d := db.Dialect
	return db.InTx(ctx, func(tx *Tx) error {
		for _, p := range defaultPillars {
			if _, err := tx.ExecContext(ctx, d.InsertIgnore(
				"INSERT INTO pillars (id, name, description, icon, color) VALUES (?, ?, ?, ?, ?)"),
				p.ID, p.Name, p.Description, p.Icon, p.Color); err != nil {
				return fmt.Errorf("failed to seed pillar %d: %w", p.ID, err)
			}
		}

		for _, t := range defaultTraits {
			if _, err := tx.ExecContext(ctx, d.InsertIgnore(
				"INSERT INTO traits (id, pillar_id, code, name) VALUES (?, ?, ?, ?)"),
				t.ID, t.PillarID, t.Code, t.Name); err != nil {
				return fmt.Errorf("failed to seed trait %s: %w", t.Code, err)
			}
		}

		for _, c := range defaultChallenges {
			if _, err := tx.ExecContext(ctx, d.InsertIgnore(
				`INSERT INTO challenges (id, pillar_id, title, description, goal, steps, example_dialogue, tip, age_range, difficulty_level)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				c.ID, c.PillarID, c.Title, c.Goal, c.Goal, c.Steps, "", c.Tip, c.AgeRange, c.Difficulty); err != nil {
				return fmt.Errorf("failed to seed challenge %s: %w", c.ID, err)
			}
			for traitID, weight := range c.Weights {
				if _, err := tx.ExecContext(ctx, d.InsertIgnore(
					"INSERT INTO challenge_traits (challenge_id, trait_id, weight) VALUES (?, ?, ?)"),
					c.ID, traitID, weight); err != nil {
					return fmt.Errorf("failed to seed trait weight for %s: %w", c.ID, err)
				}
			}
		}

		for _, r := range defaultRewards() {
			if _, err := tx.ExecContext(ctx, d.InsertIgnore(
				"INSERT INTO rewards (id, title, description, icon, type, criteria_value, pillar_id) VALUES (?, ?, ?, ?, ?, ?, ?)"),
				r.ID, r.Title, r.Description, r.Icon, r.Type, r.Value, r.PillarID); err != nil {
				return fmt.Errorf("failed to seed reward %s: %w", r.ID, err)
			}
		}

		for _, m := range defaultPracticeModules {
			if _, err := tx.ExecContext(ctx, d.InsertIgnore(
				"INSERT INTO practice_modules (id, pillar_id, title, description, steps, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
				m.ID, m.PillarID, m.Title, m.Description, m.Steps, practiceSeededAt); err != nil {
				return fmt.Errorf("failed to seed practice module %s: %w", m.ID, err)
			}
		}

		// ISO-ish week numbers run to 53; pillars rotate weekly
		for week := 1; week <= 53; week++ {
			p := defaultPillars[(week-1)%len(defaultPillars)]
			if _, err := tx.ExecContext(ctx, d.InsertIgnore(
				"INSERT INTO theme_weeks (id, week_number, title, description, pillar_id) VALUES (?, ?, ?, ?, ?)"),
				week, week, p.Name+" Week", p.Description, p.ID); err != nil {
				return fmt.Errorf("failed to seed theme week %d: %w", week, err)
			}
		}

		return nil
	})
}
