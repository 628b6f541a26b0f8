package models

import "time"

// LectureNotes are structured study notes for one source
type LectureNotes struct {
	Title              string             `json:"title"`
	Summary            string             `json:"summary"`
	LearningObjectives []string           `json:"learningObjectives"`
	Vocabulary         []VocabularyEntry  `json:"vocabulary"`
	KeyPoints          []string           `json:"keyPoints"`
	DetailedNotes      string             `json:"detailedNotes"`
	PracticeQuestions  []PracticeQuestion `json:"practiceQuestions"`
	StudyTips          []string           `json:"studyTips"`
	WordCount          int                `json:"wordCount"`
	Timestamp          time.Time          `json:"timestamp"`
}

type VocabularyEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

type PracticeQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SlideType is either a title slide or a content slide
type SlideType string

const (
	SlideTitle   SlideType = "title"
	SlideContent SlideType = "content"
)

// SlideDeck is a generated presentation outline
type SlideDeck struct {
	Title       string   `json:"title"`
	Theme       string   `json:"theme"`
	TotalSlides int      `json:"totalSlides"`
	Slides      []Slide  `json:"slides"`
	DesignTips  []string `json:"designTips"`
}

// SlideCount is the authoritative number of slides for navigation.
// TotalSlides is whatever the model reported.
func (d SlideDeck) SlideCount() int {
	return len(d.Slides)
}

type Slide struct {
	SlideNumber   int       `json:"slideNumber"`
	Type          SlideType `json:"type"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle,omitempty"`
	Content       []string  `json:"content"`
	SpeakerNotes  string    `json:"speakerNotes,omitempty"`
	AnimationType string    `json:"animationType"`
}

// MindMap is a central topic with branches of subtopics
type MindMap struct {
	CentralTopic string          `json:"centralTopic"`
	CentralEmoji string          `json:"centralEmoji"`
	Branches     []Branch        `json:"branches"`
	Connections  []MapConnection `json:"connections"`
	TotalNodes   int             `json:"totalNodes"`
}

type Branch struct {
	ID        int        `json:"id"`
	Topic     string     `json:"topic"`
	Emoji     string     `json:"emoji"`
	Color     string     `json:"color"`
	Subtopics []Subtopic `json:"subtopics"`
}

type Subtopic struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Items       []string `json:"items"`
	Connections []string `json:"connections"`
}

type MapConnection struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"`
}

// Requested mind map shape
const (
	MindMapBranches       = 5
	MindMapMinSubtopics   = 2
	MindMapMaxSubtopics   = 3
	mindMapCoverageTarget = MindMapBranches * MindMapMinSubtopics
)

// CountNodes is the central node plus every branch and subtopic
func (m MindMap) CountNodes() int {
	n := 1 + len(m.Branches)
	for _, b := range m.Branches {
		n += len(b.Subtopics)
	}
	return n
}

// Coverage reports how much of the requested 5x2 structure is present, in [0,1].
// Extra branches or subtopics do not raise it above 1.
func (m MindMap) Coverage() float64 {
	got := 0
	for i, b := range m.Branches {
		if i >= MindMapBranches {
			break
		}
		got += min(len(b.Subtopics), MindMapMinSubtopics)
	}
	return float64(got) / float64(mindMapCoverageTarget)
}

// Quiz is a generated assessment
type Quiz struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Difficulty     Difficulty `json:"difficulty"`
	TotalQuestions int        `json:"totalQuestions"`
	Questions      []Question `json:"questions"`
	TimeLimit      int        `json:"timeLimit"`
	PassingScore   int        `json:"passingScore"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// TotalPoints sums every question, including free-text ones
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// ApplyDifficulty fixes the difficulty and resets every question's points to the tier value
func (q *Quiz) ApplyDifficulty(d Difficulty) {
	q.Difficulty = d
	for i := range q.Questions {
		q.Questions[i].Points = d.Points()
	}
}

// FlashcardSet is a generated deck of cards
type FlashcardSet struct {
	Title      string      `json:"title"`
	Cards      []Flashcard `json:"cards"`
	TotalCards int         `json:"totalCards"`
	Categories []string    `json:"categories"`
}

type Flashcard struct {
	ID         string     `json:"id"`
	Front      string     `json:"front"`
	Back       string     `json:"back"`
	Hint       string     `json:"hint"`
	Difficulty Difficulty `json:"difficulty"`
	Category   string     `json:"category"`
	MemoryTip  string     `json:"memoryTip"`
	Example    string     `json:"example"`
}
