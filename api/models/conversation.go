package models

import "time"

type Role string

const (
	RoleStudent   Role = "student"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a tutoring dialogue
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Learner is the context injected into every tutor prompt
type Learner struct {
	Name            string   `json:"name"`
	EnrolledCourses []string `json:"enrolled_courses"`
}
