package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// MaxDescriptionLength bounds the optional task description.
const MaxDescriptionLength = 750

// IsValid reports whether the status is part of the workflow enumeration.
func (s TaskStatus) IsValid() bool {
	return s == StatusToDo || s == StatusInProgress || s == StatusDone
}

type Task struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Description    string              `bson:"description,omitempty" json:"description,omitempty"`
	ProjectID      primitive.ObjectID  `bson:"projectId" json:"projectId"`
	AssignedUserID *primitive.ObjectID `bson:"assignedUserId,omitempty" json:"assignedUserId,omitempty"`
	Status         TaskStatus          `bson:"status" json:"status"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}
