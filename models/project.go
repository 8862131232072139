package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project references its members by id. A project's tasks are not stored on
// the document; Task.projectId is the owning side and the task list is always
// a derived query.
type Project struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	AssignedUserIDs []primitive.ObjectID `bson:"assignedUserIds" json:"assignedUserIds"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// TaskWithAssignee is a task enriched with its assigned user, if any.
// The user's password is never serialized.
type TaskWithAssignee struct {
	Task
	AssignedUser *User `json:"assignedUser,omitempty"`
}

// ProjectWithTasks is the project list representation: the project document
// plus its tasks resolved by projectId.
type ProjectWithTasks struct {
	Project
	Tasks []TaskWithAssignee `json:"tasks"`
}
