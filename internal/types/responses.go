package types

import (
	"time"

	"github.com/taskforge-dev/taskforge/internal/models"
)

// Response shapes returned on the wire. Related records are embedded as
// read-only objects; write requests reference them by ID only.

type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	DateJoined time.Time `json:"date_joined"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type ProjectResponse struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Owner       UserResponse `json:"owner"`
	CreatedAt   time.Time    `json:"created_at"`
}

type ProjectMemberResponse struct {
	ID      uint         `json:"id"`
	Project uint         `json:"project"`
	User    UserResponse `json:"user"`
	Role    string       `json:"role"`
}

type TaskResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	Project     ProjectResponse `json:"project"`
	AssignedTo  *UserResponse   `json:"assigned_to"`
	CreatedAt   time.Time       `json:"created_at"`
	DueDate     *time.Time      `json:"due_date"`
}

type CommentResponse struct {
	ID        uint         `json:"id"`
	Content   string       `json:"content"`
	User      UserResponse `json:"user"`
	Task      uint         `json:"task"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		DateJoined: user.CreatedAt,
	}
}

func NewProjectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Owner:       NewUserResponse(project.Owner),
		CreatedAt:   project.CreatedAt,
	}
}

func NewProjectMemberResponse(member models.ProjectMember) ProjectMemberResponse {
	return ProjectMemberResponse{
		ID:      member.ID,
		Project: member.ProjectID,
		User:    NewUserResponse(member.User),
		Role:    member.Role,
	}
}

func NewTaskResponse(task models.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Project:     NewProjectResponse(task.Project),
		CreatedAt:   task.CreatedAt,
		DueDate:     task.DueDate,
	}

	if task.AssignedTo != nil {
		assignee := NewUserResponse(*task.AssignedTo)
		response.AssignedTo = &assignee
	}

	return response
}

func NewCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		User:      NewUserResponse(comment.User),
		Task:      comment.TaskID,
		CreatedAt: comment.CreatedAt,
	}
}
