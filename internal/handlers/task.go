package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"github.com/taskforge-dev/taskforge/internal/utils"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Project     *uint      `json:"project" binding:"required"`
	AssignedTo  *uint      `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskRequest keeps assigned_to raw so an explicit null (unassign) is
// distinguishable from the field being absent (unchanged).
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	AssignedTo  json.RawMessage `json:"assigned_to"`
	DueDate     *time.Time      `json:"due_date"`
}

// CreateTask requires an explicit project. A task created without an
// assignee is assigned to the caller.
func CreateTask(ctx *gin.Context) {
	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title and project are required"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	status := body.Status

	if status == "" {
		status = types.StatusTodo
	}

	if !types.ValidStatus(status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status must be todo, in_progress or done"})
		return
	}

	priority := body.Priority

	if priority == "" {
		priority = types.PriorityMedium
	}

	if !types.ValidPriority(priority) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be low, medium or high"})
		return
	}

	assignedTo := body.AssignedTo

	if assignedTo == nil {
		assignedTo = &userID
	}

	task := models.Task{
		Title:        body.Title,
		Description:  body.Description,
		Status:       status,
		Priority:     priority,
		ProjectID:    *body.Project,
		AssignedToID: assignedTo,
		DueDate:      body.DueDate,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project or assignee does not exist"})
			return
		}
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Preload("Project.Owner").Preload("AssignedTo").First(&task, task.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	ctx.JSON(http.StatusCreated, types.NewTaskResponse(task))
}

// ListTasks returns every task, or only a project's tasks when project_id is
// given.
func ListTasks(ctx *gin.Context) {
	var tasks []models.Task

	query := db.DB.Preload("Project.Owner").Preload("AssignedTo")

	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if err := query.Find(&tasks).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, types.NewTaskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTask(ctx *gin.Context) {
	var task models.Task

	if err := db.DB.Preload("Project.Owner").Preload("AssignedTo").First(&task, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

// UpdateTask applies a partial update. Status moves freely between todo,
// in_progress and done; there is no transition graph.
func UpdateTask(ctx *gin.Context) {
	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Status != nil && !types.ValidStatus(*body.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status must be todo, in_progress or done"})
		return
	}

	if body.Priority != nil && !types.ValidPriority(*body.Priority) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be low, medium or high"})
		return
	}

	var task models.Task

	if err := db.DB.First(&task, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	updates := make(map[string]interface{})

	if body.Title != nil {
		updates["title"] = *body.Title
	}

	if body.Description != nil {
		updates["description"] = *body.Description
	}

	if body.Status != nil {
		updates["status"] = *body.Status
	}

	if body.Priority != nil {
		updates["priority"] = *body.Priority
	}

	if len(body.AssignedTo) > 0 {
		if string(body.AssignedTo) == "null" {
			updates["assigned_to_id"] = nil
		} else {
			var assigneeID uint
			if err := json.Unmarshal(body.AssignedTo, &assigneeID); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "assigned_to must be a user id or null"})
				return
			}
			updates["assigned_to_id"] = assigneeID
		}
	}

	if body.DueDate != nil {
		updates["due_date"] = *body.DueDate
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&task).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assignee does not exist"})
				return
			}
			log.Printf("Failed to update task: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	if err := db.DB.Preload("Project.Owner").Preload("AssignedTo").First(&task, task.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
	var task models.Task

	if err := db.DB.First(&task, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	if err := db.DB.Delete(&task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
