package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"gorm.io/gorm"
)

type CreateProjectMemberRequest struct {
	Project *uint  `json:"project" binding:"required"`
	User    *uint  `json:"user" binding:"required"`
	Role    string `json:"role"`
}

// UpdateProjectMemberRequest only carries the role. The (project, user) pair
// is fixed by the record's identity, so role changes never hit the
// uniqueness check.
type UpdateProjectMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

func CreateProjectMember(ctx *gin.Context) {
	var body CreateProjectMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Both project and user are required"})
		return
	}

	role := body.Role

	if role == "" {
		role = types.RoleMember
	}

	if !types.ValidRole(role) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be admin or member"})
		return
	}

	var existing models.ProjectMember

	err := db.DB.Where("project_id = ? AND user_id = ?", *body.Project, *body.User).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing membership: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	member := models.ProjectMember{
		ProjectID: *body.Project,
		UserID:    *body.User,
		Role:      role,
	}

	// The unique constraint on (project_id, user_id) closes the race between
	// the check above and this insert.
	if err := db.DB.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
			return
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project or user does not exist"})
			return
		}
		log.Printf("Failed to create project member: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Preload("User").First(&member, member.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project member"})
		return
	}

	ctx.JSON(http.StatusCreated, types.NewProjectMemberResponse(member))
}

func ListProjectMembers(ctx *gin.Context) {
	var members []models.ProjectMember

	query := db.DB.Preload("User")

	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if err := query.Find(&members).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project members"})
		return
	}

	response := make([]types.ProjectMemberResponse, 0, len(members))

	for _, member := range members {
		response = append(response, types.NewProjectMemberResponse(member))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProjectMember(ctx *gin.Context) {
	var member models.ProjectMember

	if err := db.DB.Preload("User").First(&member, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project member not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project member"})
		}
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectMemberResponse(member))
}

func UpdateProjectMember(ctx *gin.Context) {
	var body UpdateProjectMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role is required"})
		return
	}

	if !types.ValidRole(body.Role) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be admin or member"})
		return
	}

	var member models.ProjectMember

	if err := db.DB.First(&member, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project member not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project member"})
		}
		return
	}

	if err := db.DB.Model(&member).Update("role", body.Role).Error; err != nil {
		log.Printf("Failed to update project member: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Preload("User").First(&member, member.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project member"})
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectMemberResponse(member))
}

func DeleteProjectMember(ctx *gin.Context) {
	var member models.ProjectMember

	if err := db.DB.First(&member, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project member not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project member"})
		}
		return
	}

	if err := db.DB.Delete(&member).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project member"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
