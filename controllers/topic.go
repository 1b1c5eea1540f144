package controllers

import (
	"net/http"
	"strconv"
	"time"

	"capbot-api/config"
	"capbot-api/models"

	"github.com/gin-gonic/gin"
)

// GetTopics lists topics, optionally filtered by semester or supervisor
func GetTopics(c *gin.Context) {
	query := config.DB.Preload("Category").Preload("Supervisor").Preload("CurrentVersion").
		Where("delete_at IS NULL")

	if semesterID, err := strconv.Atoi(c.Query("semester_id")); err == nil && semesterID > 0 {
		query = query.Where("semester_id = ?", semesterID)
	}
	if supervisorID, err := strconv.Atoi(c.Query("supervisor_id")); err == nil && supervisorID > 0 {
		query = query.Where("supervisor_id = ?", supervisorID)
	}

	var topics []models.Topic
	if err := query.Order("topic_id ASC").Find(&topics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch topics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// GetTopic returns one topic with all its versions
func GetTopic(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic ID"})
		return
	}

	var topic models.Topic
	if err := config.DB.Preload("Category").Preload("Supervisor").Preload("CurrentVersion").
		Preload("Versions", "delete_at IS NULL").
		Where("topic_id = ? AND delete_at IS NULL", id).
		First(&topic).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"topic": topic})
}

type topicRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Objectives  string `json:"objectives"`
	CategoryID  *int   `json:"category_id"`
	SemesterID  int    `json:"semester_id" binding:"required"`
	MaxStudents int    `json:"max_students"`
}

// CreateTopic creates a topic supervised by the current lecturer
func CreateTopic(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.MaxStudents <= 0 {
		req.MaxStudents = 1
	}

	now := time.Now()
	topic := models.Topic{
		Title:        req.Title,
		Description:  req.Description,
		Objectives:   req.Objectives,
		CategoryID:   req.CategoryID,
		SupervisorID: userID,
		SemesterID:   req.SemesterID,
		MaxStudents:  req.MaxStudents,
		CreateAt:     &now,
	}

	if err := config.DB.Create(&topic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create topic"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"topic": topic})
}

type topicVersionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Objectives  string `json:"objectives"`
}

// CreateTopicVersion snapshots an edit as a new immutable version
func CreateTopicVersion(c *gin.Context) {
	topicID, err := strconv.Atoi(c.Param("id"))
	if err != nil || topicID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic ID"})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var topic models.Topic
	if err := config.DB.Where("topic_id = ? AND delete_at IS NULL", topicID).First(&topic).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
		return
	}

	var req topicVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var lastVersion int
	config.DB.Model(&models.TopicVersion{}).
		Where("topic_id = ?", topicID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&lastVersion)

	now := time.Now()
	version := models.TopicVersion{
		TopicID:       topicID,
		VersionNumber: lastVersion + 1,
		Title:         req.Title,
		Description:   req.Description,
		Objectives:    req.Objectives,
		Status:        models.TopicVersionSubmitted,
		CreatedBy:     userID,
		CreateAt:      &now,
	}

	if err := config.DB.Create(&version).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create topic version"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"version": version})
}

// ApproveTopicVersion approves a version and makes it the topic's current
// one (moderator only)
func ApproveTopicVersion(c *gin.Context) {
	versionID, err := strconv.Atoi(c.Param("version_id"))
	if err != nil || versionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version ID"})
		return
	}

	var version models.TopicVersion
	if err := config.DB.Where("topic_version_id = ? AND delete_at IS NULL", versionID).First(&version).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic version not found"})
		return
	}

	if version.Status == models.TopicVersionApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Version is already approved"})
		return
	}

	now := time.Now()
	version.Status = models.TopicVersionApproved
	version.UpdateAt = &now

	if err := config.DB.Save(&version).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve version"})
		return
	}

	if err := config.DB.Model(&models.Topic{}).
		Where("topic_id = ?", version.TopicID).
		Updates(map[string]interface{}{
			"current_version_id": version.TopicVersionID,
			"is_approved":        true,
			"update_at":          &now,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update topic"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"version": version})
}
