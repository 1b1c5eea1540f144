package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"capbot-api/config"
	"capbot-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetSubmissions lists submissions with simple pagination
func GetSubmissions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	query := config.DB.Model(&models.Submission{}).Where("delete_at IS NULL")

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if phaseID, err := strconv.Atoi(c.Query("phase_id")); err == nil && phaseID > 0 {
		query = query.Where("phase_id = ?", phaseID)
	}
	if topicID, err := strconv.Atoi(c.Query("topic_id")); err == nil && topicID > 0 {
		query = query.Where("topic_id = ?", topicID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count submissions"})
		return
	}

	var submissions []models.Submission
	if err := query.Preload("Topic").Preload("TopicVersion").Preload("Phase").Preload("Submitter").
		Order("submission_id DESC").
		Limit(limit).Offset(offset).
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// GetSubmission returns one submission
func GetSubmission(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var submission models.Submission
	if err := config.DB.Preload("Topic").Preload("Topic.Category").Preload("TopicVersion").
		Preload("Phase").Preload("Submitter").
		Where("submission_id = ? AND delete_at IS NULL", id).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type submissionRequest struct {
	TopicID        int  `json:"topic_id" binding:"required"`
	TopicVersionID *int `json:"topic_version_id"`
	PhaseID        int  `json:"phase_id" binding:"required"`
}

// CreateSubmission files a topic version into a phase for review
func CreateSubmission(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var topic models.Topic
	if err := config.DB.Where("topic_id = ? AND delete_at IS NULL", req.TopicID).First(&topic).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
		return
	}

	var phase models.Phase
	if err := config.DB.Where("phase_id = ? AND delete_at IS NULL", req.PhaseID).First(&phase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Phase not found"})
		return
	}

	versionID := req.TopicVersionID
	if versionID == nil {
		versionID = topic.CurrentVersionID
	}
	if versionID != nil {
		var version models.TopicVersion
		if err := config.DB.Where("topic_version_id = ? AND topic_id = ? AND delete_at IS NULL",
			*versionID, req.TopicID).First(&version).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Topic version not found"})
			return
		}
	}

	var round int64
	config.DB.Model(&models.Submission{}).
		Where("topic_id = ? AND phase_id = ?", req.TopicID, req.PhaseID).
		Count(&round)

	now := time.Now()
	submission := models.Submission{
		SubmissionNumber: newSubmissionNumber(now),
		TopicID:          req.TopicID,
		TopicVersionID:   versionID,
		PhaseID:          req.PhaseID,
		SubmittedBy:      userID,
		Status:           models.SubmissionPending,
		SubmissionRound:  int(round) + 1,
		SubmittedAt:      &now,
		CreateAt:         &now,
	}

	if err := config.DB.Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": submission})
}

type submissionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateSubmissionStatus moves a submission through its review workflow
// (moderator only)
func UpdateSubmissionStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req submissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Status {
	case models.SubmissionPending, models.SubmissionUnderReview, models.SubmissionApproved,
		models.SubmissionRejected, models.SubmissionRevisionRequired:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown submission status"})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND delete_at IS NULL", id).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	now := time.Now()
	submission.Status = req.Status
	submission.UpdateAt = &now

	if err := config.DB.Save(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// newSubmissionNumber builds a human-readable unique submission number.
func newSubmissionNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("SUB-%s-%s", now.Format("20060102"), suffix)
}
