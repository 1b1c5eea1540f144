package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"capbot-api/config"
	"capbot-api/models"
	"capbot-api/utils"

	"github.com/gin-gonic/gin"
)

// GetMySkills handles GET /profile/skills
func GetMySkills(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var skills []models.ReviewerSkill
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).
		Order("skill_id ASC").
		Find(&skills).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch skills"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

type skillRequest struct {
	SkillTag         string `json:"skill_tag" binding:"required"`
	ProficiencyLevel int    `json:"proficiency_level" binding:"required,min=1,max=5"`
}

// AddMySkill handles POST /profile/skills
func AddMySkill(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := strings.ToLower(utils.SanitizeInput(req.SkillTag))
	if tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skill_tag must not be blank"})
		return
	}

	var existing int64
	config.DB.Model(&models.ReviewerSkill{}).
		Where("user_id = ? AND skill_tag = ? AND delete_at IS NULL", userID, tag).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Skill already declared"})
		return
	}

	now := time.Now()
	skill := models.ReviewerSkill{
		UserID:           userID,
		SkillTag:         tag,
		ProficiencyLevel: req.ProficiencyLevel,
		CreateAt:         &now,
	}

	if err := config.DB.Create(&skill).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add skill"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"skill": skill})
}

// RemoveMySkill handles DELETE /profile/skills/:skill_id
func RemoveMySkill(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	skillID, err := strconv.Atoi(c.Param("skill_id"))
	if err != nil || skillID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid skill ID"})
		return
	}

	now := time.Now()
	result := config.DB.Model(&models.ReviewerSkill{}).
		Where("skill_id = ? AND user_id = ? AND delete_at IS NULL", skillID, userID).
		Update("delete_at", &now)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove skill"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Skill not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Skill removed"})
}
