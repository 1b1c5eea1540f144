package controllers

import (
	"net/http"
	"strconv"
	"time"

	"capbot-api/config"
	"capbot-api/models"

	"github.com/gin-gonic/gin"
)

// GetSemesters returns all semesters with their phases
func GetSemesters(c *gin.Context) {
	var semesters []models.Semester
	if err := config.DB.Preload("Phases", "delete_at IS NULL").
		Where("delete_at IS NULL").
		Order("year DESC, term DESC").
		Find(&semesters).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch semesters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"semesters": semesters})
}

// GetSemester returns one semester
func GetSemester(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid semester ID"})
		return
	}

	var semester models.Semester
	if err := config.DB.Preload("Phases", "delete_at IS NULL").
		Where("semester_id = ? AND delete_at IS NULL", id).
		First(&semester).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Semester not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"semester": semester})
}

type semesterRequest struct {
	Term      string     `json:"term" binding:"required"`
	Year      int        `json:"year" binding:"required"`
	IsActive  bool       `json:"is_active"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// CreateSemester creates a semester (admin only)
func CreateSemester(c *gin.Context) {
	var req semesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	semester := models.Semester{
		Term:      req.Term,
		Year:      req.Year,
		IsActive:  req.IsActive,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreateAt:  &now,
	}

	if err := config.DB.Create(&semester).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create semester"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"semester": semester})
}

// UpdateSemester updates a semester (admin only)
func UpdateSemester(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid semester ID"})
		return
	}

	var semester models.Semester
	if err := config.DB.Where("semester_id = ? AND delete_at IS NULL", id).First(&semester).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Semester not found"})
		return
	}

	var req semesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	semester.Term = req.Term
	semester.Year = req.Year
	semester.IsActive = req.IsActive
	semester.StartDate = req.StartDate
	semester.EndDate = req.EndDate
	semester.UpdateAt = &now

	if err := config.DB.Save(&semester).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update semester"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"semester": semester})
}

type phaseRequest struct {
	PhaseName  string     `json:"phase_name" binding:"required"`
	PhaseOrder int        `json:"phase_order" binding:"required"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

// CreatePhase adds a phase to a semester (admin only)
func CreatePhase(c *gin.Context) {
	semesterID, err := strconv.Atoi(c.Param("id"))
	if err != nil || semesterID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid semester ID"})
		return
	}

	var semester models.Semester
	if err := config.DB.Where("semester_id = ? AND delete_at IS NULL", semesterID).First(&semester).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Semester not found"})
		return
	}

	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	phase := models.Phase{
		SemesterID: semesterID,
		PhaseName:  req.PhaseName,
		PhaseOrder: req.PhaseOrder,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		CreateAt:   &now,
	}

	if err := config.DB.Create(&phase).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create phase"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"phase": phase})
}

// DeleteSemester soft-deletes a semester (admin only)
func DeleteSemester(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid semester ID"})
		return
	}

	now := time.Now()
	result := config.DB.Model(&models.Semester{}).
		Where("semester_id = ? AND delete_at IS NULL", id).
		Update("delete_at", &now)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete semester"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Semester not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Semester deleted"})
}
